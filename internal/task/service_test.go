// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package task_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskward/taskward/internal/task"
	"github.com/taskward/taskward/internal/task/mocks"
	"github.com/taskward/taskward/internal/task/tasktest"
)

func TestNewService_NilDependencies(t *testing.T) {
	svc, err := task.NewService(nil)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "tasks repository is required")
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	owner := ulid.Make()

	t.Run("stores validated task", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc, err := task.NewService(repo)
		require.NoError(t, err)

		repo.On("Create", ctx, mock.AnythingOfType("*task.Task")).Return(nil)

		created, err := svc.Create(ctx, owner, "buy milk", "")
		require.NoError(t, err)
		assert.Equal(t, "buy milk", created.Title)
		assert.Equal(t, owner, created.OwnerID)
		assert.False(t, created.Completed)
	})

	t.Run("empty title never reaches the repository", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc, err := task.NewService(repo)
		require.NoError(t, err)

		_, err = svc.Create(ctx, owner, "", "description")
		assert.ErrorIs(t, err, task.ErrEmptyTitle)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	owner := ulid.Make()

	t.Run("invalid params never reach the repository", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc, err := task.NewService(repo)
		require.NoError(t, err)

		empty := ""
		_, err = svc.Update(ctx, ulid.Make(), owner, task.UpdateParams{Title: &empty})
		assert.ErrorIs(t, err, task.ErrEmptyTitle)
	})

	t.Run("not found passes through unchanged", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc, err := task.NewService(repo)
		require.NoError(t, err)

		id := ulid.Make()
		repo.On("UpdateOwned", ctx, id, owner, mock.AnythingOfType("task.UpdateParams")).
			Return(nil, task.ErrNotFound)

		_, err = svc.Update(ctx, id, owner, task.UpdateParams{})
		assert.ErrorIs(t, err, task.ErrNotFound)
	})
}

// Ownership semantics are easiest to exercise against the in-memory
// repository, which implements the same owner-fused lookup contract as
// the SQL store.
func TestOwnershipGuard(t *testing.T) {
	ctx := context.Background()
	repo := tasktest.NewMemoryRepository()
	svc, err := task.NewService(repo)
	require.NoError(t, err)

	alice := ulid.Make()
	bob := ulid.Make()

	created, err := svc.Create(ctx, alice, "alice's task", "private")
	require.NoError(t, err)

	t.Run("owner sees the task", func(t *testing.T) {
		got, err := svc.Get(ctx, created.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("non-owner gets not found, not forbidden", func(t *testing.T) {
		_, err := svc.Get(ctx, created.ID, bob)
		assert.ErrorIs(t, err, task.ErrNotFound)

		// Identical to a genuinely missing task.
		_, missingErr := svc.Get(ctx, ulid.Make(), bob)
		assert.Equal(t, missingErr, err)
	})

	t.Run("non-owner update mutates nothing", func(t *testing.T) {
		title := "hijacked"
		_, err := svc.Update(ctx, created.ID, bob, task.UpdateParams{Title: &title})
		assert.ErrorIs(t, err, task.ErrNotFound)

		got, err := svc.Get(ctx, created.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, "alice's task", got.Title)
	})

	t.Run("non-owner delete mutates nothing", func(t *testing.T) {
		err := svc.Delete(ctx, created.ID, bob)
		assert.ErrorIs(t, err, task.ErrNotFound)

		_, err = svc.Get(ctx, created.ID, alice)
		require.NoError(t, err)
	})

	t.Run("lists are scoped per owner", func(t *testing.T) {
		_, err := svc.Create(ctx, bob, "bob's task", "")
		require.NoError(t, err)

		aliceTasks, err := svc.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, aliceTasks, 1)
		assert.Equal(t, "alice's task", aliceTasks[0].Title)

		bobTasks, err := svc.List(ctx, bob)
		require.NoError(t, err)
		require.Len(t, bobTasks, 1)
		assert.Equal(t, "bob's task", bobTasks[0].Title)
	})
}
