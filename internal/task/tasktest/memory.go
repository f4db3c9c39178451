// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

// Package tasktest provides in-memory test doubles for task interfaces.
package tasktest

import (
	"context"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/taskward/taskward/internal/task"
)

// MemoryRepository is an in-memory task.Repository. Like the SQL
// implementation, every lookup resolves (id, owner) in one step under
// the lock, so a foreign-owned task is indistinguishable from a missing
// one.
type MemoryRepository struct {
	mu    sync.Mutex
	tasks map[ulid.ULID]*task.Task
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[ulid.ULID]*task.Task)}
}

// Create stores a new task.
func (r *MemoryRepository) Create(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

// ListByOwner retrieves an owner's tasks in insertion (ULID) order.
func (r *MemoryRepository) ListByOwner(_ context.Context, owner ulid.ULID) ([]*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tasks []*task.Task
	for _, t := range r.tasks {
		if t.OwnerID == owner {
			copied := *t
			tasks = append(tasks, &copied)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID.Compare(tasks[j].ID) < 0
	})
	return tasks, nil
}

// GetOwned retrieves a task only if owner owns it.
func (r *MemoryRepository) GetOwned(_ context.Context, id, owner ulid.ULID) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.OwnerID != owner {
		return nil, task.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

// UpdateOwned applies a partial update only if owner owns the task.
func (r *MemoryRepository) UpdateOwned(_ context.Context, id, owner ulid.ULID, params task.UpdateParams) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.OwnerID != owner {
		return nil, task.ErrNotFound
	}
	params.Apply(t)
	copied := *t
	return &copied, nil
}

// DeleteOwned removes a task only if owner owns it.
func (r *MemoryRepository) DeleteOwned(_ context.Context, id, owner ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.OwnerID != owner {
		return task.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// Compile-time interface check.
var _ task.Repository = (*MemoryRepository)(nil)
