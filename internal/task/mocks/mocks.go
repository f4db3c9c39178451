// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

// Package mocks provides testify mocks for task interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/taskward/taskward/internal/task"
)

// MockRepository is a mock implementation of task.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a MockRepository with expectations asserted
// at test cleanup.
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) ListByOwner(ctx context.Context, owner ulid.ULID) ([]*task.Task, error) {
	args := m.Called(ctx, owner)
	if tasks := args.Get(0); tasks != nil {
		return tasks.([]*task.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetOwned(ctx context.Context, id, owner ulid.ULID) (*task.Task, error) {
	args := m.Called(ctx, id, owner)
	if t := args.Get(0); t != nil {
		return t.(*task.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateOwned(ctx context.Context, id, owner ulid.ULID, params task.UpdateParams) (*task.Task, error) {
	args := m.Called(ctx, id, owner, params)
	if t := args.Get(0); t != nil {
		return t.(*task.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) DeleteOwned(ctx context.Context, id, owner ulid.ULID) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

// Compile-time interface check.
var _ task.Repository = (*MockRepository)(nil)
