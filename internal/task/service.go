// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package task

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides task operations for authenticated owners. The owner
// identity must come from a verified session; the service never trusts an
// owner supplied in request payloads.
type Service struct {
	tasks  Repository
	logger *slog.Logger
}

// NewService creates a Service with the default logger.
func NewService(tasks Repository) (*Service, error) {
	return NewServiceWithLogger(tasks, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(tasks Repository, logger *slog.Logger) (*Service, error) {
	if tasks == nil {
		return nil, oops.Errorf("tasks repository is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{tasks: tasks, logger: logger}, nil
}

// Create validates and stores a new task for owner.
func (s *Service) Create(ctx context.Context, owner ulid.ULID, title, description string) (*Task, error) {
	t, err := NewTask(owner, title, description)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, oops.Code("TASK_CREATE_FAILED").
			With("operation", "create task").
			Wrap(err)
	}

	s.logger.Info("task created", "task_id", t.ID.String(), "owner_id", owner.String())
	return t, nil
}

// List retrieves all of owner's tasks.
func (s *Service) List(ctx context.Context, owner ulid.ULID) ([]*Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, owner)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("operation", "list tasks").
			Wrap(err)
	}
	return tasks, nil
}

// Get retrieves one of owner's tasks. ErrNotFound covers both a missing
// task and a task owned by someone else.
func (s *Service) Get(ctx context.Context, id, owner ulid.ULID) (*Task, error) {
	return s.tasks.GetOwned(ctx, id, owner)
}

// Update applies a partial update to one of owner's tasks.
func (s *Service) Update(ctx context.Context, id, owner ulid.ULID, params UpdateParams) (*Task, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	t, err := s.tasks.UpdateOwned(ctx, id, owner, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("task updated", "task_id", id.String(), "owner_id", owner.String())
	return t, nil
}

// Delete removes one of owner's tasks.
func (s *Service) Delete(ctx context.Context, id, owner ulid.ULID) error {
	if err := s.tasks.DeleteOwned(ctx, id, owner); err != nil {
		return err
	}

	s.logger.Info("task deleted", "task_id", id.String(), "owner_id", owner.String())
	return nil
}
