// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

// Package task provides the task domain: per-user task lists with
// ownership enforced inside every lookup.
//
// Every repository operation that touches an existing task takes both the
// task ID and the requesting owner, and resolves them in a single query.
// A task that does not exist and a task owned by someone else are the same
// ErrNotFound, so non-owners cannot probe for a task's existence.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxTitleLength bounds task titles.
const MaxTitleLength = 150

// MaxDescriptionLength bounds task descriptions.
const MaxDescriptionLength = 500

var (
	// ErrNotFound is returned when a task does not exist or belongs to a
	// different owner. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("task not found")

	// ErrEmptyTitle is returned when creating or renaming a task with an
	// empty title.
	ErrEmptyTitle = errors.New("task title cannot be empty")
)

// Task represents a single task. The owner reference is immutable after
// creation.
type Task struct {
	ID          ulid.ULID
	OwnerID     ulid.ULID
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask creates a validated Task with a fresh ID, owned by owner.
func NewTask(owner ulid.ULID, title, description string) (*Task, error) {
	if owner.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TASK_INVALID_OWNER").Errorf("owner ID cannot be zero")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if len(description) > MaxDescriptionLength {
		return nil, oops.Code("TASK_INVALID_DESCRIPTION").
			With("max", MaxDescriptionLength).
			Errorf("description must be at most %d characters", MaxDescriptionLength)
	}

	now := time.Now()
	return &Task{
		ID:          ulid.Make(),
		OwnerID:     owner,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return oops.Code("TASK_INVALID_TITLE").
			With("max", MaxTitleLength).
			Errorf("title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

// UpdateParams carries a partial update. Nil fields are left unchanged.
type UpdateParams struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Validate rejects updates that would leave a task in an invalid state.
func (p UpdateParams) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil && len(*p.Description) > MaxDescriptionLength {
		return oops.Code("TASK_INVALID_DESCRIPTION").
			With("max", MaxDescriptionLength).
			Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// Apply copies the non-nil fields onto the task.
func (p UpdateParams) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = time.Now()
}

// Repository manages task persistence. Ownership is part of every lookup:
// implementations must resolve (id, owner) in one query so the check
// cannot be bypassed or raced.
type Repository interface {
	// Create stores a new task.
	Create(ctx context.Context, task *Task) error

	// ListByOwner retrieves all tasks for an owner in insertion order.
	ListByOwner(ctx context.Context, owner ulid.ULID) ([]*Task, error)

	// GetOwned retrieves the task only if owner owns it; otherwise
	// ErrNotFound.
	GetOwned(ctx context.Context, id, owner ulid.ULID) (*Task, error)

	// UpdateOwned applies a partial update only if owner owns the task;
	// otherwise ErrNotFound and no mutation.
	UpdateOwned(ctx context.Context, id, owner ulid.ULID, params UpdateParams) (*Task, error)

	// DeleteOwned removes the task only if owner owns it; otherwise
	// ErrNotFound.
	DeleteOwned(ctx context.Context, id, owner ulid.ULID) error
}
