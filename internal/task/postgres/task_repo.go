// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

// Package postgres provides the PostgreSQL task store. All lookups of
// existing tasks are parameterized by both task ID and owner ID in a
// single statement, so the ownership check and the row retrieval cannot
// be separated.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskward/taskward/internal/task"
)

// pool is the subset of pgxpool.Pool the repository uses. pgxmock
// satisfies it for unit tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TaskRepository implements task.Repository using PostgreSQL.
type TaskRepository struct {
	pool pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, owner_id, title, description, completed, created_at, updated_at`

// Create stores a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		t.ID.String(),
		t.OwnerID.String(),
		t.Title,
		t.Description,
		t.Completed,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TASK_CREATE_FAILED").
			With("operation", "insert task").
			With("owner_id", t.OwnerID.String()).
			Wrap(err)
	}
	return nil
}

// ListByOwner retrieves all tasks for an owner in insertion order. ULIDs
// are lexically ordered by creation time, so ordering by id suffices.
func (r *TaskRepository) ListByOwner(ctx context.Context, owner ulid.ULID) ([]*task.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1
		ORDER BY id
	`, owner.String())
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("operation", "list tasks by owner").
			With("owner_id", owner.String()).
			Wrap(err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, oops.Code("TASK_SCAN_FAILED").
				With("operation", "scan task row").
				Wrap(err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("TASK_ROWS_ERROR").
			With("operation", "iterate task rows").
			Wrap(err)
	}

	return tasks, nil
}

// GetOwned retrieves a task by (id, owner) in one query. A missing row,
// whether absent or foreign-owned, is task.ErrNotFound.
func (r *TaskRepository) GetOwned(ctx context.Context, id, owner ulid.ULID) (*task.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, id.String(), owner.String())

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").
			With("id", id.String()).
			Wrap(task.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TASK_GET_FAILED").
			With("operation", "get task by id and owner").
			With("id", id.String()).
			Wrap(err)
	}
	return t, nil
}

// UpdateOwned applies a partial update in a single statement guarded by
// (id, owner) and returns the updated row.
func (r *TaskRepository) UpdateOwned(ctx context.Context, id, owner ulid.ULID, params task.UpdateParams) (*task.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title       = COALESCE($3::text, title),
		    description = COALESCE($4::text, description),
		    completed   = COALESCE($5::boolean, completed),
		    updated_at  = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns+`
	`, id.String(), owner.String(), params.Title, params.Description, params.Completed)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").
			With("id", id.String()).
			Wrap(task.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TASK_UPDATE_FAILED").
			With("operation", "update task by id and owner").
			With("id", id.String()).
			Wrap(err)
	}
	return t, nil
}

// DeleteOwned removes a task guarded by (id, owner).
func (r *TaskRepository) DeleteOwned(ctx context.Context, id, owner ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1 AND owner_id = $2
	`, id.String(), owner.String())
	if err != nil {
		return oops.Code("TASK_DELETE_FAILED").
			With("operation", "delete task by id and owner").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").
			With("id", id.String()).
			Wrap(task.ErrNotFound)
	}
	return nil
}

// scanTask scans a single row into a Task. Callers handle pgx.ErrNoRows.
func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		idStr    string
		ownerStr string
		t        task.Task
	)

	err := row.Scan(&idStr, &ownerStr, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("TASK_SCAN_FAILED").
			With("operation", "scan task").
			Wrap(err)
	}

	return buildTask(idStr, ownerStr, &t)
}

// scanTaskRow scans a row from a rows iterator into a Task.
func scanTaskRow(rows pgx.Rows) (*task.Task, error) {
	var (
		idStr    string
		ownerStr string
		t        task.Task
	)

	if err := rows.Scan(&idStr, &ownerStr, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // Caller wraps with context-specific info
	}

	return buildTask(idStr, ownerStr, &t)
}

// buildTask parses the identity columns into the scanned task.
func buildTask(idStr, ownerStr string, t *task.Task) (*task.Task, error) {
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("TASK_INVALID_ID").
			With("operation", "parse task id").
			With("id", idStr).
			Wrap(err)
	}

	owner, err := ulid.Parse(ownerStr)
	if err != nil {
		return nil, oops.Code("TASK_INVALID_OWNER_ID").
			With("operation", "parse owner id").
			With("owner_id", ownerStr).
			Wrap(err)
	}

	t.ID = id
	t.OwnerID = owner
	return t, nil
}

// Compile-time interface check.
var _ task.Repository = (*TaskRepository)(nil)
