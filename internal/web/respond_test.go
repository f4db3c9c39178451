// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package web

import (
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/taskward/taskward/internal/auth"
	"github.com/taskward/taskward/internal/task"
)

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "coded validation error",
			err:  oops.Code("TASK_INVALID_TITLE").Errorf("title too long"),
			want: true,
		},
		{
			name: "coded non-validation error",
			err:  oops.Code("TASK_CREATE_FAILED").Errorf("insert failed"),
			want: false,
		},
		{
			name: "oops error without code",
			err:  oops.Errorf("no code set"),
			want: false,
		},
		{
			name: "empty title sentinel",
			err:  task.ErrEmptyTitle,
			want: true,
		},
		{
			name: "plain error",
			err:  errors.New("boring"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidationError(tt.err))
		})
	}
}

func TestRespondError_StatusMapping(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, 401, "invalid credentials"},
		{"expired token", auth.ErrTokenExpired, 401, "authentication required"},
		{"username taken", auth.ErrUsernameTaken, 409, "username already taken"},
		{"task not found", task.ErrNotFound, 404, "not found"},
		{"wrapped not found", oops.Code("TASK_GET_FAILED").Wrap(task.ErrNotFound), 404, "not found"},
		{"validation", oops.Code("AUTH_INVALID_USERNAME").Errorf("username must start with a letter"), 400, "username must start with a letter"},
		{"unmapped", errors.New("disk on fire"), 500, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, logger, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
