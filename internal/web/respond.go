// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/taskward/taskward/internal/auth"
	"github.com/taskward/taskward/internal/task"
	"github.com/taskward/taskward/pkg/errutil"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		//nolint:errcheck // response write failure leaves nothing to report
		json.NewEncoder(w).Encode(body)
	}
}

// respondError maps domain errors to HTTP statuses. Anything unmapped is a
// 500 with a generic body so internals never leak to clients.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, auth.ErrUsernameTaken):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
	case errors.Is(err, task.ErrNotFound), errors.Is(err, auth.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case isValidationError(err):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		errutil.LogError(logger, "request failed", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// validationCodes are oops codes raised by input validation. They map to
// 400 with the validation message exposed to the client.
var validationCodes = map[string]struct{}{
	"AUTH_INVALID_USERNAME":    {},
	"AUTH_INVALID_PASSWORD":    {},
	"TASK_INVALID_OWNER":       {},
	"TASK_INVALID_TITLE":       {},
	"TASK_INVALID_DESCRIPTION": {},
}

func isValidationError(err error) bool {
	if errors.Is(err, task.ErrEmptyTitle) {
		return true
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	code, ok := oopsErr.Code().(string)
	if !ok {
		return false
	}
	_, found := validationCodes[code]
	return found
}
