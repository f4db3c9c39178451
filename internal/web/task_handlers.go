// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/taskward/taskward/internal/task"
)

type taskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func toTaskResponse(t *task.Task) taskResponse {
	return taskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (h *handlers) handleListTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	tasks, err := h.tasks.List(r.Context(), owner)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *handlers) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	created, err := h.tasks.Create(r.Context(), owner, req.Title, req.Description)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.countTask("create")
	respondJSON(w, http.StatusCreated, toTaskResponse(created))
}

func (h *handlers) handleGetTask(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.taskRequest(w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Get(r.Context(), id, owner)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

func (h *handlers) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.taskRequest(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	updated, err := h.tasks.Update(r.Context(), id, owner, task.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.countTask("update")
	respondJSON(w, http.StatusOK, toTaskResponse(updated))
}

func (h *handlers) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.taskRequest(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), id, owner); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.countTask("delete")
	w.WriteHeader(http.StatusNoContent)
}

// taskRequest extracts the authenticated owner and the task ID from the
// route. An unparsable ID is indistinguishable from a missing task.
func (h *handlers) taskRequest(w http.ResponseWriter, r *http.Request) (owner, id ulid.ULID, ok bool) {
	owner, ok = UserIDFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return owner, id, false
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return owner, id, false
	}

	return owner, id, true
}

func (h *handlers) countTask(operation string) {
	if h.metrics != nil {
		h.metrics.TasksTotal.WithLabelValues(operation).Inc()
	}
}
