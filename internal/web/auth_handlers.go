// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskward/taskward/internal/auth"
	"github.com/taskward/taskward/internal/observability"
	"github.com/taskward/taskward/internal/task"
)

type handlers struct {
	auth        *auth.Service
	tasks       *task.Service
	issuer      *auth.TokenIssuer
	metrics     *observability.Metrics
	logger      *slog.Logger
	csrfProtect bool
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	token, expiresAt, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.countLogin("failure")
		respondError(w, h.logger, err)
		return
	}
	h.countLogin("success")

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if h.csrfProtect {
		csrfToken, err := newCSRFToken()
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     CSRFCookie,
			Value:    csrfToken,
			Path:     "/",
			Expires:  expiresAt,
			SameSite: http.SameSiteLaxMode,
		})
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Username:  req.Username,
		ExpiresAt: expiresAt,
	})
}

// handleLogout clears the session cookie. The token itself stays valid
// until expiry; there is no server-side revocation list.
func (h *handlers) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if h.csrfProtect {
		http.SetCookie(w, &http.Cookie{
			Name:     CSRFCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) countLogin(status string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(status).Inc()
	}
}
