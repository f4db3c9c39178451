// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package web

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/oklog/ulid/v2"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "taskward_session"
	// CSRFCookie carries the double-submit token. It is readable by
	// scripts so clients can echo it back in the header.
	CSRFCookie = "taskward_csrf"

	csrfHeader     = "X-CSRF-Token"
	csrfTokenBytes = 32
)

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// UserIDFromContext returns the authenticated user ID set by requireSession.
func UserIDFromContext(ctx context.Context) (ulid.ULID, bool) {
	id, ok := ctx.Value(userIDKey).(ulid.ULID)
	return id, ok
}

// requireSession authenticates the request from the session cookie. Missing,
// malformed, and expired tokens all produce the same 401 body.
func (h *handlers) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			unauthorized(w)
			return
		}

		userID, err := h.issuer.Verify(cookie.Value)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
}

// requireCSRF enforces the double-submit check on mutating methods: the
// header must match the cookie set at login.
func (h *handlers) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookie)
		if err != nil || cookie.Value == "" {
			respondJSON(w, http.StatusForbidden, errorResponse{Error: "missing CSRF token"})
			return
		}
		header := r.Header.Get(csrfHeader)
		if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
			respondJSON(w, http.StatusForbidden, errorResponse{Error: "invalid CSRF token"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// newCSRFToken generates a random double-submit token.
func newCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err //nolint:wrapcheck // caller wraps
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// countRequests records request totals by method and status.
func (h *handlers) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
