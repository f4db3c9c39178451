// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

// Package authtest provides in-memory test doubles for auth interfaces.
package authtest

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/taskward/taskward/internal/auth"
)

// MemoryUserRepository is an in-memory auth.UserRepository. Uniqueness is
// enforced under a single lock, mirroring the database unique constraint.
type MemoryUserRepository struct {
	mu      sync.Mutex
	byID    map[ulid.ULID]*auth.User
	byName  map[string]ulid.ULID
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   make(map[ulid.ULID]*auth.User),
		byName: make(map[string]ulid.ULID),
	}
}

// Create stores a new user, rejecting duplicate usernames atomically.
func (r *MemoryUserRepository) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.Username]; exists {
		return auth.ErrUsernameTaken
	}

	copied := *user
	r.byID[user.ID] = &copied
	r.byName[user.Username] = user.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByUsername retrieves a user by username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byName[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

// UpdatePassword replaces the password hash for a user.
func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*MemoryUserRepository)(nil)
