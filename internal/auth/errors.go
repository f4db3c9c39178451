// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package auth

import "errors"

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when registering a username that
	// already exists. The unique constraint in the credential store is
	// authoritative; any pre-insert existence check is an optimization.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials is returned for both unknown usernames and
	// wrong passwords so callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTokenInvalid is returned for any structurally or
	// cryptographically bad session token.
	ErrTokenInvalid = errors.New("invalid session token")

	// ErrTokenExpired is returned when a session token is past its
	// absolute expiry.
	ErrTokenExpired = errors.New("session token expired")
)
