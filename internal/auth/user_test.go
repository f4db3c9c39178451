// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskward/taskward/internal/auth"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "alice", false},
		{"valid with numbers and underscore", "alice_42", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", auth.MaxUsernameLength+1), true},
		{"starts with number", "1alice", true},
		{"starts with underscore", "_alice", true},
		{"contains space", "alice smith", true},
		{"contains hyphen", "alice-smith", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, auth.ValidatePassword("longenough"))
	assert.Error(t, auth.ValidatePassword(""))
	assert.Error(t, auth.ValidatePassword("short"))
}

func TestNewUser(t *testing.T) {
	t.Run("creates user with fresh identity", func(t *testing.T) {
		user, err := auth.NewUser("alice", "$argon2id$v=19$m=65536,t=1,p=4$salt$hash")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.False(t, user.CreatedAt.IsZero())

		other, err := auth.NewUser("bob", "$argon2id$v=19$m=65536,t=1,p=4$salt$hash")
		require.NoError(t, err)
		assert.NotEqual(t, user.ID, other.ID)
	})

	t.Run("rejects invalid username", func(t *testing.T) {
		_, err := auth.NewUser("", "$argon2id$v=19$m=65536,t=1,p=4$salt$hash")
		assert.Error(t, err)
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := auth.NewUser("alice", "")
		assert.Error(t, err)
	})
}
