// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package auth

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	// DefaultSessionTTL is the default absolute lifetime of a session
	// token. Expiry is fixed at issuance, not sliding.
	DefaultSessionTTL = time.Hour

	// SigningSecretBytes is the size of an auto-generated signing secret.
	SigningSecretBytes = 32

	tokenIssuer = "taskward"
)

// NewSigningSecret generates a random HMAC signing secret. A process that
// auto-generates its secret cannot verify tokens issued before a restart;
// supply auth.secret in configuration to keep sessions across
// restarts.
func NewSigningSecret() ([]byte, error) {
	secret := make([]byte, SigningSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return nil, oops.Code("AUTH_SECRET_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	return secret, nil
}

// sessionClaims is the JWT payload of a session token. The user identity
// travels as the registered subject claim; it is encoded to a string here
// and decoded back to a typed ID in Verify, nowhere else.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies signed session tokens. The signing secret
// is immutable after construction; there is no shared mutable state, so a
// single issuer serves concurrent requests without locking.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. ttl <= 0 selects DefaultSessionTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_SECRET_EMPTY").Errorf("signing secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock replaces the issuer's clock. Intended for deterministic expiry
// tests.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	clone := *i
	clone.now = now
	return &clone
}

// TTL returns the issuer's token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a signed session token for the user, expiring at issuance
// time plus the configured TTL.
func (i *TokenIssuer) Issue(userID ulid.ULID) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)

	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, oops.Code("AUTH_TOKEN_SIGN_FAILED").
			With("operation", "sign session token").
			Wrap(err)
	}

	return signed, expiresAt, nil
}

// Verify validates a session token and returns the user identity it was
// bound to. Expired tokens yield ErrTokenExpired; every other defect
// (tampering, wrong algorithm, malformed structure, bad subject) yields
// ErrTokenInvalid. Malformed input never panics.
func (i *TokenIssuer) Verify(tokenString string) (ulid.ULID, error) {
	if tokenString == "" {
		return ulid.ULID{}, ErrTokenInvalid
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ulid.ULID{}, ErrTokenExpired
		}
		return ulid.ULID{}, ErrTokenInvalid
	}
	if !token.Valid {
		return ulid.ULID{}, ErrTokenInvalid
	}

	userID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return ulid.ULID{}, ErrTokenInvalid
	}

	return userID, nil
}
