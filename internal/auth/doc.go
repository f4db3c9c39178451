// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

// Package auth provides the authentication core for taskward: credential
// storage, password hashing, and signed session tokens.
//
// # Domain Types
//
// User instances should be created through NewUser, which validates the
// username and requires a non-empty password hash. Repository
// implementations receive pre-validated values from the constructors.
//
// # Services
//
// Service coordinates registration and login. Token issuance and
// verification live in TokenIssuer; sessions are stateless signed tokens,
// so logout is purely client-side and a captured token remains valid until
// its expiry. There is no server-side revocation list.
package auth
