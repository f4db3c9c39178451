// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taskward/taskward/internal/auth"
	"github.com/taskward/taskward/internal/auth/postgres"
	"github.com/taskward/taskward/internal/store"
)

// setupPostgres starts a PostgreSQL container and applies migrations.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("taskward_test"),
		pgcontainer.WithUsername("taskward"),
		pgcontainer.WithPassword("taskward"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	_ = migrator.Close()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

var _ = Describe("UserRepository", func() {
	var pool *pgxpool.Pool
	var cleanup func()
	var repo *postgres.UserRepository

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())
		repo = postgres.NewUserRepository(pool)
	})

	AfterEach(func() {
		cleanup()
	})

	newUser := func(username string) *auth.User {
		now := time.Now().UTC().Truncate(time.Microsecond)
		return &auth.User{
			ID:           ulid.Make(),
			Username:     username,
			PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	Describe("Create", func() {
		It("stores and retrieves a user", func() {
			ctx := context.Background()
			user := newUser("alice")

			Expect(repo.Create(ctx, user)).To(Succeed())

			stored, err := repo.GetByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ID).To(Equal(user.ID))
			Expect(stored.PasswordHash).To(Equal(user.PasswordHash))
		})

		It("rejects a duplicate username and leaves one row", func() {
			ctx := context.Background()

			Expect(repo.Create(ctx, newUser("alice"))).To(Succeed())

			err := repo.Create(ctx, newUser("alice"))
			Expect(err).To(MatchError(auth.ErrUsernameTaken))

			var count int
			Expect(pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = 'alice'`).Scan(&count)).To(Succeed())
			Expect(count).To(Equal(1))
		})

		It("cannot race two registrations past the unique index", func() {
			ctx := context.Background()

			results := make(chan error, 2)
			for range 2 {
				go func() {
					results <- repo.Create(ctx, newUser("bob"))
				}()
			}

			errs := []error{<-results, <-results}
			var taken int
			for _, err := range errs {
				if err != nil {
					Expect(err).To(MatchError(auth.ErrUsernameTaken))
					taken++
				}
			}
			Expect(taken).To(Equal(1))
		})
	})

	Describe("UpdatePassword", func() {
		It("replaces only the hash", func() {
			ctx := context.Background()
			user := newUser("carol")
			Expect(repo.Create(ctx, user)).To(Succeed())

			Expect(repo.UpdatePassword(ctx, user.ID, "$argon2id$v=19$m=65536,t=1,p=4$new$hash")).To(Succeed())

			stored, err := repo.GetByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.PasswordHash).To(Equal("$argon2id$v=19$m=65536,t=1,p=4$new$hash"))
			Expect(stored.Username).To(Equal("carol"))
		})
	})
})
