package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskward/taskward/internal/observability"
	"github.com/taskward/taskward/internal/web"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values use their default implementations.
type ServeDeps struct {
	// MigratorFactory creates a migrator for startup auto-migration.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (AutoMigrator, error)

	// PoolFactory creates the database connection pool.
	// Default: store.NewPool
	PoolFactory func(ctx context.Context, databaseURL string) (*pgxpool.Pool, error)

	// WebServerFactory creates the HTTP API server.
	// Default: web.NewServer
	WebServerFactory func(opts web.Options) (WebServer, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// AutoMigrator wraps the migrator methods used at startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// WebServer interface wraps the methods used from web.Server.
type WebServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
