// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskward/taskward/internal/auth"
	authpg "github.com/taskward/taskward/internal/auth/postgres"
	"github.com/taskward/taskward/internal/config"
	"github.com/taskward/taskward/internal/logging"
	"github.com/taskward/taskward/internal/observability"
	"github.com/taskward/taskward/internal/store"
	"github.com/taskward/taskward/internal/task"
	taskpg "github.com/taskward/taskward/internal/task/postgres"
	"github.com/taskward/taskward/internal/web"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Taskward HTTP server",
		Long: `Start the HTTP API server together with the metrics endpoint.
Pending database migrations are applied at startup unless --auto-migrate=false.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil, autoMigrate)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "apply pending migrations at startup")

	return cmd
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps, autoMigrate bool) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (AutoMigrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = store.NewPool
	}
	if deps.WebServerFactory == nil {
		deps.WebServerFactory = func(opts web.Options) (WebServer, error) {
			return web.NewServer(opts)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	cfg, err := config.Load(resolveConfigFile(), cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("taskward", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))

	secret, err := sessionSecret(cfg.Auth.Secret)
	if err != nil {
		return err
	}

	issuer, err := auth.NewTokenIssuer(secret, cfg.Auth.TTL)
	if err != nil {
		return err
	}

	if autoMigrate {
		if err := runAutoMigrate(deps, cfg.Database.URL); err != nil {
			return err
		}
	}

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to database")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obsServer := deps.ObservabilityServerFactory(cfg.Observability.Addr, func() bool { return true })
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, obsErrCh, "observability")

	authSvc, err := auth.NewServiceWithLogger(
		authpg.NewUserRepository(pool),
		auth.NewArgon2idHasher(),
		issuer,
		slog.Default(),
	)
	if err != nil {
		return err
	}
	taskSvc, err := task.NewServiceWithLogger(taskpg.NewTaskRepository(pool), slog.Default())
	if err != nil {
		return err
	}

	webServer, err := deps.WebServerFactory(web.Options{
		Addr:        cfg.Server.Addr,
		Auth:        authSvc,
		Tasks:       taskSvc,
		Issuer:      issuer,
		Metrics:     obsServer.Metrics(),
		Logger:      slog.Default(),
		CSRFProtect: cfg.Auth.CSRF,
	})
	if err != nil {
		return err
	}

	webErrCh, err := webServer.Start()
	if err != nil {
		stopServer(obsServer, "observability")
		return oops.Code("WEB_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, webErrCh, "web")

	cmd.Println("Taskward server started")
	slog.Info("server ready",
		"addr", webServer.Addr(),
		"metrics_addr", obsServer.Addr(),
		"session_ttl", cfg.Auth.TTL,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")
	stopServer(webServer, "web")
	stopServer(obsServer, "observability")
	slog.Info("shutdown complete")
	return nil
}

type stoppable interface {
	Stop(ctx context.Context) error
}

func stopServer(s stoppable, name string) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping server", "server", name, "error", err)
	}
}

// runAutoMigrate applies pending migrations before the server accepts
// traffic.
func runAutoMigrate(deps *ServeDeps, databaseURL string) error {
	migrator, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "auto-migrate").Wrap(err)
	}

	slog.Info("database migrations applied")
	return nil
}

// sessionSecret decodes the configured signing secret, or generates an
// ephemeral one. With a generated secret every session dies on restart.
func sessionSecret(encoded string) ([]byte, error) {
	if encoded == "" {
		secret, err := auth.NewSigningSecret()
		if err != nil {
			return nil, err
		}
		slog.Warn("no session secret configured, generated an ephemeral one; sessions will not survive restarts")
		return secret, nil
	}

	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "decode session secret").
			Errorf("auth.secret must be base64: %v", err)
	}
	if len(secret) < auth.SigningSecretBytes {
		return nil, oops.Code("CONFIG_INVALID").
			Errorf("auth.secret must decode to at least %d bytes, got %d", auth.SigningSecretBytes, len(secret))
	}
	return secret, nil
}

// monitorServerErrors cancels the context when a server reports an error,
// so one failing listener brings the process down gracefully.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
