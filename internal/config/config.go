// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskward Contributors

// Package config loads server configuration. Sources are merged in
// precedence order: built-in defaults, then a YAML config file, then
// environment variables, then command-line flags.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/taskward/taskward/internal/auth"
)

// envPrefix namespaces environment variables, e.g. TASKWARD_AUTH_SECRET.
const envPrefix = "TASKWARD_"

// Config is the full server configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	Auth          AuthConfig          `koanf:"auth"`
	Log           LogConfig           `koanf:"log"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig configures session issuance.
type AuthConfig struct {
	// Secret is the base64-encoded HMAC signing secret. When empty, the
	// server generates an ephemeral secret at startup and all sessions
	// are invalidated on restart.
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
	CSRF   bool          `koanf:"csrf"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// ObservabilityConfig configures the metrics endpoint.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Server:        ServerConfig{Addr: ":8080"},
		Auth:          AuthConfig{TTL: auth.DefaultSessionTTL},
		Log:           LogConfig{Format: "text", Level: "info"},
		Observability: ObservabilityConfig{Addr: ":9090"},
	}
}

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// ignored by the loader.
var flagKeys = map[string]string{
	"addr":           "server.addr",
	"database-url":   "database.url",
	"session-secret": "auth.secret",
	"session-ttl":    "auth.ttl",
	"csrf":           "auth.csrf",
	"log-format":     "log.format",
	"log-level":      "log.level",
	"metrics-addr":   "observability.addr",
}

// Load merges configuration from an optional YAML file at path, the
// environment, and the given flag set. A bare DATABASE_URL variable is
// honored below the TASKWARD_-prefixed form.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("operation", "load config file").
				With("path", path).
				Wrap(err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		if err := k.Set("database.url", url); err != nil {
			return Config{}, oops.Code("CONFIG_ENV_FAILED").With("operation", "set database url").Wrap(err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return Config{}, oops.Code("CONFIG_ENV_FAILED").With("operation", "load environment").Wrap(err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			// Only flags the user set participate; defaults would
			// shadow file and environment values.
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").With("operation", "load flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").With("operation", "unmarshal config").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required (set DATABASE_URL or --database-url)")
	}
	if c.Auth.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.ttl must be positive, got %s", c.Auth.TTL)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// RegisterFlags declares the config-backed flags on a flag set. Flag
// defaults are zero values; the loader only applies flags that changed.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("addr", "", "HTTP listen address")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("session-secret", "", "base64-encoded session signing secret")
	flags.Duration("session-ttl", 0, "session token lifetime")
	flags.Bool("csrf", false, "enable CSRF double-submit protection")
	flags.String("log-format", "", "log output format (text or json)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("metrics-addr", "", "metrics listen address")
}
