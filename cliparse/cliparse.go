// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Database and demo store backends
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	DemoStoreSQL   = "sql"
	DemoStoreRedis = "redis"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	JWTSecret    string
	IPHashSalt   string
	DemoStore    string
	RedisURL     string
	LogFormat    string
	LogLevel     string
}

// ParseFlags validates flags and falls back to the environment for anything
// not given on the command line. A .env file, if present, is loaded first.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	fs := flag.NewFlagSet("pollapp", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.DemoStore, "demo-store", "", "Demo vote backend (sql or redis)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the redis demo store")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (json or text)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "JWT signing secret (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = fallback(cfg.DatabaseType, "DATABASE_TYPE", DatabaseSQLite)
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	cfg.DemoStore = fallback(cfg.DemoStore, "DEMO_STORE", DemoStoreSQL)
	if cfg.DemoStore != DemoStoreSQL && cfg.DemoStore != DemoStoreRedis {
		return Config{}, fmt.Errorf("unsupported demo store %q", cfg.DemoStore)
	}
	cfg.RedisURL = fallback(cfg.RedisURL, "REDIS_URL", "redis://localhost:6379/0")

	cfg.LogFormat = fallback(cfg.LogFormat, "LOG_FORMAT", "json")
	cfg.LogLevel = fallback(cfg.LogLevel, "LOG_LEVEL", "info")

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	return cfg, nil
}

func fallback(value, envKey, def string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}
