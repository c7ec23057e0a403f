// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"

	"github.com/pollapp/pollapp-api/cliparse"
	"github.com/pollapp/pollapp-api/db"
	"github.com/pollapp/pollapp-api/middleware"
	"github.com/pollapp/pollapp-api/router"
	"github.com/pollapp/pollapp-api/service"
	"github.com/pollapp/pollapp-api/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		slog.Error("invalid logging config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	demoStore, closeDemo, err := newDemoStore(cfg, dbConn)
	if err != nil {
		slog.Error("demo store setup failed", "error", err, "backend", cfg.DemoStore)
		os.Exit(1)
	}
	defer closeDemo()
	slog.Info("Demo vote store ready", "backend", cfg.DemoStore)

	svc := service.New(store.NewSQLStore(dbConn), demoStore)
	mux := router.NewRouter(svc, cfg)

	server := http.Server{
		Handler:           middleware.Recover(middleware.CORS(middleware.WithMetrics(mux))),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-ctrlc
		slog.Info("Shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

// newLogger builds the process logger: JSON for machines, tint for a
// terminal.
func newLogger(cfg cliparse.Config) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}

	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
	case "text":
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}
}

// newDemoStore selects the demo-vote backend. The returned func releases
// whatever the backend holds.
func newDemoStore(cfg cliparse.Config, dbConn *sql.DB) (service.DemoStore, func(), error) {
	switch cfg.DemoStore {
	case cliparse.DemoStoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return store.NewRedisDemoStore(rdb), func() { rdb.Close() }, nil
	default:
		return store.NewSQLDemoStore(dbConn), func() {}, nil
	}
}
