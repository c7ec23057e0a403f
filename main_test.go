// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/pollapp/pollapp-api/cliparse"
	"github.com/pollapp/pollapp-api/db"
	"github.com/pollapp/pollapp-api/store"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		level     string
		expectErr bool
		debugOn   bool
	}{
		{"json info", "json", "info", false, false},
		{"text debug", "text", "debug", false, true},
		{"bad format", "xml", "info", true, false},
		{"bad level", "json", "loud", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := newLogger(cliparse.Config{LogFormat: tt.format, LogLevel: tt.level})
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.debugOn {
				t.Errorf("Expected debug enabled %v, got %v", tt.debugOn, got)
			}
		})
	}
}

func TestNewDemoStore(t *testing.T) {
	dbConn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "main_test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer dbConn.Close()

	t.Run("sql", func(t *testing.T) {
		ds, closeFn, err := newDemoStore(cliparse.Config{DemoStore: cliparse.DemoStoreSQL}, dbConn)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer closeFn()
		if _, ok := ds.(*store.SQLDemoStore); !ok {
			t.Errorf("Expected *store.SQLDemoStore, got %T", ds)
		}
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		ds, closeFn, err := newDemoStore(cliparse.Config{
			DemoStore: cliparse.DemoStoreRedis,
			RedisURL:  "redis://" + mr.Addr() + "/0",
		}, dbConn)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer closeFn()
		if _, ok := ds.(*store.RedisDemoStore); !ok {
			t.Errorf("Expected *store.RedisDemoStore, got %T", ds)
		}
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := newDemoStore(cliparse.Config{
			DemoStore: cliparse.DemoStoreRedis,
			RedisURL:  "redis://" + addr + "/0",
		}, dbConn)
		if err == nil {
			t.Error("Expected error for unreachable redis")
		}
	})
}
