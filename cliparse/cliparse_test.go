// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"os"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("DATABASE_TYPE", "postgres")
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("IP_HASH_SALT", "test-salt")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabasePostgres {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.DemoStore != DemoStoreSQL {
		t.Errorf("expected default demo store sql, got %s", cfg.DemoStore)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected default log format json, got %s", cfg.LogFormat)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DEMO_STORE", "sql")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-jwt-secret", "s1", "-ip-salt", "s2", "-demo-store", "redis"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DemoStore != DemoStoreRedis {
		t.Errorf("CLI should override env: expected redis, got %s", cfg.DemoStore)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected default database type sqlite, got %s", cfg.DatabaseType)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{
			name: "missing database url",
			args: []string{"-jwt-secret", "s", "-ip-salt", "s"},
		},
		{
			name: "missing jwt secret",
			args: []string{"-d", "file:test.db", "-ip-salt", "s"},
		},
		{
			name: "missing ip salt",
			args: []string{"-d", "file:test.db", "-jwt-secret", "s"},
		},
		{
			name: "invalid port",
			env:  map[string]string{"PORT": "abc"},
			args: []string{"-d", "file:test.db", "-jwt-secret", "s", "-ip-salt", "s"},
		},
		{
			name: "unsupported database type",
			args: []string{"-d", "file:test.db", "-t", "mysql", "-jwt-secret", "s", "-ip-salt", "s"},
		},
		{
			name: "unsupported demo store",
			args: []string{"-d", "file:test.db", "-demo-store", "memcached", "-jwt-secret", "s", "-ip-salt", "s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			defer os.Clearenv()

			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
