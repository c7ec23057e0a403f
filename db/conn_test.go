// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := Open("sqlite", filepath.Join(t.TempDir(), "conn_test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open("mysql", "root@/pollapp"); err == nil {
		t.Error("Expected error for unsupported database type")
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	conn := openTestDB(t)

	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn); err != nil {
			t.Fatalf("CreateSchema run %d failed: %v", i+1, err)
		}
	}

	for _, table := range []string{"profiles", "polls", "poll_options", "votes", "demo_votes", "comments"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
}

func TestSQLiteForeignKeysEnabled(t *testing.T) {
	conn := openTestDB(t)

	var enabled int
	if err := conn.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		t.Fatalf("Failed to read pragma: %v", err)
	}
	if enabled != 1 {
		t.Error("Expected foreign keys to be enabled")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	conn := openTestDB(t)
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}

	insert := `INSERT INTO profiles (id, username, created_at, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	if _, err := conn.Exec(insert, "u1", "alice"); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	_, dupErr := conn.Exec(insert, "u2", "alice")
	_, pkErr := conn.Exec(insert, "u1", "bob")

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"sqlite unique column", dupErr, true},
		{"sqlite primary key", pkErr, true},
		{"wrapped sqlite error", fmt.Errorf("insert profile: %w", dupErr), true},
		{"postgres unique", &pq.Error{Code: "23505"}, true},
		{"postgres foreign key", &pq.Error{Code: "23503"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v (err: %v)", tt.expected, got, tt.err)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	conn := openTestDB(t)
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}

	_, orphanErr := conn.Exec(`INSERT INTO poll_options (id, poll_id, option_text) VALUES ($1, $2, $3)`, "o1", "missing", "JS")

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"sqlite missing parent", orphanErr, true},
		{"wrapped sqlite error", fmt.Errorf("insert option: %w", orphanErr), true},
		{"postgres foreign key", &pq.Error{Code: "23503"}, true},
		{"postgres unique", &pq.Error{Code: "23505"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsForeignKeyViolation(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v (err: %v)", tt.expected, got, tt.err)
			}
		})
	}
}
