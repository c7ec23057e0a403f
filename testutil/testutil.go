// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/cliparse"
	"github.com/pollapp/pollapp-api/db"
	"github.com/pollapp/pollapp-api/models"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, filepath.Join(t.TempDir(), "pollapp_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file:pollapp_test.db",
		DatabaseType: cliparse.DatabaseSQLite,
		JWTSecret:    "test-jwt-secret",
		IPHashSalt:   "test-ip-salt",
		DemoStore:    cliparse.DemoStoreSQL,
		LogFormat:    "json",
		LogLevel:     "info",
	}
}

// CreateTestPoll creates a single-choice, non-anonymous poll owned by ownerID.
// status should be "draft", "active", or "closed"
func CreateTestPoll(t *testing.T, db *sql.DB, ownerID, status string) string {
	t.Helper()

	return CreateTestPollWith(t, db, models.Poll{CreatedBy: ownerID, Status: status})
}

// CreateTestPollWith inserts p, filling in an id, title, status, vote type
// and timestamps where they are blank. Returns the poll ID.
func CreateTestPollWith(t *testing.T, db *sql.DB, p models.Poll) string {
	t.Helper()

	if p.ID == "" {
		p.ID = auth.NewID()
	}
	if p.Title == "" {
		p.Title = "Test Poll"
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.VoteType == "" {
		p.VoteType = models.VoteTypeSingle
	}
	if p.CreatedBy == "" {
		p.CreatedBy = "test-owner"
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	var expiresAt *time.Time
	if p.ExpiresAt != nil {
		e := p.ExpiresAt.UTC()
		expiresAt = &e
	}

	_, err := db.Exec(`
		INSERT INTO polls (id, title, description, status, vote_type, is_anonymous, expires_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Title, p.Description, p.Status, p.VoteType, p.IsAnonymous, expiresAt, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return p.ID
}

// AddTestOption appends an option to a poll and returns the option ID
func AddTestOption(t *testing.T, db *sql.DB, pollID, text string) string {
	t.Helper()

	var order int
	if err := db.QueryRow(`SELECT COUNT(*) FROM poll_options WHERE poll_id = $1`, pollID).Scan(&order); err != nil {
		t.Fatalf("Failed to count test options: %v", err)
	}

	optionID := auth.NewID()
	_, err := db.Exec(`
		INSERT INTO poll_options (id, poll_id, option_text, option_order, votes_count)
		VALUES ($1, $2, $3, $4, 0)
	`, optionID, pollID, text, order)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CreateTestVote records an authenticated vote now and refreshes the
// option's cached count. Returns the vote ID.
func CreateTestVote(t *testing.T, db *sql.DB, pollID, optionID, userID string) string {
	t.Helper()

	return CreateTestVoteAt(t, db, pollID, optionID, userID, time.Now().UTC())
}

// CreateTestVoteAt is CreateTestVote with an explicit vote time.
func CreateTestVoteAt(t *testing.T, db *sql.DB, pollID, optionID, userID string, at time.Time) string {
	t.Helper()

	var voteType string
	if err := db.QueryRow(`SELECT vote_type FROM polls WHERE id = $1`, pollID).Scan(&voteType); err != nil {
		t.Fatalf("Failed to load test poll: %v", err)
	}
	slot := optionID
	if voteType == models.VoteTypeSingle {
		slot = "single"
	}

	voteID := auth.NewID()
	_, err := db.Exec(`
		INSERT INTO votes (id, poll_id, option_id, user_id, vote_slot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, pollID, optionID, userID, slot, at.UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	_, err = db.Exec(`
		UPDATE poll_options
		SET votes_count = (SELECT COUNT(*) FROM votes WHERE votes.option_id = poll_options.id)
		WHERE id = $1
	`, optionID)
	if err != nil {
		t.Fatalf("Failed to refresh test vote count: %v", err)
	}

	return voteID
}

// CreateTestProfile inserts a profile row. Empty strings are stored as NULL.
func CreateTestProfile(t *testing.T, db *sql.DB, userID, username, displayName string) {
	t.Helper()

	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO profiles (id, username, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, nullIfEmpty(username), nullIfEmpty(displayName), now, now)
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// AuthHeaders returns an Authorization header carrying a valid token for userID
func AuthHeaders(t *testing.T, cfg cliparse.Config, userID string) map[string]string {
	t.Helper()

	token, err := auth.GenerateToken(userID, cfg.JWTSecret, time.Now())
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
