// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pollapp/pollapp-api/db"
	"github.com/pollapp/pollapp-api/models"
)

// SQLDemoStore keeps demo votes in the demo_votes table, apart from the
// authoritative votes table.
type SQLDemoStore struct {
	db *sql.DB
}

func NewSQLDemoStore(db *sql.DB) *SQLDemoStore {
	return &SQLDemoStore{db: db}
}

// InsertDemoVotes adds rows for a session. A (poll, option, session) pair
// that already exists returns ErrDuplicate and nothing is written.
func (s *SQLDemoStore) InsertDemoVotes(ctx context.Context, votes []models.DemoVote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertDemoVotes(ctx, tx, votes); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceDemoVotes deletes every row for (poll, session) and inserts votes
// in the same transaction.
func (s *SQLDemoStore) ReplaceDemoVotes(ctx context.Context, pollID, sessionID string, votes []models.DemoVote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM demo_votes WHERE poll_id = $1 AND session_id = $2
	`, pollID, sessionID)
	if err != nil {
		return fmt.Errorf("delete demo votes: %w", err)
	}

	if err := insertDemoVotes(ctx, tx, votes); err != nil {
		return err
	}
	return tx.Commit()
}

func insertDemoVotes(ctx context.Context, tx *sql.Tx, votes []models.DemoVote) error {
	for _, v := range votes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO demo_votes (id, poll_id, option_id, session_id, user_agent, ip_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, v.ID, v.PollID, v.OptionID, v.SessionID, nullString(v.UserAgent), nullString(v.IPHash), v.CreatedAt.UTC())
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("insert demo vote: %w", err)
		}
	}
	return nil
}

// DeleteDemoVotes removes a session's rows. Deleting nothing is not an error.
func (s *SQLDemoStore) DeleteDemoVotes(ctx context.Context, pollID, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM demo_votes WHERE poll_id = $1 AND session_id = $2
	`, pollID, sessionID)
	if err != nil {
		return fmt.Errorf("delete demo votes: %w", err)
	}
	return nil
}

// PurgePoll removes every demo vote on a poll.
func (s *SQLDemoStore) PurgePoll(ctx context.Context, pollID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM demo_votes WHERE poll_id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("purge demo votes: %w", err)
	}
	return nil
}

// DemoAggregate counts demo rows per option. A poll without demo votes
// yields a zero aggregate with an empty map.
func (s *SQLDemoStore) DemoAggregate(ctx context.Context, pollID string) (models.DemoAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT option_id, COUNT(*)
		FROM demo_votes
		WHERE poll_id = $1
		GROUP BY option_id
	`, pollID)
	if err != nil {
		return models.DemoAggregate{}, fmt.Errorf("query demo aggregate: %w", err)
	}
	defer rows.Close()

	agg := models.DemoAggregate{PollID: pollID, OptionDemoVotes: map[string]int{}}
	for rows.Next() {
		var optionID string
		var count int
		if err := rows.Scan(&optionID, &count); err != nil {
			return models.DemoAggregate{}, fmt.Errorf("scan demo aggregate: %w", err)
		}
		agg.OptionDemoVotes[optionID] = count
		agg.TotalDemoVotes += count
	}
	return agg, rows.Err()
}

// SessionDemoVotes returns a session's rows on a poll, oldest first.
func (s *SQLDemoStore) SessionDemoVotes(ctx context.Context, pollID, sessionID string) ([]models.DemoVote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, option_id, session_id, user_agent, ip_hash, created_at
		FROM demo_votes
		WHERE poll_id = $1 AND session_id = $2
		ORDER BY created_at, option_id
	`, pollID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session demo votes: %w", err)
	}
	defer rows.Close()

	votes := []models.DemoVote{}
	for rows.Next() {
		var v models.DemoVote
		var userAgent, ipHash sql.NullString
		if err := rows.Scan(&v.ID, &v.PollID, &v.OptionID, &v.SessionID, &userAgent, &ipHash, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan demo vote: %w", err)
		}
		v.UserAgent = userAgent.String
		v.IPHash = ipHash.String
		v.CreatedAt = v.CreatedAt.UTC()
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
