// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pollapp/pollapp-api/db"
	"github.com/pollapp/pollapp-api/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate row")
	// ErrHasVotes is returned when an edit that needs a vote-free poll
	// finds votes inside its transaction.
	ErrHasVotes = errors.New("poll has votes")
)

// singleSlot is the vote_slot value shared by every vote of a single-choice
// poll; see the votes table definition.
const singleSlot = "single"

// SQLStore persists polls, options, votes, profiles and comments.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const pollColumns = `id, title, description, status, vote_type, is_anonymous,
	       expires_at, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (models.Poll, error) {
	var p models.Poll
	var description sql.NullString
	var expiresAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.Title, &description, &p.Status, &p.VoteType, &p.IsAnonymous,
		&expiresAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.Poll{}, err
	}
	p.Description = description.String
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		p.ExpiresAt = &t
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// placeholders returns "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// CreatePoll inserts a poll and its options in one transaction.
func (s *SQLStore) CreatePoll(ctx context.Context, p models.Poll, options []models.Option) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO polls (id, title, description, status, vote_type, is_anonymous, expires_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Title, nullString(p.Description), p.Status, p.VoteType, p.IsAnonymous,
		nullTime(p.ExpiresAt), p.CreatedBy, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert poll: %w", err)
	}

	if err := insertOptions(ctx, tx, options); err != nil {
		return err
	}

	return tx.Commit()
}

func insertOptions(ctx context.Context, tx *sql.Tx, options []models.Option) error {
	for _, o := range options {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poll_options (id, poll_id, option_text, option_order, votes_count)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, o.PollID, o.Text, o.Order, o.VotesCount)
		if err != nil {
			return fmt.Errorf("insert option: %w", err)
		}
	}
	return nil
}

// GetPoll returns ErrNotFound when the poll does not exist.
func (s *SQLStore) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = $1`, id)
	p, err := scanPoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("query poll: %w", err)
	}
	return p, nil
}

// PollFilter narrows ListPolls. Empty fields match everything.
type PollFilter struct {
	Statuses  []string
	CreatedBy string
	Limit     int
	Offset    int
}

// ListPolls returns polls newest first.
func (s *SQLStore) ListPolls(ctx context.Context, f PollFilter) ([]models.Poll, error) {
	var where []string
	var args []any
	if len(f.Statuses) > 0 {
		where = append(where, `status IN (`+placeholders(len(args)+1, len(f.Statuses))+`)`)
		for _, st := range f.Statuses {
			args = append(args, st)
		}
	}
	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		where = append(where, fmt.Sprintf(`created_by = $%d`, len(args)))
	}

	query := `SELECT ` + pollColumns + ` FROM polls`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query polls: %w", err)
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("scan poll: %w", err)
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

// ListOptions returns a poll's options in display order.
func (s *SQLStore) ListOptions(ctx context.Context, pollID string) ([]models.Option, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, option_text, option_order, votes_count
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY option_order, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.PollID, &o.Text, &o.Order, &o.VotesCount); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// OptionEdit describes how an update touches a poll's options. Replace
// deletes every existing option first; otherwise Options are appended.
// RequireNoVotes makes the update fail with ErrHasVotes if the poll has
// any vote when the transaction runs.
type OptionEdit struct {
	Replace        bool
	RequireNoVotes bool
	Options        []models.Option
}

// UpdatePoll writes the poll's mutable columns and applies the option edit
// in one transaction.
func (s *SQLStore) UpdatePoll(ctx context.Context, p models.Poll, edit OptionEdit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if edit.RequireNoVotes || edit.Replace {
		var votes int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE poll_id = $1`, p.ID).Scan(&votes)
		if err != nil {
			return fmt.Errorf("count votes: %w", err)
		}
		if votes > 0 {
			return ErrHasVotes
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE polls
		SET title = $1, description = $2, status = $3, vote_type = $4,
		    is_anonymous = $5, expires_at = $6, updated_at = $7
		WHERE id = $8
	`, p.Title, nullString(p.Description), p.Status, p.VoteType, p.IsAnonymous,
		nullTime(p.ExpiresAt), p.UpdatedAt.UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update poll: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if edit.Replace {
		// A vote committed after the count still blocks the delete.
		if _, err := tx.ExecContext(ctx, `DELETE FROM poll_options WHERE poll_id = $1`, p.ID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrHasVotes
			}
			return fmt.Errorf("delete options: %w", err)
		}
	}
	if err := insertOptions(ctx, tx, edit.Options); err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePoll removes a poll; options, votes, demo votes and comments
// cascade.
func (s *SQLStore) DeletePoll(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
