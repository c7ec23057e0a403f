// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/pollapp/pollapp-api/db"
	"github.com/pollapp/pollapp-api/models"
)

// InsertVotes records a user's ballot in one transaction. A unique
// violation (the user already voted, or picked an option twice) rolls back
// every row and returns ErrDuplicate.
func (s *SQLStore) InsertVotes(ctx context.Context, voteType string, votes []models.Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, v := range votes {
		slot := v.OptionID
		if voteType == models.VoteTypeSingle {
			slot = singleSlot
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO votes (id, poll_id, option_id, user_id, vote_slot, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, v.ID, v.PollID, v.OptionID, v.UserID, slot, v.CreatedAt.UTC())
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("insert vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("commit votes: %w", err)
	}
	return nil
}

// RefreshVoteCounts rewrites every option's votes_count from the votes
// table. Counts are recomputed, never incremented.
func (s *SQLStore) RefreshVoteCounts(ctx context.Context, pollID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE poll_options
		SET votes_count = (SELECT COUNT(*) FROM votes WHERE votes.option_id = poll_options.id)
		WHERE poll_id = $1
	`, pollID)
	if err != nil {
		return fmt.Errorf("refresh vote counts: %w", err)
	}
	return nil
}

// VoteAggregate counts vote rows per option. Options without votes are
// reported with zero.
func (s *SQLStore) VoteAggregate(ctx context.Context, pollID string) (models.VoteAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id
	`, pollID)
	if err != nil {
		return models.VoteAggregate{}, fmt.Errorf("query vote aggregate: %w", err)
	}
	defer rows.Close()

	agg := models.VoteAggregate{PollID: pollID, OptionVotes: map[string]int{}}
	for rows.Next() {
		var optionID string
		var count int
		if err := rows.Scan(&optionID, &count); err != nil {
			return models.VoteAggregate{}, fmt.Errorf("scan vote aggregate: %w", err)
		}
		agg.OptionVotes[optionID] = count
		agg.TotalVotes += count
	}
	return agg, rows.Err()
}

// CountVotes returns the number of vote rows on a poll.
func (s *SQLStore) CountVotes(ctx context.Context, pollID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE poll_id = $1`, pollID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

// HasVoted reports whether the user has at least one vote on the poll.
func (s *SQLStore) HasVoted(ctx context.Context, pollID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM votes WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return n > 0, nil
}

// UserVoteOptions returns the option ids the user voted for, oldest first.
func (s *SQLStore) UserVoteOptions(ctx context.Context, pollID, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT option_id FROM votes
		WHERE poll_id = $1 AND user_id = $2
		ORDER BY created_at, id
	`, pollID, userID)
	if err != nil {
		return nil, fmt.Errorf("query user votes: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user vote: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListVotes returns every vote on a poll ordered by vote time.
func (s *SQLStore) ListVotes(ctx context.Context, pollID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, option_id, user_id, created_at
		FROM votes
		WHERE poll_id = $1
		ORDER BY created_at, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.PollID, &v.OptionID, &v.UserID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		v.CreatedAt = v.CreatedAt.UTC()
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
