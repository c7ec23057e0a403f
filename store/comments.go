// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pollapp/pollapp-api/models"
)

// InsertComment stores a comment. Author details are resolved on read.
func (s *SQLStore) InsertComment(ctx context.Context, c models.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, poll_id, user_id, comment_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.PollID, c.Author.ID, c.CommentText, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListComments returns a poll's comments newest first, joined with the
// author's profile when one exists.
func (s *SQLStore) ListComments(ctx context.Context, pollID string) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.poll_id, c.user_id, c.comment_text, c.created_at,
		       p.id, p.username, p.display_name, p.avatar_url
		FROM comments c
		LEFT JOIN profiles p ON p.id = c.user_id
		WHERE c.poll_id = $1
		ORDER BY c.created_at DESC, c.id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		var profileID, username, displayName, avatarURL sql.NullString
		if err := rows.Scan(
			&c.ID, &c.PollID, &c.Author.ID, &c.CommentText, &c.CreatedAt,
			&profileID, &username, &displayName, &avatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()

		var profile *models.Profile
		if profileID.Valid {
			profile = &models.Profile{
				ID:          profileID.String,
				Username:    username.String,
				DisplayName: displayName.String,
				AvatarURL:   avatarURL.String,
			}
			c.Author.Username = profile.Username
			c.Author.DisplayName = profile.DisplayName
			c.Author.AvatarURL = profile.AvatarURL
		}
		c.Author.Name = models.DisplayName(profile)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
