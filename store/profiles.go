// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pollapp/pollapp-api/db"
	"github.com/pollapp/pollapp-api/models"
)

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	var username, displayName, avatarURL sql.NullString
	if err := row.Scan(&p.ID, &username, &displayName, &avatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Profile{}, err
	}
	p.Username = username.String
	p.DisplayName = displayName.String
	p.AvatarURL = avatarURL.String
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// GetProfile returns ErrNotFound when no profile row exists.
func (s *SQLStore) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, display_name, avatar_url, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

// GetProfiles batch-loads profiles by id. Missing ids are absent from the map.
func (s *SQLStore) GetProfiles(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	profiles := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, display_name, avatar_url, created_at, updated_at
		FROM profiles WHERE id IN (`+placeholders(1, len(ids))+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles[p.ID] = p
	}
	return profiles, rows.Err()
}

// UpsertProfile creates or replaces a profile. A username taken by another
// profile returns ErrDuplicate.
func (s *SQLStore) UpsertProfile(ctx context.Context, p models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, display_name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET username = excluded.username,
		    display_name = excluded.display_name,
		    avatar_url = excluded.avatar_url,
		    updated_at = excluded.updated_at
	`, p.ID, nullString(p.Username), nullString(p.DisplayName), nullString(p.AvatarURL),
		p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
