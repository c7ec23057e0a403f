// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/store"
)

// ListComments returns a poll's comments newest first.
func (s *Service) ListComments(ctx context.Context, r auth.Requester, pollID string) ([]models.Comment, error) {
	if _, err := s.loadVisiblePoll(ctx, r, pollID); err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, pollID)
	if err != nil {
		slog.Error("failed to query comments", "error", err, "poll_id", pollID)
		return nil, apperr.Internal("Database error", err)
	}
	return comments, nil
}

// AddComment posts a comment as the requester.
func (s *Service) AddComment(ctx context.Context, r auth.Requester, pollID, text string) (models.Comment, error) {
	if !r.Authenticated() {
		return models.Comment{}, apperr.Unauthorized("Authentication required")
	}
	if _, err := s.loadVisiblePoll(ctx, r, pollID); err != nil {
		return models.Comment{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, apperr.Validation("Comment cannot be empty")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return models.Comment{}, apperr.Validation("Comment must be less than 1000 characters")
	}

	c := models.Comment{
		ID:          auth.NewID(),
		PollID:      pollID,
		CommentText: text,
		CreatedAt:   s.clock(),
		Author:      models.Author{ID: r.UserID},
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		slog.Error("failed to insert comment", "error", err, "poll_id", pollID)
		return models.Comment{}, apperr.Internal("Failed to post comment", err)
	}

	profile, err := s.store.GetProfile(ctx, r.UserID)
	switch {
	case err == nil:
		c.Author.Username = profile.Username
		c.Author.DisplayName = profile.DisplayName
		c.Author.AvatarURL = profile.AvatarURL
		c.Author.Name = models.DisplayName(&profile)
	case errors.Is(err, store.ErrNotFound):
		c.Author.Name = models.DisplayName(nil)
	default:
		slog.Warn("failed to load comment author", "error", err, "user_id", r.UserID)
		c.Author.Name = models.DisplayName(nil)
	}

	slog.Info("comment posted", "poll_id", pollID, "comment_id", c.ID)
	return c, nil
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const (
	minUsernameLength    = 3
	maxUsernameLength    = 30
	maxDisplayNameLength = 100
	maxAvatarURLLength   = 500
)

func validateUsername(username string) error {
	if len(username) < minUsernameLength {
		return apperr.Validation("Username must be at least 3 characters")
	}
	if len(username) > maxUsernameLength {
		return apperr.Validation("Username must be less than 30 characters")
	}
	if !usernamePattern.MatchString(username) {
		return apperr.Validation("Username can only contain letters, numbers, and underscores")
	}
	return nil
}

// UpdateProfile creates or patches the requester's profile. Nil fields keep
// their stored value; empty strings clear it.
func (s *Service) UpdateProfile(ctx context.Context, r auth.Requester, req models.UpdateProfileRequest) (models.Profile, error) {
	if !r.Authenticated() {
		return models.Profile{}, apperr.Unauthorized("Authentication required")
	}

	now := s.clock()
	p, err := s.store.GetProfile(ctx, r.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p = models.Profile{ID: r.UserID, CreatedAt: now}
	case err != nil:
		slog.Error("failed to query profile", "error", err, "user_id", r.UserID)
		return models.Profile{}, apperr.Internal("Database error", err)
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != "" {
			if err := validateUsername(username); err != nil {
				return models.Profile{}, err
			}
		}
		p.Username = username
	}
	if req.DisplayName != nil {
		displayName := strings.TrimSpace(*req.DisplayName)
		if utf8.RuneCountInString(displayName) > maxDisplayNameLength {
			return models.Profile{}, apperr.Validation("Display name must be less than 100 characters")
		}
		p.DisplayName = displayName
	}
	if req.AvatarURL != nil {
		avatarURL := strings.TrimSpace(*req.AvatarURL)
		if len(avatarURL) > maxAvatarURLLength {
			return models.Profile{}, apperr.Validation("Avatar URL is too long")
		}
		p.AvatarURL = avatarURL
	}
	p.UpdatedAt = now

	if err := s.store.UpsertProfile(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Profile{}, apperr.Conflict("Username is already taken")
		}
		slog.Error("failed to upsert profile", "error", err, "user_id", r.UserID)
		return models.Profile{}, apperr.Internal("Failed to update profile", err)
	}

	slog.Info("profile updated", "user_id", r.UserID)
	return p, nil
}
