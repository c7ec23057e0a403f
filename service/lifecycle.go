// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/store"
)

// List filter values accepted by ListPolls besides the stored statuses.
const (
	FilterAll = "all"

	DefaultListLimit = 20
	MaxListLimit     = 50
)

func validateTitle(title string) error {
	if title == "" {
		return apperr.Validation("Poll title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return apperr.Validation("Poll title must be less than 200 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > models.MaxDescriptionLength {
		return apperr.Validation("Poll description must be less than 1000 characters")
	}
	return nil
}

func validateExpiry(expiresAt *time.Time, now time.Time) error {
	if expiresAt != nil && !expiresAt.After(now) {
		return apperr.Validation("Expiry date must be in the future")
	}
	return nil
}

func validateOptionText(index int, text string) error {
	if utf8.RuneCountInString(text) > models.MaxOptionLength {
		return apperr.Validation(fmt.Sprintf("Option %d must be less than 200 characters", index+1))
	}
	return nil
}

func validateOptionCount(n int) error {
	if n < models.MinOptions {
		return apperr.Validation("At least 2 poll options are required")
	}
	if n > models.MaxOptions {
		return apperr.Validation("Maximum 10 poll options allowed")
	}
	return nil
}

// cleanOptions trims option texts and drops blank ones.
func cleanOptions(texts []string) []string {
	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned
}

func validateOptions(texts []string) error {
	if err := validateOptionCount(len(texts)); err != nil {
		return err
	}
	for i, t := range texts {
		if err := validateOptionText(i, t); err != nil {
			return err
		}
	}
	return nil
}

func newOptions(pollID string, texts []string, firstOrder int) []models.Option {
	options := make([]models.Option, len(texts))
	for i, t := range texts {
		options[i] = models.Option{
			ID:     auth.NewID(),
			PollID: pollID,
			Text:   t,
			Order:  firstOrder + i,
		}
	}
	return options
}

func voteTypeFor(allowMultiple bool) string {
	if allowMultiple {
		return models.VoteTypeMultiple
	}
	return models.VoteTypeSingle
}

// CreatePoll validates the request and stores the poll with its options in
// one transaction. Polls start active unless AsDraft is set.
func (s *Service) CreatePoll(ctx context.Context, r auth.Requester, req models.CreatePollRequest) (models.PollDetails, error) {
	if !r.Authenticated() {
		return models.PollDetails{}, apperr.Unauthorized("Authentication required")
	}

	now := s.clock()
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	texts := cleanOptions(req.Options)

	if err := validateTitle(title); err != nil {
		return models.PollDetails{}, err
	}
	if err := validateDescription(description); err != nil {
		return models.PollDetails{}, err
	}
	if err := validateOptions(texts); err != nil {
		return models.PollDetails{}, err
	}
	if err := validateExpiry(req.ExpiresAt, now); err != nil {
		return models.PollDetails{}, err
	}

	status := models.StatusActive
	if req.AsDraft {
		status = models.StatusDraft
	}

	p := models.Poll{
		ID:          auth.NewID(),
		Title:       title,
		Description: description,
		Status:      status,
		VoteType:    voteTypeFor(req.AllowMultipleVotes),
		IsAnonymous: req.IsAnonymous,
		CreatedBy:   r.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.ExpiresAt != nil {
		e := req.ExpiresAt.UTC()
		p.ExpiresAt = &e
	}
	options := newOptions(p.ID, texts, 0)

	if err := s.store.CreatePoll(ctx, p, options); err != nil {
		slog.Error("failed to create poll", "error", err)
		return models.PollDetails{}, apperr.Internal("Failed to create poll", err)
	}

	slog.Info("poll created", "poll_id", p.ID, "status", p.Status, "options", len(options))

	return models.NewPollDetails(p, options, now), nil
}

// GetPoll returns a poll with its options and derived status. Drafts are
// visible to their owner only.
func (s *Service) GetPoll(ctx context.Context, r auth.Requester, id string) (models.PollDetails, error) {
	p, err := s.loadVisiblePoll(ctx, r, id)
	if err != nil {
		return models.PollDetails{}, err
	}
	return s.details(ctx, p)
}

// ListPolls pages through polls newest first. status is active (default),
// closed, all (active and closed) or draft, which lists the requester's own
// drafts.
func (s *Service) ListPolls(ctx context.Context, r auth.Requester, status string, limit, offset int) (models.ListPollsResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	f := store.PollFilter{Limit: limit + 1, Offset: offset}
	switch status {
	case "", models.StatusActive:
		f.Statuses = []string{models.StatusActive}
	case models.StatusClosed:
		f.Statuses = []string{models.StatusClosed}
	case FilterAll:
		f.Statuses = []string{models.StatusActive, models.StatusClosed}
	case models.StatusDraft:
		if !r.Authenticated() {
			return models.ListPollsResponse{}, apperr.Unauthorized("Authentication required")
		}
		f.Statuses = []string{models.StatusDraft}
		f.CreatedBy = r.UserID
	default:
		return models.ListPollsResponse{}, apperr.Validation("status must be one of active, closed, draft, all")
	}

	polls, err := s.store.ListPolls(ctx, f)
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		return models.ListPollsResponse{}, apperr.Internal("Database error", err)
	}

	hasMore := len(polls) > limit
	if hasMore {
		polls = polls[:limit]
	}

	resp := models.ListPollsResponse{
		Polls:      make([]models.PollDetails, 0, len(polls)),
		Pagination: models.Pagination{Limit: limit, Offset: offset, HasMore: hasMore},
	}
	for _, p := range polls {
		d, err := s.details(ctx, p)
		if err != nil {
			return models.ListPollsResponse{}, err
		}
		resp.Polls = append(resp.Polls, d)
	}
	return resp, nil
}

// UpdatePoll applies an owner's partial edit. Once a poll has votes the
// vote type, anonymity and existing option texts are frozen; attempts to
// change them are skipped and reported in IgnoredFields. New options may
// still be appended.
func (s *Service) UpdatePoll(ctx context.Context, r auth.Requester, id string, req models.UpdatePollRequest) (models.UpdatePollResponse, error) {
	p, err := s.loadOwnedPoll(ctx, r, id)
	if err != nil {
		return models.UpdatePollResponse{}, err
	}

	votes, err := s.store.CountVotes(ctx, p.ID)
	if err != nil {
		slog.Error("failed to count votes", "error", err, "poll_id", p.ID)
		return models.UpdatePollResponse{}, apperr.Internal("Database error", err)
	}

	now := s.clock()
	updated := p
	ignored := []string{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return models.UpdatePollResponse{}, err
		}
		updated.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if err := validateDescription(description); err != nil {
			return models.UpdatePollResponse{}, err
		}
		updated.Description = description
	}
	if req.ExpiresAt.Set {
		if err := validateExpiry(req.ExpiresAt.Value, now); err != nil {
			return models.UpdatePollResponse{}, err
		}
		updated.ExpiresAt = nil
		if req.ExpiresAt.Value != nil {
			e := req.ExpiresAt.Value.UTC()
			updated.ExpiresAt = &e
		}
	}
	if req.IsActive != nil {
		switch {
		case *req.IsActive:
			updated.Status = models.StatusActive
		case p.Status != models.StatusDraft:
			updated.Status = models.StatusClosed
		}
	}

	var edit store.OptionEdit
	if votes == 0 {
		if req.AllowMultipleVotes != nil {
			updated.VoteType = voteTypeFor(*req.AllowMultipleVotes)
		}
		if req.IsAnonymous != nil {
			updated.IsAnonymous = *req.IsAnonymous
		}
		// A vote may land before the write; the store re-checks.
		edit.RequireNoVotes = updated.VoteType != p.VoteType || updated.IsAnonymous != p.IsAnonymous
		if req.Options != nil {
			texts := make([]string, len(req.Options))
			for i, o := range req.Options {
				texts[i] = o.Text
			}
			texts = cleanOptions(texts)
			if err := validateOptions(texts); err != nil {
				return models.UpdatePollResponse{}, err
			}
			edit.Replace = true
			edit.Options = newOptions(p.ID, texts, 0)
		}
	} else {
		if req.AllowMultipleVotes != nil && voteTypeFor(*req.AllowMultipleVotes) != p.VoteType {
			ignored = append(ignored, "allowMultipleVotes")
		}
		if req.IsAnonymous != nil && *req.IsAnonymous != p.IsAnonymous {
			ignored = append(ignored, "isAnonymous")
		}
		if req.Options != nil {
			appended, touched, err := s.appendOnly(ctx, p.ID, req.Options)
			if err != nil {
				return models.UpdatePollResponse{}, err
			}
			if touched {
				ignored = append(ignored, "options")
			}
			edit = store.OptionEdit{Options: appended}
		}
	}

	updated.UpdatedAt = now
	if err := s.store.UpdatePoll(ctx, updated, edit); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.UpdatePollResponse{}, apperr.NotFound("Poll not found")
		}
		if errors.Is(err, store.ErrHasVotes) {
			return models.UpdatePollResponse{}, apperr.Conflict("Poll received votes; only new options can be added")
		}
		slog.Error("failed to update poll", "error", err, "poll_id", p.ID)
		return models.UpdatePollResponse{}, apperr.Internal("Failed to update poll", err)
	}

	if edit.Replace {
		if err := s.demo.PurgePoll(ctx, p.ID); err != nil {
			slog.Warn("failed to purge demo votes after option replace", "error", err, "poll_id", p.ID)
		}
	}

	slog.Info("poll updated", "poll_id", p.ID, "votes", votes, "ignored_fields", ignored)

	d, err := s.details(ctx, updated)
	if err != nil {
		return models.UpdatePollResponse{}, err
	}
	return models.UpdatePollResponse{Poll: d, IgnoredFields: ignored}, nil
}

// appendOnly builds the options to add to a poll that already has votes.
// Entries flagged IsNew are appended after the current highest order.
// Existing options left out of updates are kept; renaming one, or naming an
// unknown id, sets touched.
func (s *Service) appendOnly(ctx context.Context, pollID string, updates []models.OptionUpdate) ([]models.Option, bool, error) {
	existing, err := s.store.ListOptions(ctx, pollID)
	if err != nil {
		slog.Error("failed to query options", "error", err, "poll_id", pollID)
		return nil, false, apperr.Internal("Database error", err)
	}

	byID := make(map[string]models.Option, len(existing))
	nextOrder := 0
	for _, o := range existing {
		byID[o.ID] = o
		if o.Order >= nextOrder {
			nextOrder = o.Order + 1
		}
	}

	touched := false
	var texts []string
	for _, u := range updates {
		if u.IsNew {
			if t := strings.TrimSpace(u.Text); t != "" {
				texts = append(texts, t)
			}
			continue
		}
		o, ok := byID[u.ID]
		if !ok {
			touched = true
			continue
		}
		if strings.TrimSpace(u.Text) != o.Text {
			touched = true
		}
	}
	if err := validateOptionCount(len(existing) + len(texts)); err != nil {
		return nil, false, err
	}
	for i, t := range texts {
		if err := validateOptionText(len(existing)+i, t); err != nil {
			return nil, false, err
		}
	}

	return newOptions(pollID, texts, nextOrder), touched, nil
}

// PublishPoll moves an owner's draft to active.
func (s *Service) PublishPoll(ctx context.Context, r auth.Requester, id string) (models.PollDetails, error) {
	p, err := s.loadOwnedPoll(ctx, r, id)
	if err != nil {
		return models.PollDetails{}, err
	}
	if p.Status != models.StatusDraft {
		return models.PollDetails{}, apperr.Validation("Only draft polls can be published")
	}

	options, err := s.store.ListOptions(ctx, p.ID)
	if err != nil {
		slog.Error("failed to query options", "error", err, "poll_id", p.ID)
		return models.PollDetails{}, apperr.Internal("Database error", err)
	}
	if len(options) < models.MinOptions {
		return models.PollDetails{}, apperr.Validation("At least 2 poll options are required")
	}

	return s.transition(ctx, p, models.StatusActive, "poll published")
}

// ClosePoll moves an owner's active poll to closed. Expired polls may be
// closed too.
func (s *Service) ClosePoll(ctx context.Context, r auth.Requester, id string) (models.PollDetails, error) {
	p, err := s.loadOwnedPoll(ctx, r, id)
	if err != nil {
		return models.PollDetails{}, err
	}
	if p.Status != models.StatusActive {
		return models.PollDetails{}, apperr.Validation("Only active polls can be closed")
	}
	return s.transition(ctx, p, models.StatusClosed, "poll closed")
}

func (s *Service) transition(ctx context.Context, p models.Poll, status, msg string) (models.PollDetails, error) {
	p.Status = status
	p.UpdatedAt = s.clock()
	if err := s.store.UpdatePoll(ctx, p, store.OptionEdit{}); err != nil {
		slog.Error("failed to update poll status", "error", err, "poll_id", p.ID, "status", status)
		return models.PollDetails{}, apperr.Internal("Failed to update poll", err)
	}

	slog.Info(msg, "poll_id", p.ID)

	return s.details(ctx, p)
}

// DeletePoll removes an owner's poll. Options, votes and comments cascade;
// demo votes are purged from their namespace.
func (s *Service) DeletePoll(ctx context.Context, r auth.Requester, id string) error {
	p, err := s.loadOwnedPoll(ctx, r, id)
	if err != nil {
		return err
	}

	if err := s.store.DeletePoll(ctx, p.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Poll not found")
		}
		slog.Error("failed to delete poll", "error", err, "poll_id", p.ID)
		return apperr.Internal("Failed to delete poll", err)
	}

	if err := s.demo.PurgePoll(ctx, p.ID); err != nil {
		slog.Warn("failed to purge demo votes", "error", err, "poll_id", p.ID)
	}

	slog.Info("poll deleted", "poll_id", p.ID)
	return nil
}
