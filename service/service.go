// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/store"
)

// Store is the persistence the core depends on. *store.SQLStore satisfies it.
type Store interface {
	CreatePoll(ctx context.Context, p models.Poll, options []models.Option) error
	GetPoll(ctx context.Context, id string) (models.Poll, error)
	ListPolls(ctx context.Context, f store.PollFilter) ([]models.Poll, error)
	ListOptions(ctx context.Context, pollID string) ([]models.Option, error)
	UpdatePoll(ctx context.Context, p models.Poll, edit store.OptionEdit) error
	DeletePoll(ctx context.Context, id string) error

	InsertVotes(ctx context.Context, voteType string, votes []models.Vote) error
	RefreshVoteCounts(ctx context.Context, pollID string) error
	VoteAggregate(ctx context.Context, pollID string) (models.VoteAggregate, error)
	CountVotes(ctx context.Context, pollID string) (int, error)
	HasVoted(ctx context.Context, pollID, userID string) (bool, error)
	UserVoteOptions(ctx context.Context, pollID, userID string) ([]string, error)
	ListVotes(ctx context.Context, pollID string) ([]models.Vote, error)

	GetProfile(ctx context.Context, id string) (models.Profile, error)
	GetProfiles(ctx context.Context, ids []string) (map[string]models.Profile, error)
	UpsertProfile(ctx context.Context, p models.Profile) error

	InsertComment(ctx context.Context, c models.Comment) error
	ListComments(ctx context.Context, pollID string) ([]models.Comment, error)
}

// DemoStore is the isolated namespace for demo votes. Implemented by
// *store.SQLDemoStore and *store.RedisDemoStore.
type DemoStore interface {
	InsertDemoVotes(ctx context.Context, votes []models.DemoVote) error
	ReplaceDemoVotes(ctx context.Context, pollID, sessionID string, votes []models.DemoVote) error
	DeleteDemoVotes(ctx context.Context, pollID, sessionID string) error
	PurgePoll(ctx context.Context, pollID string) error
	DemoAggregate(ctx context.Context, pollID string) (models.DemoAggregate, error)
	SessionDemoVotes(ctx context.Context, pollID, sessionID string) ([]models.DemoVote, error)
}

// Service implements poll lifecycle, voting, demo voting and voter
// visibility. Every operation takes the requester explicitly.
type Service struct {
	store Store
	demo  DemoStore
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st Store, demo DemoStore, opts ...Option) *Service {
	s := &Service{store: st, demo: demo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// loadPoll fetches a poll, mapping a missing row to NOT_FOUND.
func (s *Service) loadPoll(ctx context.Context, id string) (models.Poll, error) {
	p, err := s.store.GetPoll(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, apperr.NotFound("Poll not found")
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", id)
		return models.Poll{}, apperr.Internal("Database error", err)
	}
	return p, nil
}

// loadVisiblePoll is loadPoll for reads: a draft is NOT_FOUND to anyone
// but its owner.
func (s *Service) loadVisiblePoll(ctx context.Context, r auth.Requester, id string) (models.Poll, error) {
	p, err := s.loadPoll(ctx, id)
	if err != nil {
		return models.Poll{}, err
	}
	if p.Status == models.StatusDraft && p.CreatedBy != r.UserID {
		return models.Poll{}, apperr.NotFound("Poll not found")
	}
	return p, nil
}

// loadOwnedPoll applies the mutation checks in order: authenticated,
// poll exists, requester owns it.
func (s *Service) loadOwnedPoll(ctx context.Context, r auth.Requester, id string) (models.Poll, error) {
	if !r.Authenticated() {
		return models.Poll{}, apperr.Unauthorized("Authentication required")
	}
	p, err := s.loadPoll(ctx, id)
	if err != nil {
		return models.Poll{}, err
	}
	if p.CreatedBy != r.UserID {
		return models.Poll{}, apperr.Forbidden("Only the poll owner can modify this poll")
	}
	return p, nil
}

func (s *Service) details(ctx context.Context, p models.Poll) (models.PollDetails, error) {
	options, err := s.store.ListOptions(ctx, p.ID)
	if err != nil {
		slog.Error("failed to query options", "error", err, "poll_id", p.ID)
		return models.PollDetails{}, apperr.Internal("Database error", err)
	}
	return models.NewPollDetails(p, options, s.clock()), nil
}

// checkAcceptsVotes rejects closed, draft and expired polls with the same
// error class.
func (s *Service) checkAcceptsVotes(p models.Poll) error {
	if p.Status != models.StatusActive {
		return apperr.Validation("Poll is not active")
	}
	if models.IsExpired(p, s.clock()) {
		return apperr.Validation("Poll has expired")
	}
	return nil
}

// checkSelection validates cardinality and option membership for both
// vote paths.
func (s *Service) checkSelection(ctx context.Context, p models.Poll, optionIDs []string) error {
	if p.VoteType == models.VoteTypeSingle && len(optionIDs) != 1 {
		return apperr.Validation("Single-choice polls accept exactly one option")
	}

	options, err := s.store.ListOptions(ctx, p.ID)
	if err != nil {
		slog.Error("failed to query options", "error", err, "poll_id", p.ID)
		return apperr.Internal("Database error", err)
	}
	valid := make(map[string]bool, len(options))
	for _, o := range options {
		valid[o.ID] = true
	}
	for _, id := range optionIDs {
		if !valid[id] {
			return apperr.Validation("Invalid option for this poll")
		}
	}
	return nil
}

// checkOptionIDs validates request shape: non-empty, no blanks, no repeats.
func checkOptionIDs(optionIDs []string) error {
	if len(optionIDs) == 0 {
		return apperr.Validation("optionIds cannot be empty")
	}
	seen := make(map[string]bool, len(optionIDs))
	for _, id := range optionIDs {
		if id == "" {
			return apperr.Validation("optionIds cannot contain empty values")
		}
		if seen[id] {
			return apperr.Validation("optionIds cannot contain duplicates")
		}
		seen[id] = true
	}
	return nil
}
