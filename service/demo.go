// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/store"
)

// DemoVoteInput is an anonymous ballot identified by a browser session.
// IPHash is the already-salted client address, if known.
type DemoVoteInput struct {
	PollID    string
	OptionIDs []string
	SessionID string
	UserAgent string
	IPHash    string
}

func checkSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return apperr.Validation("sessionId is required")
	}
	if len(sessionID) > models.MaxSessionIDLength {
		return apperr.Validation("sessionId is too long")
	}
	return nil
}

// SubmitDemoVote records a demo ballot and returns the demo aggregate.
// Single-choice polls replace the session's earlier selection; multiple
// choice polls add to it, with repeats reported as CONFLICT. Demo votes
// never touch authenticated vote counts.
func (s *Service) SubmitDemoVote(ctx context.Context, in DemoVoteInput) (models.DemoAggregate, error) {
	if err := checkOptionIDs(in.OptionIDs); err != nil {
		return models.DemoAggregate{}, err
	}
	if err := checkSessionID(in.SessionID); err != nil {
		return models.DemoAggregate{}, err
	}

	p, err := s.loadPoll(ctx, in.PollID)
	if err != nil {
		return models.DemoAggregate{}, err
	}
	if err := s.checkAcceptsVotes(p); err != nil {
		return models.DemoAggregate{}, err
	}
	if err := s.checkSelection(ctx, p, in.OptionIDs); err != nil {
		return models.DemoAggregate{}, err
	}

	now := s.clock()
	votes := make([]models.DemoVote, len(in.OptionIDs))
	for i, optionID := range in.OptionIDs {
		votes[i] = models.DemoVote{
			ID:        auth.NewID(),
			PollID:    p.ID,
			OptionID:  optionID,
			SessionID: in.SessionID,
			UserAgent: in.UserAgent,
			IPHash:    in.IPHash,
			CreatedAt: now,
		}
	}

	if p.VoteType == models.VoteTypeSingle {
		err = s.demo.ReplaceDemoVotes(ctx, p.ID, in.SessionID, votes)
	} else {
		err = s.demo.InsertDemoVotes(ctx, votes)
	}
	if errors.Is(err, store.ErrDuplicate) {
		return models.DemoAggregate{}, apperr.Conflict("You have already submitted a demo vote for this poll")
	}
	if err != nil {
		slog.Error("failed to record demo vote", "error", err, "poll_id", p.ID)
		return models.DemoAggregate{}, apperr.Internal("Failed to record demo vote", err)
	}

	slog.Info("demo vote recorded", "poll_id", p.ID, "options", len(votes))

	return s.DemoAggregate(ctx, p.ID)
}

// ClearDemoVote deletes a session's demo votes. Clearing nothing succeeds.
func (s *Service) ClearDemoVote(ctx context.Context, pollID, sessionID string) (models.DemoAggregate, error) {
	if err := checkSessionID(sessionID); err != nil {
		return models.DemoAggregate{}, err
	}

	if err := s.demo.DeleteDemoVotes(ctx, pollID, sessionID); err != nil {
		slog.Error("failed to clear demo votes", "error", err, "poll_id", pollID)
		return models.DemoAggregate{}, apperr.Internal("Failed to clear demo vote", err)
	}

	return s.DemoAggregate(ctx, pollID)
}

// DemoAggregate counts demo votes per option. A poll without demo votes,
// or an unknown poll, yields a zero aggregate.
func (s *Service) DemoAggregate(ctx context.Context, pollID string) (models.DemoAggregate, error) {
	agg, err := s.demo.DemoAggregate(ctx, pollID)
	if err != nil {
		slog.Error("failed to read demo aggregate", "error", err, "poll_id", pollID)
		return models.DemoAggregate{}, apperr.Internal("Failed to load demo votes", err)
	}
	if agg.OptionDemoVotes == nil {
		agg.OptionDemoVotes = map[string]int{}
	}
	agg.PollID = pollID
	return agg, nil
}

// SessionDemoVotes returns the options a session has demo-voted for.
func (s *Service) SessionDemoVotes(ctx context.Context, pollID, sessionID string) (models.SessionDemoVotesResponse, error) {
	if err := checkSessionID(sessionID); err != nil {
		return models.SessionDemoVotesResponse{}, err
	}

	votes, err := s.demo.SessionDemoVotes(ctx, pollID, sessionID)
	if err != nil {
		slog.Error("failed to read session demo votes", "error", err, "poll_id", pollID)
		return models.SessionDemoVotesResponse{}, apperr.Internal("Failed to load demo votes", err)
	}

	ids := make([]string, len(votes))
	for i, v := range votes {
		ids[i] = v.OptionID
	}
	return models.SessionDemoVotesResponse{SessionID: sessionID, OptionIDs: ids}, nil
}
