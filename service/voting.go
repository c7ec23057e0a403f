// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/store"
)

// SubmitVote records an authenticated ballot and returns the recounted
// aggregate. Checks run in order: request shape, poll exists, poll open,
// requester authenticated, cardinality, option membership. A repeat vote
// is rejected by the store and reported as CONFLICT.
func (s *Service) SubmitVote(ctx context.Context, r auth.Requester, pollID string, optionIDs []string) (models.VoteAggregate, error) {
	if err := checkOptionIDs(optionIDs); err != nil {
		return models.VoteAggregate{}, err
	}

	p, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return models.VoteAggregate{}, err
	}
	if err := s.checkAcceptsVotes(p); err != nil {
		return models.VoteAggregate{}, err
	}
	if !r.Authenticated() {
		return models.VoteAggregate{}, apperr.Unauthorized("Authentication required")
	}
	if err := s.checkSelection(ctx, p, optionIDs); err != nil {
		return models.VoteAggregate{}, err
	}

	now := s.clock()
	votes := make([]models.Vote, len(optionIDs))
	for i, optionID := range optionIDs {
		votes[i] = models.Vote{
			ID:        auth.NewID(),
			PollID:    p.ID,
			OptionID:  optionID,
			UserID:    r.UserID,
			CreatedAt: now,
		}
	}

	if err := s.store.InsertVotes(ctx, p.VoteType, votes); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.VoteAggregate{}, apperr.Conflict("You have already voted on this poll")
		}
		slog.Error("failed to insert votes", "error", err, "poll_id", p.ID)
		return models.VoteAggregate{}, apperr.Internal("Failed to record vote", err)
	}

	slog.Info("vote recorded", "poll_id", p.ID, "options", len(votes))

	// The vote is durable from here on; a failed recount is reported but
	// does not undo it.
	if err := s.store.RefreshVoteCounts(ctx, p.ID); err != nil {
		slog.Warn("failed to refresh vote counts", "error", err, "poll_id", p.ID)
		return models.VoteAggregate{}, apperr.Internal("Vote recorded but results could not be refreshed", err)
	}
	agg, err := s.store.VoteAggregate(ctx, p.ID)
	if err != nil {
		slog.Warn("failed to read vote aggregate", "error", err, "poll_id", p.ID)
		return models.VoteAggregate{}, apperr.Internal("Vote recorded but results could not be refreshed", err)
	}
	return agg, nil
}

// MyVotes reports whether the requester voted on the poll and which
// options they chose.
func (s *Service) MyVotes(ctx context.Context, r auth.Requester, pollID string) (models.MyVotesResponse, error) {
	if !r.Authenticated() {
		return models.MyVotesResponse{}, apperr.Unauthorized("Authentication required")
	}
	if _, err := s.loadVisiblePoll(ctx, r, pollID); err != nil {
		return models.MyVotesResponse{}, err
	}

	ids, err := s.store.UserVoteOptions(ctx, pollID, r.UserID)
	if err != nil {
		slog.Error("failed to query user votes", "error", err, "poll_id", pollID)
		return models.MyVotesResponse{}, apperr.Internal("Database error", err)
	}
	return models.MyVotesResponse{HasVoted: len(ids) > 0, OptionIDs: ids}, nil
}
