// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/models"
)

// Voter visibility reasons
const (
	ReasonPollNotFound   = "Poll not found"
	ReasonAnonymousPoll  = "Cannot view voters for anonymous polls"
	ReasonAuthRequired   = "Authentication required"
	ReasonPollOwner      = "Poll owner"
	ReasonPollVoter      = "Poll voter"
	ReasonNotParticipant = "Only poll creators and voters can view the voters list"
)

// CanViewVoters decides whether r may see who voted on a poll. The first
// matching rule wins: missing poll (or someone else's draft), anonymous poll (even for the owner),
// unauthenticated requester, owner, voter, everyone else. A missing poll
// also returns a NOT_FOUND error alongside the denial.
func (s *Service) CanViewVoters(ctx context.Context, r auth.Requester, pollID string) (models.VoterPermission, error) {
	p, err := s.loadVisiblePoll(ctx, r, pollID)
	if apperr.Is(err, apperr.CodeNotFound) {
		return models.VoterPermission{Reason: ReasonPollNotFound}, err
	}
	if err != nil {
		return models.VoterPermission{}, err
	}

	if p.IsAnonymous {
		return models.VoterPermission{Reason: ReasonAnonymousPoll}, nil
	}
	if !r.Authenticated() {
		return models.VoterPermission{Reason: ReasonAuthRequired}, nil
	}
	if p.CreatedBy == r.UserID {
		return models.VoterPermission{CanView: true, Reason: ReasonPollOwner}, nil
	}

	voted, err := s.store.HasVoted(ctx, p.ID, r.UserID)
	if err != nil {
		slog.Error("failed to check vote", "error", err, "poll_id", p.ID)
		return models.VoterPermission{}, apperr.Internal("Database error", err)
	}
	if voted {
		return models.VoterPermission{CanView: true, Reason: ReasonPollVoter}, nil
	}
	return models.VoterPermission{Reason: ReasonNotParticipant}, nil
}

// ListVoters re-checks CanViewVoters and then groups the poll's votes by
// user. Denials come back as UNAUTHORIZED or FORBIDDEN carrying the reason.
// Voters are ordered by their earliest vote; each option's voters by vote
// time.
func (s *Service) ListVoters(ctx context.Context, r auth.Requester, pollID string) (models.PollVoters, error) {
	perm, err := s.CanViewVoters(ctx, r, pollID)
	if err != nil {
		return models.PollVoters{}, err
	}
	if !perm.CanView {
		if perm.Reason == ReasonAuthRequired {
			return models.PollVoters{}, apperr.Unauthorized(perm.Reason)
		}
		return models.PollVoters{}, apperr.Forbidden(perm.Reason)
	}

	votes, err := s.store.ListVotes(ctx, pollID)
	if err != nil {
		slog.Error("failed to query votes", "error", err, "poll_id", pollID)
		return models.PollVoters{}, apperr.Internal("Database error", err)
	}

	var userIDs []string
	byUser := make(map[string]*models.VoterView)
	for _, v := range votes {
		view, ok := byUser[v.UserID]
		if !ok {
			view = &models.VoterView{ID: v.UserID, VotedAt: v.CreatedAt}
			byUser[v.UserID] = view
			userIDs = append(userIDs, v.UserID)
		}
		if v.CreatedAt.Before(view.VotedAt) {
			view.VotedAt = v.CreatedAt
		}
		if !slices.Contains(view.SelectedOptions, v.OptionID) {
			view.SelectedOptions = append(view.SelectedOptions, v.OptionID)
		}
	}

	profiles, err := s.store.GetProfiles(ctx, userIDs)
	if err != nil {
		slog.Warn("failed to load voter profiles", "error", err, "poll_id", pollID)
		profiles = nil
	}
	for _, id := range userIDs {
		applyProfile(byUser[id], profiles)
	}

	result := models.PollVoters{
		Total:        len(userIDs),
		Voters:       make([]models.VoterView, 0, len(userIDs)),
		OptionVoters: make(map[string][]models.VoterView),
	}
	for _, id := range userIDs {
		result.Voters = append(result.Voters, *byUser[id])
	}
	for _, v := range votes {
		entry := *byUser[v.UserID]
		entry.VotedAt = v.CreatedAt
		entry.SelectedOptions = nil
		result.OptionVoters[v.OptionID] = append(result.OptionVoters[v.OptionID], entry)
	}
	return result, nil
}

func applyProfile(view *models.VoterView, profiles map[string]models.Profile) {
	p, ok := profiles[view.ID]
	if !ok {
		view.Name = models.DisplayName(nil)
		return
	}
	view.Name = models.DisplayName(&p)
	view.Username = p.Username
	view.DisplayName = p.DisplayName
	view.AvatarURL = p.AvatarURL
}
