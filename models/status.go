// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// IsExpired reports whether the poll's expiry has been reached at now. A
// poll stops accepting votes at the expiry instant itself.
// Every voting, editing and display check goes through this function.
func IsExpired(p Poll, now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// EffectiveStatus overlays the derived expired state on an active poll.
func EffectiveStatus(p Poll, now time.Time) string {
	if p.Status == StatusActive && IsExpired(p, now) {
		return StatusExpired
	}
	return p.Status
}

// AcceptsVotes reports whether the poll is active and not expired.
func AcceptsVotes(p Poll, now time.Time) bool {
	return EffectiveStatus(p, now) == StatusActive
}

// NewPollDetails builds the read view of a poll. Totals are summed from the
// per-option counts, which are themselves derived from vote rows.
func NewPollDetails(p Poll, options []Option, now time.Time) PollDetails {
	if options == nil {
		options = []Option{}
	}
	total := 0
	for _, o := range options {
		total += o.VotesCount
	}
	return PollDetails{
		Poll:               p,
		Options:            options,
		TotalVotes:         total,
		EffectiveStatus:    EffectiveStatus(p, now),
		IsExpired:          IsExpired(p, now),
		IsActive:           p.Status == StatusActive,
		AllowMultipleVotes: p.VoteType == VoteTypeMultiple,
	}
}

// DisplayName resolves a profile to a human name: display name, then
// username, then "Anonymous".
func DisplayName(p *Profile) string {
	if p == nil {
		return "Anonymous"
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Username != "" {
		return p.Username
	}
	return "Anonymous"
}
