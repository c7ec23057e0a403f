// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package service implements the poll core: lifecycle, authenticated voting,
demo voting and voter visibility.

	svc := service.New(store.NewSQLStore(conn), store.NewSQLDemoStore(conn))
	agg, err := svc.SubmitVote(ctx, auth.User(id), pollID, []string{optionID})

Every operation takes the requester as an explicit auth.Requester; nothing
reads ambient session state. Errors are *apperr.Error values whose code
the HTTP layer maps to a status.

# Poll Lifecycle

	draft ──Publish──> active ──Close──> closed
	                     │
	                     └─ expired (derived: expiresAt <= now, read-only)

Expiry is never stored. models.IsExpired is the single predicate used by
voting, editing and display.

# Voting

SubmitVote checks, in order: request shape, poll exists, active, not
expired, authenticated, single-choice cardinality, option membership. A
second ballot from the same user is rejected by the store's unique
constraints and surfaces as CONFLICT. Counts are recomputed from vote rows.

# Demo Votes

Demo votes are keyed by a browser session id and live in their own
DemoStore. Single-choice polls replace the session's selection; multiple
choice polls accumulate. They never affect authenticated counts.

# Voter Visibility

CanViewVoters evaluates its rules first-match-wins; anonymous polls hide
voters from everyone, the owner included. ListVoters re-runs the check on
every call.
*/
package service
