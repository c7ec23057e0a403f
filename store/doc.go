// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls and votes.

# SQL Store

SQLStore owns polls, options, authenticated votes, profiles and comments.
Queries use $N placeholders, which both lib/pq and modernc.org/sqlite
accept:

	s := store.NewSQLStore(conn)
	poll, err := s.GetPoll(ctx, id) // store.ErrNotFound if missing

Multi-row writes (poll creation, poll edits, a user's ballot) run in a
single transaction.

# Vote Uniqueness

The store, not the caller, rejects repeat votes. InsertVotes returns
ErrDuplicate when the votes table's UNIQUE constraints fire, which allows
one row per (poll, user) on single-choice polls and one row per
(poll, option, user) on multiple-choice polls.

Per-option votes_count is rewritten from COUNT(votes) by RefreshVoteCounts.

# Demo Votes

Demo votes never touch the votes table. Two backends share one contract:

	store.NewSQLDemoStore(conn)   // demo_votes table; replace is transactional
	store.NewRedisDemoStore(rdb)  // demo:{pollID}:* keys; replace is delete-then-insert

Both return ErrDuplicate for a repeated (poll, option, session).
*/
package store
