// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the PollApp API.

# Request Types

Request types are used for JSON deserialization of incoming requests:

  - CreatePollRequest: Title, options (2-10), vote type, anonymity, expiry
  - UpdatePollRequest: Partial owner edit; OptionalTime separates "absent" from "null"
  - SubmitVoteRequest: Option ids for an authenticated vote
  - SubmitDemoVoteRequest: Option ids plus the browser session fingerprint
  - CreateCommentRequest, UpdateProfileRequest

# Domain Types

Core entities mirror the database schema:

  - Poll: Question with lifecycle status and vote type
  - Option: One choice; VotesCount is a cache of COUNT(votes)
  - Vote: Authenticated selection, unique per (poll, user) or (poll, option, user)
  - DemoVote: Anonymous selection keyed by session id
  - Profile, Comment

# Poll Status

Persisted states are draft, active and closed. Expired is never stored:

	models.EffectiveStatus(poll, now) // "expired" when active and past expiresAt

IsExpired is the single predicate used by every gating check.

# Derived Views

  - PollDetails: Poll + options + total votes + derived status
  - VoteAggregate, DemoAggregate: counts derived from rows
  - VoterView, PollVoters: per-request voter listing, never cached
*/
package models
