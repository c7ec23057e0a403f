// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollapp API.

# Handler Types

Each handler is a thin adapter over *service.Service:

  - PollHandler: list, create, read, edit, delete, publish, close
  - VotingHandler: authenticated ballots and the requester's own votes
  - DemoVoteHandler: session-keyed demo ballots (needs config for IP hashing)
  - VoterHandler: voter-list permission and the voter list itself
  - CommentHandler: poll comments
  - ProfileHandler: the requester's own profile

	pollHandler := handlers.NewPollHandler(svc)
	demoHandler := handlers.NewDemoVoteHandler(svc, cfg)

# Request Flow

A handler reads the {id} path value, decodes the JSON body, takes the
requester from the context (set by middleware.WithIdentity), calls the
service, and writes either the result or middleware.WriteError(w, err).
Business rules live in the service; handlers only pick the success status.

# Status Codes

	201 POST /polls, POST /polls/{id}/votes, POST /polls/{id}/comments
	200 everything else that succeeds
	400 VALIDATION, 401 UNAUTHORIZED, 403 FORBIDDEN,
	404 NOT_FOUND, 409 CONFLICT, 500 INTERNAL

Two responses carry extra fields: voter-list denials add
"hasPermission": false, and a permission check on a missing poll returns 404
with the {canView, reason} body.
*/
package handlers
