// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollapp API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg)

Every API route runs through WithLogging and WithIdentity. /health and
/metrics are bare. Metrics wrap the whole mux in main, so every route,
including misses, is counted.

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition

Poll lifecycle (writes require the owner's bearer token):

	GET    /polls              - List (status, limit, offset)
	POST   /polls              - Create (asDraft for a draft)
	GET    /polls/{id}         - Poll, options, counts, effective status
	PUT    /polls/{id}         - Partial edit
	DELETE /polls/{id}         - Delete with cascade
	POST   /polls/{id}/publish - draft → active
	POST   /polls/{id}/close   - active → closed

Voting:

	POST /polls/{id}/votes    - Authenticated ballot
	GET  /polls/{id}/my-votes - Requester's own selections

Demo voting (no account, keyed by sessionId):

	POST   /polls/{id}/demo-votes                   - Demo ballot
	GET    /polls/{id}/demo-votes                   - Demo aggregate
	DELETE /polls/{id}/demo-votes?sessionId=        - Clear a session
	GET    /polls/{id}/demo-votes/session?sessionId= - A session's selections

Voter visibility:

	GET /polls/{id}/voters/permissions - Can the requester see voters?
	GET /polls/{id}/voters             - Voters grouped by user and option

Comments and profiles:

	GET  /polls/{id}/comments - Newest first
	POST /polls/{id}/comments - Authenticated comment
	PUT  /profiles/me         - Upsert the requester's profile
*/
package router
