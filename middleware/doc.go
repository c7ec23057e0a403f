// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Chain

Per-route wrappers run inside the mux:

	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(
		identity(pollHandler.GetPoll)))

Process-wide wrappers sit outside it. WithMetrics goes directly around the
mux, which sets r.Pattern before it returns:

	server := http.Server{
		Handler: middleware.Recover(middleware.CORS(middleware.WithMetrics(mux))),
	}

# Identity

WithIdentity(secret) reads "Authorization: Bearer <jwt>". No header means an
anonymous requester; a malformed or expired token is a 401. Handlers read the
result with auth.FromContext.

# Metrics

WithMetrics feeds pollapp_http_requests_total and
pollapp_http_request_duration_seconds, labelled by route pattern.
Requests the mux could not route are labelled "unmatched".

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.WriteError(w, err) // status from apperr code

Parse JSON request bodies:

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, apperr.Validation("Invalid JSON"))
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr. Demo votes store
only a salted hash of the result.
*/
package middleware
