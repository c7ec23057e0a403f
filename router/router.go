// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pollapp/pollapp-api/cliparse"
	"github.com/pollapp/pollapp-api/handlers"
	"github.com/pollapp/pollapp-api/middleware"
	"github.com/pollapp/pollapp-api/service"
)

func NewRouter(svc *service.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(svc)
	votingHandler := handlers.NewVotingHandler(svc)
	demoHandler := handlers.NewDemoVoteHandler(svc, cfg)
	voterHandler := handlers.NewVoterHandler(svc)
	commentHandler := handlers.NewCommentHandler(svc)
	profileHandler := handlers.NewProfileHandler(svc)

	identity := middleware.WithIdentity(cfg.JWTSecret)
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(identity(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Poll lifecycle
	mux.HandleFunc("GET /polls", wrap(pollHandler.ListPolls))
	mux.HandleFunc("POST /polls", wrap(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", wrap(pollHandler.GetPoll))
	mux.HandleFunc("PUT /polls/{id}", wrap(pollHandler.UpdatePoll))
	mux.HandleFunc("DELETE /polls/{id}", wrap(pollHandler.DeletePoll))
	mux.HandleFunc("POST /polls/{id}/publish", wrap(pollHandler.PublishPoll))
	mux.HandleFunc("POST /polls/{id}/close", wrap(pollHandler.ClosePoll))

	// Authenticated voting
	mux.HandleFunc("POST /polls/{id}/votes", wrap(votingHandler.SubmitVote))
	mux.HandleFunc("GET /polls/{id}/my-votes", wrap(votingHandler.GetMyVotes))

	// Demo voting (no account, keyed by session)
	mux.HandleFunc("POST /polls/{id}/demo-votes", wrap(demoHandler.SubmitDemoVote))
	mux.HandleFunc("GET /polls/{id}/demo-votes", wrap(demoHandler.GetDemoVotes))
	mux.HandleFunc("DELETE /polls/{id}/demo-votes", wrap(demoHandler.ClearDemoVotes))
	mux.HandleFunc("GET /polls/{id}/demo-votes/session", wrap(demoHandler.GetSessionDemoVotes))

	// Voter visibility
	mux.HandleFunc("GET /polls/{id}/voters/permissions", wrap(voterHandler.GetPermissions))
	mux.HandleFunc("GET /polls/{id}/voters", wrap(voterHandler.ListVoters))

	// Comments and profiles
	mux.HandleFunc("GET /polls/{id}/comments", wrap(commentHandler.ListComments))
	mux.HandleFunc("POST /polls/{id}/comments", wrap(commentHandler.CreateComment))
	mux.HandleFunc("PUT /profiles/me", wrap(profileHandler.UpdateMe))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollapp API v1"))
	})

	return mux
}
