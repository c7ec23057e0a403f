// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/cliparse"
	"github.com/pollapp/pollapp-api/middleware"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/service"
)

// DemoVoteHandler serves the unauthenticated, session-keyed demo ballot.
type DemoVoteHandler struct {
	svc *service.Service
	cfg cliparse.Config
}

func NewDemoVoteHandler(svc *service.Service, cfg cliparse.Config) *DemoVoteHandler {
	return &DemoVoteHandler{svc: svc, cfg: cfg}
}

// SubmitDemoVote handles POST /polls/{id}/demo-votes
func (h *DemoVoteHandler) SubmitDemoVote(w http.ResponseWriter, r *http.Request) {
	// Get poll ID from path
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	// Parse request
	var req models.SubmitDemoVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, errInvalidJSON)
		return
	}

	// Fall back to the request's own User-Agent
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	// Record the ballot; the client IP is stored only as a salted hash
	agg, err := h.svc.SubmitDemoVote(r.Context(), service.DemoVoteInput{
		PollID:    pollID,
		OptionIDs: req.OptionIDs,
		SessionID: req.SessionID,
		UserAgent: userAgent,
		IPHash:    auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt),
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DemoVoteResponse{Success: true, DemoVotes: agg})
}

// GetDemoVotes handles GET /polls/{id}/demo-votes
func (h *DemoVoteHandler) GetDemoVotes(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	agg, err := h.svc.DemoAggregate(r.Context(), pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, agg)
}

// ClearDemoVotes handles DELETE /polls/{id}/demo-votes?sessionId=
func (h *DemoVoteHandler) ClearDemoVotes(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	// Clear the session named in the query string
	agg, err := h.svc.ClearDemoVote(r.Context(), pollID, r.URL.Query().Get("sessionId"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DemoVoteResponse{Success: true, DemoVotes: agg})
}

// GetSessionDemoVotes handles GET /polls/{id}/demo-votes/session?sessionId=
func (h *DemoVoteHandler) GetSessionDemoVotes(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.SessionDemoVotes(r.Context(), pollID, r.URL.Query().Get("sessionId"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
