// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/middleware"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/service"
)

type VotingHandler struct {
	svc *service.Service
}

func NewVotingHandler(svc *service.Service) *VotingHandler {
	return &VotingHandler{svc: svc}
}

// SubmitVote handles POST /polls/{id}/votes
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	// Parse request
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, errInvalidJSON)
		return
	}

	// Record the ballot (a second ballot from the same user is a 409)
	agg, err := h.svc.SubmitVote(r.Context(), auth.FromContext(r.Context()), pollID, req.OptionIDs)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, agg)
}

// GetMyVotes handles GET /polls/{id}/my-votes
func (h *VotingHandler) GetMyVotes(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.MyVotes(r.Context(), auth.FromContext(r.Context()), pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
