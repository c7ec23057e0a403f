// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/middleware"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/service"
)

type VoterHandler struct {
	svc *service.Service
}

func NewVoterHandler(svc *service.Service) *VoterHandler {
	return &VoterHandler{svc: svc}
}

// GetPermissions handles GET /polls/{id}/voters/permissions
//
// A missing poll is a 404 that still carries the {canView, reason} body.
func (h *VoterHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	// Evaluate the permission for whoever is asking
	perm, err := h.svc.CanViewVoters(r.Context(), auth.FromContext(r.Context()), pollID)
	if err != nil {
		// Missing poll still answers with the decision body
		if apperr.Is(err, apperr.CodeNotFound) {
			middleware.JSONResponse(w, http.StatusNotFound, perm)
			return
		}
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, perm)
}

// ListVoters handles GET /polls/{id}/voters
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	// The service re-checks the permission before loading any votes
	voters, err := h.svc.ListVoters(r.Context(), auth.FromContext(r.Context()), pollID)
	if err != nil {
		// Denials tell the client it has no permission
		code := apperr.CodeOf(err)
		if code == apperr.CodeUnauthorized || code == apperr.CodeForbidden {
			denied := false
			middleware.JSONResponse(w, apperr.HTTPStatus(code), models.ErrorResponse{
				Error:         apperr.MessageOf(err),
				Code:          code,
				HasPermission: &denied,
			})
			return
		}
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voters)
}
