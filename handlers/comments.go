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

type CommentHandler struct {
	svc *service.Service
}

func NewCommentHandler(svc *service.Service) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// ListComments handles GET /polls/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	comments, err := h.svc.ListComments(r.Context(), auth.FromContext(r.Context()), pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CommentsResponse{Comments: comments})
}

// CreateComment handles POST /polls/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, errInvalidJSON)
		return
	}

	comment, err := h.svc.AddComment(r.Context(), auth.FromContext(r.Context()), pollID, req.CommentText)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.CommentResponse{Comment: comment})
}

type ProfileHandler struct {
	svc *service.Service
}

func NewProfileHandler(svc *service.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// UpdateMe handles PUT /profiles/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, errInvalidJSON)
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, profile)
}
