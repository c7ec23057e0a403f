// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/pollapp/pollapp-api/apperr"
	"github.com/pollapp/pollapp-api/auth"
	"github.com/pollapp/pollapp-api/middleware"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/service"
)

type PollHandler struct {
	svc *service.Service
}

func NewPollHandler(svc *service.Service) *PollHandler {
	return &PollHandler{svc: svc}
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	// Parse paging parameters; the service applies defaults and caps
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		middleware.WriteError(w, apperr.Validation("limit must be a number"))
		return
	}
	offset, err := queryInt(q.Get("offset"))
	if err != nil {
		middleware.WriteError(w, apperr.Validation("offset must be a number"))
		return
	}

	resp, err := h.svc.ListPolls(r.Context(), auth.FromContext(r.Context()), q.Get("status"), limit, offset)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, errInvalidJSON)
		return
	}

	poll, err := h.svc.CreatePoll(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	poll, err := h.svc.GetPoll(r.Context(), auth.FromContext(r.Context()), pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, poll)
}

// UpdatePoll handles PUT /polls/{id}
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	// Parse request (absent fields are left unchanged)
	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, errInvalidJSON)
		return
	}

	// Apply the edit; frozen fields come back in ignoredFields
	resp, err := h.svc.UpdatePoll(r.Context(), auth.FromContext(r.Context()), pollID, req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// DeletePoll handles DELETE /polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeletePoll(r.Context(), auth.FromContext(r.Context()), pollID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Poll deleted",
	})
}

// PublishPoll handles POST /polls/{id}/publish
func (h *PollHandler) PublishPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	poll, err := h.svc.PublishPoll(r.Context(), auth.FromContext(r.Context()), pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := requirePollID(w, r)
	if !ok {
		return
	}

	poll, err := h.svc.ClosePoll(r.Context(), auth.FromContext(r.Context()), pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, poll)
}

var errInvalidJSON = apperr.Validation("Invalid JSON")

// requirePollID reads the {id} path value, writing a 400 when it is absent.
func requirePollID(w http.ResponseWriter, r *http.Request) (string, bool) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.WriteError(w, apperr.Validation("poll id is required"))
		return "", false
	}
	return pollID, true
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
