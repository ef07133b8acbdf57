// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/microgrants/middleware"
	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/review"
)

type GrantHandler struct {
	svc *review.Service
}

func NewGrantHandler(svc *review.Service) *GrantHandler {
	return &GrantHandler{svc: svc}
}

// CreateGrant handles POST /grants
func (h *GrantHandler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGrantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	grant, err := h.svc.CreateGrant(r.Context(), middleware.CallerFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateGrantResponse{GrantID: grant.ID})
}

// ListMyGrants handles GET /grants
func (h *GrantHandler) ListMyGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.svc.ListMyGrants(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, grants)
}

// GetGrant handles GET /grants/{id}
func (h *GrantHandler) GetGrant(w http.ResponseWriter, r *http.Request) {
	grantID := r.PathValue("id")

	state, err := h.svc.GrantState(r.Context(), grantID, middleware.CallerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, state)
}

// GetPreview handles GET /grants/{id}/preview
func (h *GrantHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	preview, err := h.svc.Preview(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, preview)
}

// DeleteGrant handles DELETE /grants/{id}
func (h *GrantHandler) DeleteGrant(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGrant(r.Context(), r.PathValue("id"), middleware.CallerFrom(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddQuestion handles POST /grants/{id}/questions
func (h *GrantHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.AddQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	q, err := h.svc.AddQuestion(r.Context(), r.PathValue("id"), middleware.CallerFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.AddQuestionResponse{QuestionID: q.ID})
}

// Award handles POST /grants/{id}/award
func (h *GrantHandler) Award(w http.ResponseWriter, r *http.Request) {
	var req models.AwardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ApplicationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "application_id is required")
		return
	}

	state, err := h.svc.Award(r.Context(), review.AwardRequest{
		GrantID:                r.PathValue("id"),
		ApplicationID:          req.ApplicationID,
		Caller:                 middleware.CallerFrom(r.Context()),
		AuthorizationConfirmed: req.AuthorizationConfirmed,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, state)
}
