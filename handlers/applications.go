// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/microgrants/middleware"
	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/review"
)

type ApplicationHandler struct {
	svc *review.Service
}

func NewApplicationHandler(svc *review.Service) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

// SubmitApplication handles POST /grants/{id}/applications
func (h *ApplicationHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitApplicationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	app, err := h.svc.SubmitApplication(r.Context(), r.PathValue("id"), middleware.CallerFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.SubmitApplicationResponse{ApplicationID: app.ID})
}

// ListApplications handles GET /grants/{id}/applications?q=
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListApplications(r.Context(), r.PathValue("id"), middleware.CallerFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}

// ToggleShortlist handles POST /grants/{id}/applications/{appID}/shortlist
func (h *ApplicationHandler) ToggleShortlist(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.ToggleShortlist(r.Context(), r.PathValue("id"), r.PathValue("appID"), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, app)
}
