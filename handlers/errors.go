// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/microgrants/middleware"
	"github.com/danielhkuo/microgrants/review"
)

// writeServiceError maps review errors onto HTTP responses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if reason, ok := review.ReasonOf(err); ok {
		middleware.ReasonResponse(w, http.StatusPreconditionFailed, string(reason), err.Error())
		return
	}

	switch {
	case errors.Is(err, review.ErrInvalidInput):
		middleware.ErrorResponse(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), review.ErrInvalidInput.Error()+": "))
	case errors.Is(err, review.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, review.ErrUnauthorized):
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the grant owner can do this")
	case errors.Is(err, review.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "Grant was modified by another request")
	case errors.Is(err, review.ErrAlreadyApplied):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already applied to this grant")
	case errors.Is(err, review.ErrCollaboratorUnavailable):
		slog.Warn("collaborator unavailable", "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Payment service unavailable, try again later")
	case errors.Is(err, review.ErrPartialWrite):
		slog.Error("partial write", "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Operation did not complete, nothing was changed")
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}
