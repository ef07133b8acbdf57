// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /grants/{id}", middleware.WithLogging(handler))

Logs completion (method, path, status, duration_ms) and records the
request in the HTTP metrics, labelled by route pattern.

# Callers

RequireCaller validates the bearer token and stores the user ID in the
request context; OptionalCaller does the same but lets anonymous requests
through:

	mux.HandleFunc("POST /grants", middleware.WithLogging(requireCaller(h.CreateGrant)))
	caller := middleware.CallerFrom(r.Context())

# Logging Setup

InitLogger installs a tint handler on stderr. Colour is disabled when
stderr is not a terminal.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ReasonResponse(w, http.StatusPreconditionFailed, "grant_not_open", "message")
*/
package middleware
