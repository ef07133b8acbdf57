// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/microgrants/auth"
)

type callerKey struct{}

// WithCaller returns a context carrying the authenticated user ID
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerFrom returns the authenticated user ID, or "" for anonymous requests
func CallerFrom(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}

// RequireCaller rejects requests without a valid bearer token
func RequireCaller(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, err := callerFromRequest(r, secret)
			if err != nil {
				slog.Debug("rejected request", "path", r.URL.Path, "error", err)
				if errors.Is(err, auth.ErrMissingToken) {
					ErrorResponse(w, http.StatusUnauthorized, "Missing bearer token")
				} else {
					ErrorResponse(w, http.StatusUnauthorized, "Invalid bearer token")
				}
				return
			}
			next(w, r.WithContext(WithCaller(r.Context(), userID)))
		}
	}
}

// OptionalCaller identifies the caller when a token is present. Anonymous
// requests pass through; a present but invalid token is still rejected.
func OptionalCaller(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, err := callerFromRequest(r, secret)
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				next(w, r)
			case err != nil:
				ErrorResponse(w, http.StatusUnauthorized, "Invalid bearer token")
			default:
				next(w, r.WithContext(WithCaller(r.Context(), userID)))
			}
		}
	}
}

func callerFromRequest(r *http.Request, secret string) (string, error) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return "", err
	}
	return auth.ParseToken(token, secret)
}
