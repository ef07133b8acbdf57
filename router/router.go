// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/microgrants/cliparse"
	"github.com/danielhkuo/microgrants/handlers"
	"github.com/danielhkuo/microgrants/metrics"
	"github.com/danielhkuo/microgrants/middleware"
	"github.com/danielhkuo/microgrants/review"
	"github.com/danielhkuo/microgrants/store"
)

func NewRouter(s *store.Store, svc *review.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	grantHandler := handlers.NewGrantHandler(svc)
	applicationHandler := handlers.NewApplicationHandler(svc)

	requireCaller := middleware.RequireCaller(cfg.JWTSecret)
	optionalCaller := middleware.OptionalCaller(cfg.JWTSecret)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB().PingContext(r.Context()); err != nil {
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", metrics.Handler())

	// Grants
	mux.HandleFunc("POST /grants", middleware.WithLogging(requireCaller(grantHandler.CreateGrant)))
	mux.HandleFunc("GET /grants", middleware.WithLogging(requireCaller(grantHandler.ListMyGrants)))
	mux.HandleFunc("GET /grants/{id}", middleware.WithLogging(optionalCaller(grantHandler.GetGrant)))
	mux.HandleFunc("GET /grants/{id}/preview", middleware.WithLogging(grantHandler.GetPreview))
	mux.HandleFunc("DELETE /grants/{id}", middleware.WithLogging(requireCaller(grantHandler.DeleteGrant)))
	mux.HandleFunc("POST /grants/{id}/questions", middleware.WithLogging(requireCaller(grantHandler.AddQuestion)))
	mux.HandleFunc("POST /grants/{id}/award", middleware.WithLogging(requireCaller(grantHandler.Award)))

	// Applications
	mux.HandleFunc("POST /grants/{id}/applications", middleware.WithLogging(requireCaller(applicationHandler.SubmitApplication)))
	mux.HandleFunc("GET /grants/{id}/applications", middleware.WithLogging(requireCaller(applicationHandler.ListApplications)))
	mux.HandleFunc("POST /grants/{id}/applications/{appID}/shortlist", middleware.WithLogging(requireCaller(applicationHandler.ToggleShortlist)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("microgrants API v1"))
	})

	return mux
}
