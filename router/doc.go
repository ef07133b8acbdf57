// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the microgrants API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, svc, cfg)

# Endpoints

Operational:

	GET /health  - Database ping
	GET /metrics - Prometheus metrics

Grants (bearer token required unless noted):

	POST   /grants                 - Create grant
	GET    /grants                 - Caller's grants
	GET    /grants/{id}            - Grant detail (token optional)
	GET    /grants/{id}/preview    - Public counts (no token)
	DELETE /grants/{id}            - Delete grant and its applications
	POST   /grants/{id}/questions  - Add question
	POST   /grants/{id}/award      - Award to one application

Applications:

	POST /grants/{id}/applications                     - Apply
	GET  /grants/{id}/applications?q=                  - Owner's review list
	POST /grants/{id}/applications/{appID}/shortlist   - Toggle shortlist
*/
package router
