// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the microgrants API.

# Handler Types

Each handler is a struct holding the review service:

  - GrantHandler: grant lifecycle (create, view, questions, award, delete)
  - ApplicationHandler: submissions, the owner's review list, shortlisting

Handlers are created with the shared service:

	grantHandler := handlers.NewGrantHandler(svc)

Handlers read the caller from the request context (see
middleware.RequireCaller) and never authenticate on their own.

# Grant Lifecycle

A grant is open until it is awarded, and the award is final:

	POST   /grants                        → CreateGrant
	POST   /grants/{id}/questions         → AddQuestion (open, no applications yet)
	POST   /grants/{id}/applications      → SubmitApplication
	POST   /grants/{id}/award             → Award (open → awarded)
	DELETE /grants/{id}                   → DeleteGrant

# Errors

Service errors map onto status codes in one place (writeServiceError):

	not found                404
	not the owner            403
	precondition refused     412, with "reason"
	concurrent modification  409
	payment service down     503
*/
package handlers
