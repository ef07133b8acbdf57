// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the microgrants API server.

Microgrants lets a grant owner publish a small funded grant, collect
applications against a fixed question set, shortlist applicants and award
the grant to exactly one of them. Awarding registers a conditional charge
with the payment service; funds move only when the winner claims.

# Starting the Server

Configuration comes from the environment (optionally a .env file) and CLI
flags, flags winning:

	DATABASE_URL=microgrants.db JWT_SECRET=... go run .

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string or sqlite file
  - JWT_SECRET (-jwt-secret): HS256 secret for caller tokens

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - MAX_GRANT_AMOUNT_CENTS (-max-amount): largest allowed grant
  - PAYMENTS_URL (-payments-url): payment service; in-memory ledger if unset
  - CONTACTS_URL (-contacts-url): identity service for applicant emails
  - LOG_LEVEL (-log-level): debug, info, warn or error

# Architecture

  - review: aggregation, shortlisting, awarding and grant lifecycle
  - store: sqlx record store with transactional writes
  - payments, contacts: collaborator clients
  - handlers, router, middleware: HTTP surface
  - metrics: Prometheus collectors
  - db, cliparse, auth, models: schema, config, tokens, types
*/
package main
