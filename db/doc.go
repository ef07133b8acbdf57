// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and creates the schema.

# Connections

Open accepts "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - grants: grant metadata, lifecycle status, awardee, version
  - questions: prompts per grant
  - applications: one per (grant, applicant)
  - answers: one per (application, question)
  - profiles, labs: read-only display projections

# Relationships

	grants 1──* questions
	grants 1──* applications
	applications 1──* answers
	applications *──1 profiles (applicant_id)
	applications *──1 labs (lab_id, optional)

No foreign keys are declared. Cascading deletes are performed by the store
inside a transaction.
*/
package db
