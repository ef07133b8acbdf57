// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (cleanenv struct tags, with defaults),
then CLI flags override them. LoadDotEnv loads a .env file beforehand.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - JWTSecret: secret for caller identity tokens (required)
  - MaxGrantAmountCents: policy cap for grant amounts (default: 500000)
  - PaymentsURL, ContactsURL: collaborator services (empty = in-process)
  - ContactsCacheSize: LRU size for contact lookups (default: 1024)
  - CollaboratorTimeout: HTTP timeout for collaborators (default: 10s)
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	--jwt-secret   JWT secret
	--max-amount   Grant amount cap in cents
	--payments-url Payment service URL
	--contacts-url Contact service URL
	--log-level    Log level

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, JWT_SECRET, MAX_GRANT_AMOUNT_CENTS,
	PAYMENTS_URL, CONTACTS_URL, CONTACTS_CACHE_SIZE, COLLABORATOR_TIMEOUT,
	LOG_LEVEL

# Validation

ParseFlags returns an error if DATABASE_URL or JWT_SECRET is missing, the
database type is unknown, or the amount cap is not positive.
*/
package cliparse
