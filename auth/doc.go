// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth carries the caller identity used by the review service.

Sessions and login are handled upstream; requests arrive with an HS256
JWT whose subject is the caller's user ID.

# Tokens

	token, err := auth.IssueToken(userID, secret, time.Hour)
	userID, err := auth.ParseToken(token, secret)

Tokens must carry the service issuer and an expiry. Any failure wraps
ErrInvalidToken.

# Headers

	token, err := auth.BearerToken(r.Header.Get("Authorization"))

Returns ErrMissingToken when the header is absent or not a bearer token.
*/
package auth
