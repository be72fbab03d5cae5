// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides poll tokens, the site password gate, and sessions.

# Poll Tokens

	token, err := auth.GeneratePollToken()

8 random bytes, URL-safe base64 without padding. Tokens are the only
public poll identifier; uniqueness is enforced by the database and the
caller retries on a collision.

# Site Password

There are no accounts. A shared password unlocks the site, then the
visitor picks who they are from the roster.

	hash, _ := auth.HashPassword("wattifnatt")
	err := auth.CheckPassword(hash, attempt) // ErrInvalidPassword on mismatch

Comparison ignores surrounding whitespace and case.

# Sessions

Session state (authed flag, selected user, next URL, flash message, saved
form) lives in an HS256-signed JWT cookie:

	sessions := auth.NewSessionManager(secret, auth.DefaultSessionTTL)
	s := sessions.Load(r)
	s.Flash = "Feil passord."
	sessions.Save(w, s)

A tampered or expired cookie loads as an empty session.

# Request Context

Middleware attaches the session and the selected user to the request:

	s := auth.SessionFromContext(r.Context())
	user, ok := auth.ActorFromContext(r.Context())
*/
package auth
