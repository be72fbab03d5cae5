// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for Duudl.

# Route Registration

NewRouter wires store, engine, sessions, templates and handlers, and
returns the full handler chain:

	handler, err := router.NewRouter(conn, cfg)

# Endpoints

Open:

	GET  /healthz
	GET  /static/...  embedded scripts and stylesheet
	GET  /login
	POST /login
	POST /logout

Logged in:

	GET  /select-user
	POST /select-user

Logged in with a selected user:

	GET  /
	GET  /duudl/new
	POST /duudl/new
	GET  /d/{token}
	POST /d/{token}/respond
	GET  /d/{token}/edit
	POST /d/{token}/edit
	POST /d/{token}/delete
	GET  /api/duudl/{token}
	POST /api/duudl/{token}/response
	POST /api/duudl/{token}/admin-response

# Middleware Order

	RequestID → Sessions → mux → WithLogging → guard → handler
*/
package router
