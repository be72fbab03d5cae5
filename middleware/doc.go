// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware, access guards, and helpers.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /healthz", middleware.WithLogging(handler))

Logs method, path, status, remote, request_id and duration_ms on the zap
global logger.

# Request IDs and Sessions

	handler := middleware.RequestID(middleware.Sessions(sessions, mux))

RequestID sets X-Request-Id (a UUID). Sessions decodes the session cookie
into the request context.

# Guards

Guards run in two stages, the same way for pages and API calls:

	guard := middleware.NewGuard(sessions, store)
	mux.HandleFunc("GET /select-user", guard.RequireLogin(h.SelectUserPage))
	mux.HandleFunc("GET /", guard.RequireSelectedUser(h.Overview))

Not logged in redirects to /login; logged in without a valid selected user
redirects to /select-user. Both remember the requested URL first.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Bad value")

ParseJSONObject normalises any body that is not a JSON object to an empty
map instead of failing.
*/
package middleware
