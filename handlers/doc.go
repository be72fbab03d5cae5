// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers for Duudl pages and the JSON API.

# Handler Types

  - PageHandler: login, user selection, overview, create/show/edit/delete
  - APIHandler: health check, grid snapshot, response upserts

	pages, err := handlers.NewPageHandler(store, engine, sessions, renderer, cfg)
	api := handlers.NewAPIHandler(store, engine)

Handlers read the session and the selected user from the request context;
middleware guards put them there.

# Page Flow

	GET  /login         → LoginPage
	POST /login         → Login (shared password)
	GET  /select-user   → SelectUserPage
	POST /select-user   → SelectUser (then back to the saved URL)
	GET  /              → Overview
	GET  /duudl/new     → NewDuudlPage
	POST /duudl/new     → CreateDuudl
	GET  /d/{token}     → ShowDuudl
	POST /d/{token}/respond → RespondDuudl (answer form, no scripts needed)
	GET  /d/{token}/edit    → EditDuudlPage
	POST /d/{token}/edit    → EditDuudl
	POST /d/{token}/delete  → DeleteDuudl

Validation failures become a flash message and a redirect back to the
form; the create form keeps what the user typed.

# JSON API

	GET  /api/duudl/{token}                → GetState
	POST /api/duudl/{token}/response       → PostResponse (own cell)
	POST /api/duudl/{token}/admin-response → PostAdminResponse (any cell)

Bodies that are not JSON objects are treated as empty. Rejections are 400
with a short message: "Bad value", "Bad day", "Bad user_id",
"Unknown user". An unknown token is 404.
*/
package handlers
