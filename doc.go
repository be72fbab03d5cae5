// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Duudl server.

Duudl is a small availability poll: someone proposes a set of dates, shares
the link, and everyone marks each date yes, no or inconvenient, optionally
with a comment.

# Starting the Server

Defaults work out of the box (sqlite file in data/duudl.db, port 5001):

	go run .

Or with flags:

	go run . -p 8080 -t postgres -d "postgres://..."

# Configuration

  - PORT (-p): Server port (default: 5001)
  - DATABASE_URL (-d): sqlite path or Postgres URL
  - DATABASE_TYPE (-t): sqlite or postgres
  - DUUDL_SECRET_KEY / DUUDL_SECRET_KEY_FILE: session signing key
  - DUUDL_PASSWORD / DUUDL_PASSWORD_HASH: shared site password
  - LOG_MODE (-log): auto, production or development

A .env file in the working directory is loaded first.

# Architecture

  - duudl: poll operations (create, edit, answer, delete, snapshot)
  - db: schema, connection setup, response store queries
  - handlers: HTML pages and JSON API
  - router: Route definitions using Go 1.22+ routing
  - middleware: logging, request ids, sessions, guards, JSON helpers
  - auth: poll tokens, password gate, signed session cookie
  - views: embedded templates and date formatting
  - models: domain and read-model types
  - cliparse: Configuration parsing
  - logging: zap setup

See package documentation for each component.
*/
package main
