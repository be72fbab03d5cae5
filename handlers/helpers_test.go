// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielhkuo/duudl/auth"
	"github.com/danielhkuo/duudl/cliparse"
	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/duudl"
	"github.com/danielhkuo/duudl/testutil"
	"github.com/danielhkuo/duudl/views"
)

type testEnv struct {
	cfg      cliparse.Config
	store    *db.Store
	engine   *duudl.Engine
	sessions *auth.SessionManager
	pages    *PageHandler
	api      *APIHandler
}

func setupHandlers(t *testing.T) *testEnv {
	t.Helper()

	cfg := testutil.GetTestConfig()
	store, engine := testutil.SetupTestEngine(t)
	sessions := auth.NewSessionManager(cfg.SecretKey, auth.DefaultSessionTTL)

	renderer, err := views.New()
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}
	pages, err := NewPageHandler(store, engine, sessions, renderer, cfg)
	if err != nil {
		t.Fatalf("Failed to create page handler: %v", err)
	}

	return &testEnv{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		sessions: sessions,
		pages:    pages,
		api:      NewAPIHandler(store, engine),
	}
}

// withSession attaches s the way the Sessions middleware does
func withSession(req *http.Request, s *auth.Session) *http.Request {
	return req.WithContext(auth.WithSession(req.Context(), s))
}

// asUser attaches an authed session and the resolved actor, as the
// selected-user guard would
func (e *testEnv) asUser(t *testing.T, req *http.Request, userID int64) *http.Request {
	t.Helper()

	user, err := e.store.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to load user %d: %v", userID, err)
	}
	ctx := auth.WithSession(req.Context(), &auth.Session{Authed: true, UserID: userID})
	return req.WithContext(auth.WithActor(ctx, user))
}
