// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"

	"github.com/danielhkuo/duudl/models"
)

type ctxKey string

const (
	sessionKey ctxKey = "session"
	actorKey   ctxKey = "actor"
)

// WithSession attaches the request's session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the request's session, or an empty one.
func SessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}

// WithActor attaches the selected user acting in this request.
func WithActor(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, actorKey, u)
}

// ActorFromContext returns the selected user, if a guard resolved one.
func ActorFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(actorKey).(models.User)
	return u, ok
}
