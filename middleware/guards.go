// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielhkuo/duudl/auth"
	"github.com/danielhkuo/duudl/models"
)

const (
	LoginPath      = "/login"
	SelectUserPath = "/select-user"
)

// UserGetter resolves the selected user stored in the session.
type UserGetter interface {
	GetUser(ctx context.Context, id int64) (models.User, error)
}

// Guard composes the two access checks in front of handlers.
type Guard struct {
	sessions *auth.SessionManager
	users    UserGetter
}

func NewGuard(sessions *auth.SessionManager, users UserGetter) *Guard {
	return &Guard{sessions: sessions, users: users}
}

// RequireLogin redirects to the login page unless the session is authed.
func (g *Guard) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := auth.SessionFromContext(r.Context())
		if !s.Authed {
			g.redirectSavingNext(w, r, s, LoginPath)
			return
		}
		next(w, r)
	}
}

// RequireSelectedUser requires login and a valid selected user, which it
// places in the request context for the handler.
func (g *Guard) RequireSelectedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := auth.SessionFromContext(r.Context())
		if !s.Authed {
			g.redirectSavingNext(w, r, s, LoginPath)
			return
		}

		if s.UserID == 0 {
			g.redirectSavingNext(w, r, s, SelectUserPath)
			return
		}
		user, err := g.users.GetUser(r.Context(), s.UserID)
		if err != nil {
			g.redirectSavingNext(w, r, s, SelectUserPath)
			return
		}

		next(w, r.WithContext(auth.WithActor(r.Context(), user)))
	}
}

func (g *Guard) redirectSavingNext(w http.ResponseWriter, r *http.Request, s *auth.Session, target string) {
	s.NextURL = r.URL.RequestURI()
	if err := g.sessions.Save(w, s); err != nil {
		zap.L().Error("failed to save session", zap.Error(err))
	}
	http.Redirect(w, r, target, http.StatusFound)
}
