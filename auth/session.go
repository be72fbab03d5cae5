// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "duudl_session"
	DefaultSessionTTL = 30 * 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session")

// FormState is the create form as the user last submitted it, kept
// across the redirect when validation fails.
type FormState struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	SelectedDaysJSON string `json:"selected_days_json"`
}

// Session is the per-browser state carried in a signed cookie.
type Session struct {
	Authed  bool
	UserID  int64
	NextURL string
	Flash   string
	NewForm *FormState
}

// PopFlash returns the pending flash message and clears it.
func (s *Session) PopFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

// PopNextURL returns the saved destination if it is a local path.
func (s *Session) PopNextURL(fallback string) string {
	next := s.NextURL
	s.NextURL = ""
	return SafeNextURL(next, fallback)
}

// PopNewForm returns the saved create form, or an empty one.
func (s *Session) PopNewForm() FormState {
	if s.NewForm == nil {
		return FormState{SelectedDaysJSON: "[]"}
	}
	f := *s.NewForm
	s.NewForm = nil
	return f
}

type sessionClaims struct {
	Authed  bool       `json:"authed,omitempty"`
	UserID  int64      `json:"uid,omitempty"`
	NextURL string     `json:"next,omitempty"`
	Flash   string     `json:"flash,omitempty"`
	NewForm *FormState `json:"form,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager signs sessions as HS256 JWTs stored in a cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Load reads the session cookie. A missing, expired or tampered cookie
// yields an empty session.
func (m *SessionManager) Load(r *http.Request) *Session {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return &Session{}
	}
	s, err := m.Decode(c.Value)
	if err != nil {
		return &Session{}
	}
	return s
}

// Save writes the session cookie, renewing its expiry.
func (m *SessionManager) Save(w http.ResponseWriter, s *Session) error {
	value, err := m.Encode(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Encode signs s into a compact token.
func (m *SessionManager) Encode(s *Session) (string, error) {
	now := m.now()
	claims := sessionClaims{
		Authed:  s.Authed,
		UserID:  s.UserID,
		NextURL: s.NextURL,
		Flash:   s.Flash,
		NewForm: s.NewForm,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies a token produced by Encode.
func (m *SessionManager) Decode(value string) (*Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	return &Session{
		Authed:  claims.Authed,
		UserID:  claims.UserID,
		NextURL: claims.NextURL,
		Flash:   claims.Flash,
		NewForm: claims.NewForm,
	}, nil
}
