// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/duudl/auth"
	"github.com/danielhkuo/duudl/cliparse"
	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/duudl"
	"github.com/danielhkuo/duudl/models"
)

// TestPassword is the site password accepted by GetTestConfig
const TestPassword = "wattifnatt"

// Roster ids as seeded into a fresh database
const (
	UserHelge   int64 = 1
	UserAndreas int64 = 2
	UserDaniel  int64 = 3
)

var (
	testHashOnce sync.Once
	testHash     string
)

// SetupTestDB creates a fresh sqlite database with the full schema and
// the seeded roster. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "duudl_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.SeedUsers(context.Background(), conn); err != nil {
		t.Fatalf("Failed to seed users: %v", err)
	}

	return conn
}

// SetupTestEngine returns a store and engine over a fresh database
func SetupTestEngine(t *testing.T) (*db.Store, *duudl.Engine) {
	t.Helper()
	store := db.NewStore(SetupTestDB(t))
	return store, duudl.NewEngine(store)
}

// GetTestConfig returns a standard test configuration. The password hash
// uses the minimum bcrypt cost to keep tests fast.
func GetTestConfig() cliparse.Config {
	testHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		testHash = string(h)
	})
	return cliparse.Config{
		Port:         5001,
		DatabaseType: db.TypeSQLite,
		DatabaseURL:  ":memory:",
		SecretKey:    "test-secret-key",
		PasswordHash: testHash,
		LogMode:      "production",
	}
}

// CreateTestPoll creates a poll through the engine and returns it
func CreateTestPoll(t *testing.T, store *db.Store, engine *duudl.Engine, creatorID int64, title string, days ...string) models.Poll {
	t.Helper()

	token, err := engine.CreatePoll(context.Background(), title, "", creatorID, days)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	poll, err := store.GetPollByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("Failed to load test poll: %v", err)
	}
	return poll
}

// SessionCookie returns a signed session cookie for the test config
func SessionCookie(t *testing.T, cfg cliparse.Config, s auth.Session) *http.Cookie {
	t.Helper()

	value, err := auth.NewSessionManager(cfg.SecretKey, auth.DefaultSessionTTL).Encode(&s)
	if err != nil {
		t.Fatalf("Failed to encode session: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookieName, Value: value}
}

// ReadSession decodes the session cookie set on a response, if any
func ReadSession(t *testing.T, cfg cliparse.Config, w *httptest.ResponseRecorder) *auth.Session {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name != auth.SessionCookieName || c.Value == "" {
			continue
		}
		s, err := auth.NewSessionManager(cfg.SecretKey, auth.DefaultSessionTTL).Decode(c.Value)
		if err != nil {
			t.Fatalf("Failed to decode session cookie: %v", err)
		}
		return s
	}
	return nil
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a urlencoded form POST
func MakeFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 302 to the expected location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Errorf("Expected status 302, got %d. Body: %s", w.Code, w.Body.String())
		return
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// StrPtr returns a pointer to s
func StrPtr(s string) *string {
	return &s
}
