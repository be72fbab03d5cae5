// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strconv"
	"time"
)

// Response value constants
const (
	ValueYes          = "yes"
	ValueNo           = "no"
	ValueInconvenient = "inconvenient"
)

// IsValidValue reports whether v is one of the enumerated availability tokens.
func IsValidValue(v string) bool {
	switch v {
	case ValueYes, ValueNo, ValueInconvenient:
		return true
	}
	return false
}

// Domain types

type User struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
}

type Poll struct {
	ID              int64     `json:"-"` // Internal only, token is the public id
	Token           string    `json:"token"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CreatedByUserID int64     `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// PollSummary is one row of the overview list.
type PollSummary struct {
	Token                string    `json:"token"`
	Title                string    `json:"title"`
	CreatedAt            time.Time `json:"created_at"`
	CreatedByDisplayName string    `json:"created_by_display_name"`
	ResponseUserCount    int       `json:"response_user_count"`
}

// CellKey identifies one response cell within a poll.
type CellKey struct {
	UserID int64
	Day    string
}

// String renders the key the way the read model exposes it: "{user_id}:{day}".
func (k CellKey) String() string {
	return strconv.FormatInt(k.UserID, 10) + ":" + k.Day
}

// Read model

type SnapshotUser struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

// Snapshot is the serializable state of a poll grid.
// Responses keeps explicit nulls; Comments only holds non-empty comments.
type Snapshot struct {
	Users     []SnapshotUser     `json:"users"`
	Days      []string           `json:"days"`
	Responses map[string]*string `json:"responses"`
	Comments  map[string]string  `json:"comments"`
}

// Response types

type OKResponse struct {
	OK bool `json:"ok"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
