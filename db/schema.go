// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Database types accepted by Open and CreateSchema
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Roster is the fixed set of users seeded at startup.
var Roster = []struct {
	Slug        string
	DisplayName string
}{
	{"huez-helge", "Huez-Helge"},
	{"andreas-aubisque", "Andreas Aubisque"},
	{"deux-alpes-daniel", "Deux Alpes-Daniel"},
	{"croix-de-fer-christer", "Croix-de-fer-Christer"},
	{"galibier-geir", "Galibier-Geir"},
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	ddl := sqliteSchema
	if dbType == TypePostgres {
		ddl = postgresSchema
	}

	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SeedUsers inserts the roster, leaving existing users untouched.
func SeedUsers(ctx context.Context, db *sql.DB) error {
	for _, u := range Roster {
		_, err := db.ExecContext(ctx, `
			INSERT INTO users (slug, display_name)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, u.Slug, u.DisplayName)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Slug, err)
		}
	}
	return nil
}

// Responses reference (duudl_id, day) in duudl_dates so removing a day
// removes its responses at the storage level too.
const sqliteSchema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL UNIQUE
);

-- Duudls
CREATE TABLE IF NOT EXISTS duudls (
    id INTEGER PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_by_user_id INTEGER NOT NULL REFERENCES users(id),
    created_at TEXT NOT NULL
);

-- Candidate dates
CREATE TABLE IF NOT EXISTS duudl_dates (
    duudl_id INTEGER NOT NULL REFERENCES duudls(id) ON DELETE CASCADE,
    day TEXT NOT NULL,
    PRIMARY KEY (duudl_id, day)
);

CREATE INDEX IF NOT EXISTS idx_duudl_dates_duudl_id ON duudl_dates(duudl_id);

-- Responses
CREATE TABLE IF NOT EXISTS responses (
    duudl_id INTEGER NOT NULL REFERENCES duudls(id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    day TEXT NOT NULL,
    value TEXT CHECK (value IN ('yes', 'no', 'inconvenient')),
    comment TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (duudl_id, user_id, day),
    FOREIGN KEY (duudl_id, day) REFERENCES duudl_dates(duudl_id, day) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_responses_duudl_id ON responses(duudl_id);
CREATE INDEX IF NOT EXISTS idx_responses_user_id ON responses(user_id);
`

const postgresSchema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL UNIQUE
);

-- Duudls
CREATE TABLE IF NOT EXISTS duudls (
    id BIGSERIAL PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_by_user_id BIGINT NOT NULL REFERENCES users(id),
    created_at TEXT NOT NULL
);

-- Candidate dates
CREATE TABLE IF NOT EXISTS duudl_dates (
    duudl_id BIGINT NOT NULL REFERENCES duudls(id) ON DELETE CASCADE,
    day TEXT NOT NULL,
    PRIMARY KEY (duudl_id, day)
);

CREATE INDEX IF NOT EXISTS idx_duudl_dates_duudl_id ON duudl_dates(duudl_id);

-- Responses
CREATE TABLE IF NOT EXISTS responses (
    duudl_id BIGINT NOT NULL REFERENCES duudls(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    day TEXT NOT NULL,
    value TEXT CHECK (value IN ('yes', 'no', 'inconvenient')),
    comment TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (duudl_id, user_id, day),
    FOREIGN KEY (duudl_id, day) REFERENCES duudl_dates(duudl_id, day) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_responses_duudl_id ON responses(duudl_id);
CREATE INDEX IF NOT EXISTS idx_responses_user_id ON responses(user_id);
`
