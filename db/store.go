// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/duudl/models"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs statements against either the pool or an open transaction.
type Queries struct {
	q DBTX
}

// Store is the response store backed by *sql.DB.
type Store struct {
	*Queries
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{Queries: &Queries{q: db}, db: db}
}

// WithTx executes fn inside a transaction. fn must only use the Queries it
// is given; the pool may hold a single connection.
func (s *Store) WithTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&Queries{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w (rollback error: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Users

func (q *Queries) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id, slug, display_name FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Slug, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := q.q.QueryRowContext(ctx, `
		SELECT id, slug, display_name FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Slug, &u.DisplayName)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// Polls

// ListPolls returns all polls newest first. ResponseUserCount counts users
// with a value or a non-empty comment.
func (q *Queries) ListPolls(ctx context.Context) ([]models.PollSummary, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT
			d.token,
			d.title,
			d.created_at,
			u.display_name,
			COUNT(DISTINCT r.user_id)
		FROM duudls d
		JOIN users u ON u.id = d.created_by_user_id
		LEFT JOIN responses r ON r.duudl_id = d.id AND (r.value IS NOT NULL OR r.comment <> '')
		GROUP BY d.id, d.token, d.title, d.created_at, u.display_name
		ORDER BY d.created_at DESC, d.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	var polls []models.PollSummary
	for rows.Next() {
		var p models.PollSummary
		var createdAt string
		if err := rows.Scan(&p.Token, &p.Title, &createdAt, &p.CreatedByDisplayName, &p.ResponseUserCount); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		p.CreatedAt = parseTimestamp(createdAt)
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

func (q *Queries) GetPollByToken(ctx context.Context, token string) (models.Poll, error) {
	var p models.Poll
	var createdAt string
	err := q.q.QueryRowContext(ctx, `
		SELECT id, token, title, description, created_by_user_id, created_at
		FROM duudls WHERE token = $1
	`, token).Scan(&p.ID, &p.Token, &p.Title, &p.Description, &p.CreatedByUserID, &createdAt)
	if err == sql.ErrNoRows {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	p.CreatedAt = parseTimestamp(createdAt)
	return p, nil
}

// CreatorID reads the poll's original creator.
func (q *Queries) CreatorID(ctx context.Context, pollID int64) (int64, error) {
	var id int64
	err := q.q.QueryRowContext(ctx, `
		SELECT created_by_user_id FROM duudls WHERE id = $1
	`, pollID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query poll creator: %w", err)
	}
	return id, nil
}

// InsertPoll inserts the poll row and returns its internal id.
func (q *Queries) InsertPoll(ctx context.Context, token, title, description string, creatorID int64, createdAt time.Time) (int64, error) {
	var id int64
	err := q.q.QueryRowContext(ctx, `
		INSERT INTO duudls (token, title, description, created_by_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, token, title, description, creatorID, formatTimestamp(createdAt)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert poll: %w", err)
	}
	return id, nil
}

// UpdatePollMeta sets title and description.
func (q *Queries) UpdatePollMeta(ctx context.Context, pollID int64, title, description string) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE duudls SET title = $1, description = $2 WHERE id = $3
	`, title, description, pollID)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	return requireAffected(res)
}

// DeletePoll removes the poll; dates and responses cascade.
func (q *Queries) DeletePoll(ctx context.Context, pollID int64) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM duudls WHERE id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return requireAffected(res)
}

// Dates

func (q *Queries) ListPollDates(ctx context.Context, pollID int64) ([]string, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT day FROM duudl_dates WHERE duudl_id = $1 ORDER BY day
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query poll dates: %w", err)
	}
	defer rows.Close()

	days := []string{}
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan poll date: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (q *Queries) HasPollDate(ctx context.Context, pollID int64, day string) (bool, error) {
	var exists bool
	err := q.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM duudl_dates WHERE duudl_id = $1 AND day = $2
		)
	`, pollID, day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check poll date: %w", err)
	}
	return exists, nil
}

// InsertPollDate adds a day to the poll; an existing day is left as is.
func (q *Queries) InsertPollDate(ctx context.Context, pollID int64, day string) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO duudl_dates (duudl_id, day)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, pollID, day)
	if err != nil {
		return fmt.Errorf("failed to insert poll date: %w", err)
	}
	return nil
}

// DeletePollDate removes a day and every response for it, across all users.
func (q *Queries) DeletePollDate(ctx context.Context, pollID int64, day string) error {
	_, err := q.q.ExecContext(ctx, `
		DELETE FROM responses WHERE duudl_id = $1 AND day = $2
	`, pollID, day)
	if err != nil {
		return fmt.Errorf("failed to delete responses for day: %w", err)
	}
	_, err = q.q.ExecContext(ctx, `
		DELETE FROM duudl_dates WHERE duudl_id = $1 AND day = $2
	`, pollID, day)
	if err != nil {
		return fmt.Errorf("failed to delete poll date: %w", err)
	}
	return nil
}

// Responses

// GetResponses loads every cell of a poll in one query. Comments default to "".
func (q *Queries) GetResponses(ctx context.Context, pollID int64) (map[models.CellKey]*string, map[models.CellKey]string, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT user_id, day, value, comment FROM responses WHERE duudl_id = $1
	`, pollID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	values := make(map[models.CellKey]*string)
	comments := make(map[models.CellKey]string)
	for rows.Next() {
		var key models.CellKey
		var value sql.NullString
		var comment sql.NullString
		if err := rows.Scan(&key.UserID, &key.Day, &value, &comment); err != nil {
			return nil, nil, fmt.Errorf("failed to scan response: %w", err)
		}
		if value.Valid {
			v := value.String
			values[key] = &v
		} else {
			values[key] = nil
		}
		comments[key] = comment.String
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return values, comments, nil
}

// SeedResponse inserts a value for a cell only if the cell does not exist yet.
func (q *Queries) SeedResponse(ctx context.Context, pollID, userID int64, day, value string) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO responses (duudl_id, user_id, day, value, comment)
		VALUES ($1, $2, $3, $4, '')
		ON CONFLICT DO NOTHING
	`, pollID, userID, day, value)
	if err != nil {
		return fmt.Errorf("failed to seed response: %w", err)
	}
	return nil
}

// UpsertResponse writes one cell. A nil comment updates only the value and
// keeps whatever comment is stored; otherwise the trimmed comment replaces it.
func (q *Queries) UpsertResponse(ctx context.Context, pollID, userID int64, day string, value, comment *string) error {
	var err error
	if comment == nil {
		_, err = q.q.ExecContext(ctx, `
			INSERT INTO responses (duudl_id, user_id, day, value, comment)
			VALUES ($1, $2, $3, $4, '')
			ON CONFLICT (duudl_id, user_id, day) DO UPDATE SET
				value = excluded.value
		`, pollID, userID, day, nullString(value))
	} else {
		_, err = q.q.ExecContext(ctx, `
			INSERT INTO responses (duudl_id, user_id, day, value, comment)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (duudl_id, user_id, day) DO UPDATE SET
				value = excluded.value,
				comment = excluded.comment
		`, pollID, userID, day, nullString(value), strings.TrimSpace(*comment))
	}
	if err != nil {
		return fmt.Errorf("failed to upsert response: %w", err)
	}
	return nil
}

// Helpers

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Timestamps are stored as UTC RFC 3339 text with second precision,
// which keeps lexical and chronological order identical.
func formatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
