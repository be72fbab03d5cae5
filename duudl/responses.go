// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package duudl

import (
	"context"
	"errors"

	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/models"
)

// UpsertResponse writes the acting user's own cell.
//
// value nil clears the answer. comment nil keeps the stored comment;
// a non-nil comment replaces it (trimmed).
func (e *Engine) UpsertResponse(ctx context.Context, pollID, actorID int64, day string, value, comment *string) error {
	if err := validateCell(day, value); err != nil {
		return err
	}
	return e.writeCell(ctx, pollID, actorID, day, value, comment)
}

// UpsertResponseFor writes any user's cell, as used by the full-grid editor.
// The target user must exist.
func (e *Engine) UpsertResponseFor(ctx context.Context, pollID, targetUserID int64, day string, value, comment *string) error {
	if err := validateCell(day, value); err != nil {
		return err
	}
	if _, err := e.store.GetUser(ctx, targetUserID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnknownUser
		}
		return err
	}
	return e.writeCell(ctx, pollID, targetUserID, day, value, comment)
}

// Answer is one of the acting user's cells in a batch write.
type Answer struct {
	Day     string
	Value   *string
	Comment *string
}

// UpsertAnswers writes several of the acting user's cells, as submitted by
// the answer form. Every answer is validated before anything is written and
// the writes share one transaction: either all land or none do.
func (e *Engine) UpsertAnswers(ctx context.Context, pollID, actorID int64, answers []Answer) error {
	for _, a := range answers {
		if err := validateCell(a.Day, a.Value); err != nil {
			return err
		}
	}
	return e.store.WithTx(ctx, func(q *db.Queries) error {
		for _, a := range answers {
			if err := upsertCell(ctx, q, pollID, actorID, a.Day, a.Value, a.Comment); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCell checks the day belongs to the poll and upserts in one
// transaction, so a concurrent edit cannot leave a dangling response.
func (e *Engine) writeCell(ctx context.Context, pollID, userID int64, day string, value, comment *string) error {
	return e.store.WithTx(ctx, func(q *db.Queries) error {
		return upsertCell(ctx, q, pollID, userID, day, value, comment)
	})
}

func upsertCell(ctx context.Context, q *db.Queries, pollID, userID int64, day string, value, comment *string) error {
	ok, err := q.HasPollDate(ctx, pollID, day)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownDay
	}
	return q.UpsertResponse(ctx, pollID, userID, day, value, comment)
}

func validateCell(day string, value *string) error {
	if value != nil && !models.IsValidValue(*value) {
		return ErrInvalidValue
	}
	if day == "" {
		return ErrEmptyDay
	}
	return nil
}
