// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package duudl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/duudl/auth"
	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/models"
)

var (
	ErrEmptyTitle   = errors.New("title is required")
	ErrEmptyDateSet = errors.New("at least one day is required")
	ErrEmptyDay     = errors.New("day is required")
	ErrUnknownDay   = errors.New("day is not part of the poll")
	ErrInvalidValue = errors.New("invalid response value")
	ErrUnknownUser  = errors.New("unknown user")
	ErrNotFound     = db.ErrNotFound
)

// maxTokenAttempts bounds retries after a token collision.
const maxTokenAttempts = 5

// Engine keeps a poll's dates, responses and creator seeding consistent.
type Engine struct {
	store    *db.Store
	newToken func() (string, error)
	now      func() time.Time
}

func NewEngine(store *db.Store) *Engine {
	return &Engine{
		store:    store,
		newToken: auth.GeneratePollToken,
		now:      time.Now,
	}
}

// CreatePoll stores a poll with its days and seeds the creator as "yes" on
// every day. Returns the poll token.
//
// Title and description are trimmed here, as in EditPoll; callers pass the
// raw form text and must not expect surrounding whitespace to round-trip.
func (e *Engine) CreatePoll(ctx context.Context, title, description string, creatorID int64, days []string) (string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return "", ErrEmptyTitle
	}
	unique := normalizeDays(days)
	if len(unique) == 0 {
		return "", ErrEmptyDateSet
	}

	createdAt := e.now()
	for attempt := 1; ; attempt++ {
		token, err := e.newToken()
		if err != nil {
			return "", err
		}

		err = e.store.WithTx(ctx, func(q *db.Queries) error {
			pollID, err := q.InsertPoll(ctx, token, title, description, creatorID, createdAt)
			if err != nil {
				return err
			}
			for _, day := range unique {
				if err := q.InsertPollDate(ctx, pollID, day); err != nil {
					return err
				}
			}
			for _, day := range unique {
				if err := q.SeedResponse(ctx, pollID, creatorID, day, models.ValueYes); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			zap.L().Info("poll created",
				zap.String("token", token),
				zap.Int64("creator_id", creatorID),
				zap.Int("days", len(unique)),
			)
			return token, nil
		}
		if db.IsUniqueViolation(err) && attempt < maxTokenAttempts {
			zap.L().Warn("poll token collision, retrying", zap.Int("attempt", attempt))
			continue
		}
		return "", fmt.Errorf("failed to create poll: %w", err)
	}
}

// EditPoll updates title and description (trimmed) and reconciles the day set.
// Added days seed the poll's creator as "yes"; removed days are deleted
// along with every response on them. Returns the removed days, sorted.
func (e *Engine) EditPoll(ctx context.Context, pollID int64, title, description string, newDays []string) ([]string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	desired := normalizeDays(newDays)
	if len(desired) == 0 {
		return nil, ErrEmptyDateSet
	}

	var removed, added []string
	err := e.store.WithTx(ctx, func(q *db.Queries) error {
		existing, err := q.ListPollDates(ctx, pollID)
		if err != nil {
			return err
		}
		removed, added = diffDays(existing, desired)

		if err := q.UpdatePollMeta(ctx, pollID, title, description); err != nil {
			return err
		}

		for _, day := range added {
			if err := q.InsertPollDate(ctx, pollID, day); err != nil {
				return err
			}
		}
		if len(added) > 0 {
			creatorID, err := q.CreatorID(ctx, pollID)
			if err != nil {
				return err
			}
			for _, day := range added {
				if err := q.SeedResponse(ctx, pollID, creatorID, day, models.ValueYes); err != nil {
					return err
				}
			}
		}

		for _, day := range removed {
			if err := q.DeletePollDate(ctx, pollID, day); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to edit poll: %w", err)
	}

	zap.L().Info("poll edited",
		zap.Int64("poll_id", pollID),
		zap.Strings("added", added),
		zap.Strings("removed", removed),
	)
	return removed, nil
}

// DeletePoll removes a poll with all of its days and responses.
func (e *Engine) DeletePoll(ctx context.Context, pollID int64) error {
	err := e.store.DeletePoll(ctx, pollID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	zap.L().Info("poll deleted", zap.Int64("poll_id", pollID))
	return nil
}

// Snapshot builds the full grid of a poll for the read-model endpoint.
func (e *Engine) Snapshot(ctx context.Context, pollID int64) (models.Snapshot, error) {
	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	days, err := e.store.ListPollDates(ctx, pollID)
	if err != nil {
		return models.Snapshot{}, err
	}
	values, comments, err := e.store.GetResponses(ctx, pollID)
	if err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{
		Users:     make([]models.SnapshotUser, 0, len(users)),
		Days:      days,
		Responses: make(map[string]*string, len(values)),
		Comments:  make(map[string]string),
	}
	for _, u := range users {
		snap.Users = append(snap.Users, models.SnapshotUser{ID: u.ID, DisplayName: u.DisplayName})
	}
	for key, value := range values {
		snap.Responses[key.String()] = value
	}
	for key, comment := range comments {
		if comment != "" {
			snap.Comments[key.String()] = comment
		}
	}
	return snap, nil
}

// normalizeDays trims, drops empty entries and deduplicates, sorted.
func normalizeDays(days []string) []string {
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// diffDays returns existing minus desired and desired minus existing, sorted.
func diffDays(existing, desired []string) (removed, added []string) {
	have := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		have[d] = struct{}{}
	}
	want := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		want[d] = struct{}{}
		if _, ok := have[d]; !ok {
			added = append(added, d)
		}
	}
	for _, d := range existing {
		if _, ok := want[d]; !ok {
			removed = append(removed, d)
		}
	}
	sort.Strings(removed)
	sort.Strings(added)
	return removed, added
}
