// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package duudl

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/models"
)

func setupEngine(t *testing.T) (*db.Store, *Engine) {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.SeedUsers(context.Background(), conn); err != nil {
		t.Fatalf("Failed to seed users: %v", err)
	}
	store := db.NewStore(conn)
	return store, NewEngine(store)
}

func createPoll(t *testing.T, store *db.Store, e *Engine, creatorID int64, days ...string) models.Poll {
	t.Helper()
	ctx := context.Background()

	token, err := e.CreatePoll(ctx, "Trip", "", creatorID, days)
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	poll, err := store.GetPollByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetPollByToken failed: %v", err)
	}
	return poll
}

func snapshot(t *testing.T, e *Engine, pollID int64) models.Snapshot {
	t.Helper()
	snap, err := e.Snapshot(context.Background(), pollID)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	return snap
}

// responseValues flattens the snapshot for comparison; nil values become "<nil>".
func responseValues(snap models.Snapshot) map[string]string {
	out := make(map[string]string, len(snap.Responses))
	for k, v := range snap.Responses {
		if v == nil {
			out[k] = "<nil>"
		} else {
			out[k] = *v
		}
	}
	return out
}

func ptr(s string) *string { return &s }

func TestCreatePoll_SeedsCreator(t *testing.T) {
	store, e := setupEngine(t)
	poll := createPoll(t, store, e, 3, "2026-05-02", "2026-05-01", " 2026-05-02 ", "")

	snap := snapshot(t, e, poll.ID)

	wantDays := []string{"2026-05-01", "2026-05-02"}
	if !reflect.DeepEqual(snap.Days, wantDays) {
		t.Errorf("Expected days %v, got %v", wantDays, snap.Days)
	}
	wantResponses := map[string]string{
		"3:2026-05-01": "yes",
		"3:2026-05-02": "yes",
	}
	if got := responseValues(snap); !reflect.DeepEqual(got, wantResponses) {
		t.Errorf("Expected responses %v, got %v", wantResponses, got)
	}
	if len(snap.Comments) != 0 {
		t.Errorf("Expected no comments, got %v", snap.Comments)
	}
	if len(snap.Users) != len(db.Roster) {
		t.Errorf("Expected %d users, got %d", len(db.Roster), len(snap.Users))
	}
}

func TestCreatePoll_TrimsTitleAndDescription(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()

	token, err := e.CreatePoll(ctx, "  Hytta  ", "  helg  ", 1, []string{"2026-05-01"})
	if err != nil {
		t.Fatal(err)
	}
	poll, err := store.GetPollByToken(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if poll.Title != "Hytta" || poll.Description != "helg" {
		t.Errorf("Expected trimmed fields, got %q / %q", poll.Title, poll.Description)
	}
	if len(token) != 11 {
		t.Errorf("Expected 11 character token, got %q", token)
	}
}

func TestCreatePoll_KeepsInnerDescriptionText(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()

	token, err := e.CreatePoll(ctx, "Hytta", "\n  linje 1\n  linje 2  \n", 1, []string{"2026-05-01"})
	if err != nil {
		t.Fatal(err)
	}
	poll, err := store.GetPollByToken(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if poll.Description != "linje 1\n  linje 2" {
		t.Errorf("Expected only outer whitespace trimmed, got %q", poll.Description)
	}
}

func TestCreatePoll_Validation(t *testing.T) {
	_, e := setupEngine(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		title   string
		days    []string
		wantErr error
	}{
		{"empty title", "", []string{"2026-05-01"}, ErrEmptyTitle},
		{"whitespace title", "   ", []string{"2026-05-01"}, ErrEmptyTitle},
		{"no days", "Trip", nil, ErrEmptyDateSet},
		{"only blank days", "Trip", []string{"", "  "}, ErrEmptyDateSet},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.CreatePoll(ctx, tc.title, "", 1, tc.days)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreatePoll_RetriesTokenCollision(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()

	if _, err := store.InsertPoll(ctx, "taken", "Existing", "", 1, time.Now()); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	e.newToken = func() (string, error) {
		if calls.Add(1) == 1 {
			return "taken", nil
		}
		return "fresh", nil
	}

	token, err := e.CreatePoll(ctx, "Trip", "", 1, []string{"2026-05-01"})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	if token != "fresh" {
		t.Errorf("Expected retried token 'fresh', got %q", token)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 token attempts, got %d", calls.Load())
	}

	existing, err := store.GetPollByToken(ctx, "taken")
	if err != nil {
		t.Fatal(err)
	}
	if dates, _ := store.ListPollDates(ctx, existing.ID); len(dates) != 0 {
		t.Errorf("Failed attempt leaked dates onto existing poll: %v", dates)
	}
}

func TestCreatePoll_GivesUpAfterRepeatedCollisions(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()

	if _, err := store.InsertPoll(ctx, "taken", "Existing", "", 1, time.Now()); err != nil {
		t.Fatal(err)
	}
	e.newToken = func() (string, error) { return "taken", nil }

	if _, err := e.CreatePoll(ctx, "Trip", "", 1, []string{"2026-05-01"}); err == nil {
		t.Error("Expected error after exhausting token attempts")
	}
}

func TestCreatePoll_UsesClock(t *testing.T) {
	store, e := setupEngine(t)
	fixed := time.Date(2026, 2, 3, 12, 34, 56, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	poll := createPoll(t, store, e, 1, "2026-05-01")
	if !poll.CreatedAt.Equal(fixed) {
		t.Errorf("Expected created_at %v, got %v", fixed, poll.CreatedAt)
	}
}

func TestEditPoll_Idempotent(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01", "2026-05-02")

	if err := e.UpsertResponse(ctx, poll.ID, 2, "2026-05-01", ptr("no"), ptr("jobb")); err != nil {
		t.Fatal(err)
	}

	days := []string{"2026-05-01", "2026-05-03"}
	first, err := e.EditPoll(ctx, poll.ID, "Trip", "", days)
	if err != nil {
		t.Fatalf("First edit failed: %v", err)
	}
	if !reflect.DeepEqual(first, []string{"2026-05-02"}) {
		t.Errorf("Expected removed [2026-05-02], got %v", first)
	}
	before := snapshot(t, e, poll.ID)

	second, err := e.EditPoll(ctx, poll.ID, "Trip", "", days)
	if err != nil {
		t.Fatalf("Second edit failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("Expected nothing removed on repeat, got %v", second)
	}
	after := snapshot(t, e, poll.ID)

	if !reflect.DeepEqual(before, after) {
		t.Errorf("Repeat edit changed state:\nbefore %+v\nafter  %+v", before, after)
	}
	if v := after.Responses["2:2026-05-01"]; v == nil || *v != "no" {
		t.Errorf("Expected kept day response to survive, got %v", v)
	}
	if after.Comments["2:2026-05-01"] != "jobb" {
		t.Errorf("Expected kept day comment to survive, got %q", after.Comments["2:2026-05-01"])
	}
	if v := after.Responses["1:2026-05-03"]; v == nil || *v != "yes" {
		t.Errorf("Expected added day to seed creator yes, got %v", v)
	}
}

func TestEditPoll_ReAddSeedsOnlyCreator(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01", "2026-05-02")

	for _, uid := range []int64{2, 3} {
		if err := e.UpsertResponse(ctx, poll.ID, uid, "2026-05-02", ptr("no"), ptr("nope")); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.UpsertResponse(ctx, poll.ID, 1, "2026-05-02", ptr("inconvenient"), nil); err != nil {
		t.Fatal(err)
	}

	if _, err := e.EditPoll(ctx, poll.ID, "Trip", "", []string{"2026-05-01"}); err != nil {
		t.Fatal(err)
	}
	for k := range snapshot(t, e, poll.ID).Responses {
		if strings.HasSuffix(k, ":2026-05-02") {
			t.Errorf("Response %s survived day removal", k)
		}
	}

	if _, err := e.EditPoll(ctx, poll.ID, "Trip", "", []string{"2026-05-01", "2026-05-02"}); err != nil {
		t.Fatal(err)
	}
	snap := snapshot(t, e, poll.ID)
	want := map[string]string{
		"1:2026-05-01": "yes",
		"1:2026-05-02": "yes",
	}
	if got := responseValues(snap); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v after re-add, got %v", want, got)
	}
	if len(snap.Comments) != 0 {
		t.Errorf("Expected no resurrected comments, got %v", snap.Comments)
	}
}

func TestEditPoll_SeedsOriginalCreator(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 4, "2026-05-01")

	if _, err := e.EditPoll(ctx, poll.ID, "Trip", "", []string{"2026-05-01", "2026-05-09"}); err != nil {
		t.Fatal(err)
	}
	snap := snapshot(t, e, poll.ID)
	if v := snap.Responses["4:2026-05-09"]; v == nil || *v != "yes" {
		t.Errorf("Expected creator 4 seeded on new day, got %v", v)
	}
}

func TestEditPoll_UpdatesMeta(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01")

	if _, err := e.EditPoll(ctx, poll.ID, " Ny tittel ", " ny ", []string{"2026-05-01"}); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetPollByToken(ctx, poll.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Ny tittel" || got.Description != "ny" {
		t.Errorf("Expected updated meta, got %q / %q", got.Title, got.Description)
	}
}

func TestEditPoll_Validation(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01")

	if _, err := e.EditPoll(ctx, poll.ID, "", "", []string{"2026-05-01"}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}
	if _, err := e.EditPoll(ctx, poll.ID, "Trip", "", []string{}); !errors.Is(err, ErrEmptyDateSet) {
		t.Errorf("Expected ErrEmptyDateSet, got %v", err)
	}
	if _, err := e.EditPoll(ctx, 9999, "Trip", "", []string{"2026-05-01"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// rejected edits leave the date set intact
	days, err := store.ListPollDates(ctx, poll.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(days, []string{"2026-05-01"}) {
		t.Errorf("Expected dates unchanged, got %v", days)
	}
}

func TestUpsertResponse_ValueOnlyPreservesComment(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01")

	if err := e.UpsertResponse(ctx, poll.ID, 2, "2026-05-01", ptr("no"), ptr("kanskje")); err != nil {
		t.Fatal(err)
	}
	if err := e.UpsertResponse(ctx, poll.ID, 2, "2026-05-01", ptr("yes"), nil); err != nil {
		t.Fatal(err)
	}
	snap := snapshot(t, e, poll.ID)
	if v := snap.Responses["2:2026-05-01"]; v == nil || *v != "yes" {
		t.Errorf("Expected yes, got %v", v)
	}
	if snap.Comments["2:2026-05-01"] != "kanskje" {
		t.Errorf("Expected comment preserved, got %q", snap.Comments["2:2026-05-01"])
	}

	if err := e.UpsertResponse(ctx, poll.ID, 2, "2026-05-01", ptr("inconvenient"), ptr("sent")); err != nil {
		t.Fatal(err)
	}
	once := snapshot(t, e, poll.ID)
	if err := e.UpsertResponse(ctx, poll.ID, 2, "2026-05-01", ptr("inconvenient"), ptr("sent")); err != nil {
		t.Fatal(err)
	}
	twice := snapshot(t, e, poll.ID)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Identical upsert changed state")
	}
	if twice.Comments["2:2026-05-01"] != "sent" {
		t.Errorf("Expected comment overwritten, got %q", twice.Comments["2:2026-05-01"])
	}
}

func TestUpsertResponse_ClearValue(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01")

	if err := e.UpsertResponse(ctx, poll.ID, 1, "2026-05-01", nil, nil); err != nil {
		t.Fatal(err)
	}
	snap := snapshot(t, e, poll.ID)
	v, ok := snap.Responses["1:2026-05-01"]
	if !ok {
		t.Fatal("Expected cell to remain as explicit null")
	}
	if v != nil {
		t.Errorf("Expected null value, got %q", *v)
	}
}

func TestUpsertResponse_InvalidValueWritesNothing(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01")
	before := snapshot(t, e, poll.ID)

	err := e.UpsertResponse(ctx, poll.ID, 2, "2026-05-01", ptr("maybe"), ptr("hmm"))
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Expected ErrInvalidValue, got %v", err)
	}
	err = e.UpsertResponse(ctx, poll.ID, 1, "2026-05-01", ptr("YES"), nil)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Expected ErrInvalidValue for case variant, got %v", err)
	}

	if after := snapshot(t, e, poll.ID); !reflect.DeepEqual(before, after) {
		t.Errorf("Rejected upsert modified state")
	}
}

func TestUpsertResponse_DayErrors(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01")

	if err := e.UpsertResponse(ctx, poll.ID, 2, "", ptr("yes"), nil); !errors.Is(err, ErrEmptyDay) {
		t.Errorf("Expected ErrEmptyDay, got %v", err)
	}
	if err := e.UpsertResponse(ctx, poll.ID, 2, "2026-06-01", ptr("yes"), nil); !errors.Is(err, ErrUnknownDay) {
		t.Errorf("Expected ErrUnknownDay, got %v", err)
	}
}

func TestUpsertAnswers(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01", "2026-05-02", "2026-05-03")
	if err := e.UpsertResponse(ctx, poll.ID, 2, "2026-05-03", ptr("no"), ptr("jobb")); err != nil {
		t.Fatal(err)
	}

	err := e.UpsertAnswers(ctx, poll.ID, 2, []Answer{
		{Day: "2026-05-01", Value: ptr("yes"), Comment: ptr("+1")},
		{Day: "2026-05-02", Value: ptr("inconvenient")},
		{Day: "2026-05-03", Value: nil},
	})
	if err != nil {
		t.Fatalf("UpsertAnswers failed: %v", err)
	}

	snap := snapshot(t, e, poll.ID)
	got := responseValues(snap)
	for key, want := range map[string]string{
		"2:2026-05-01": "yes",
		"2:2026-05-02": "inconvenient",
		"2:2026-05-03": "<nil>",
	} {
		if got[key] != want {
			t.Errorf("%s = %q, want %q", key, got[key], want)
		}
	}
	if snap.Comments["2:2026-05-01"] != "+1" {
		t.Errorf("Expected comment +1, got %q", snap.Comments["2:2026-05-01"])
	}
	// nil comment keeps the stored one even when the value is cleared
	if snap.Comments["2:2026-05-03"] != "jobb" {
		t.Errorf("Expected kept comment, got %q", snap.Comments["2:2026-05-03"])
	}
}

func TestUpsertAnswers_AllOrNothing(t *testing.T) {
	testCases := []struct {
		name    string
		answers []Answer
		wantErr error
	}{
		{
			name: "invalid value",
			answers: []Answer{
				{Day: "2026-05-01", Value: ptr("no")},
				{Day: "2026-05-02", Value: ptr("maybe")},
			},
			wantErr: ErrInvalidValue,
		},
		{
			name: "day outside poll",
			answers: []Answer{
				{Day: "2026-05-01", Value: ptr("no")},
				{Day: "2026-06-01", Value: ptr("yes")},
			},
			wantErr: ErrUnknownDay,
		},
		{
			name: "empty day",
			answers: []Answer{
				{Day: "2026-05-01", Value: ptr("no")},
				{Day: "", Value: ptr("yes")},
			},
			wantErr: ErrEmptyDay,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, e := setupEngine(t)
			ctx := context.Background()
			poll := createPoll(t, store, e, 1, "2026-05-01", "2026-05-02")

			err := e.UpsertAnswers(ctx, poll.ID, 2, tc.answers)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Expected %v, got %v", tc.wantErr, err)
			}

			for key := range snapshot(t, e, poll.ID).Responses {
				if strings.HasPrefix(key, "2:") {
					t.Errorf("Cell %s written despite rejected batch", key)
				}
			}
		})
	}
}

func TestUpsertResponseFor(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01")

	if err := e.UpsertResponseFor(ctx, poll.ID, 5, "2026-05-01", ptr("no"), nil); err != nil {
		t.Fatalf("UpsertResponseFor failed: %v", err)
	}
	if v := snapshot(t, e, poll.ID).Responses["5:2026-05-01"]; v == nil || *v != "no" {
		t.Errorf("Expected user 5 = no, got %v", v)
	}

	if err := e.UpsertResponseFor(ctx, poll.ID, 42, "2026-05-01", ptr("no"), nil); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("Expected ErrUnknownUser, got %v", err)
	}
}

func TestDeletePoll(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()
	poll := createPoll(t, store, e, 1, "2026-05-01")

	if err := e.DeletePoll(ctx, poll.ID); err != nil {
		t.Fatalf("DeletePoll failed: %v", err)
	}
	if _, err := store.GetPollByToken(ctx, poll.Token); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected poll gone, got %v", err)
	}
	if err := e.DeletePoll(ctx, poll.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTripScenario(t *testing.T) {
	store, e := setupEngine(t)
	ctx := context.Background()

	token, err := e.CreatePoll(ctx, "Trip", "", 1, []string{"2026-02-03", "2026-02-03", "2026-02-10"})
	if err != nil {
		t.Fatal(err)
	}
	poll, err := store.GetPollByToken(ctx, token)
	if err != nil {
		t.Fatal(err)
	}

	snap := snapshot(t, e, poll.ID)
	if len(snap.Days) != 2 {
		t.Fatalf("Expected 2 days, got %v", snap.Days)
	}
	want := map[string]string{"1:2026-02-03": "yes", "1:2026-02-10": "yes"}
	if got := responseValues(snap); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}

	if err := e.UpsertResponse(ctx, poll.ID, 2, "2026-02-03", ptr("no"), ptr("can't")); err != nil {
		t.Fatal(err)
	}
	snap = snapshot(t, e, poll.ID)
	want["2:2026-02-03"] = "no"
	if got := responseValues(snap); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if !reflect.DeepEqual(snap.Comments, map[string]string{"2:2026-02-03": "can't"}) {
		t.Fatalf("Unexpected comments %v", snap.Comments)
	}

	removed, err := e.EditPoll(ctx, poll.ID, "Trip", "", []string{"2026-02-10"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(removed, []string{"2026-02-03"}) {
		t.Errorf("Expected removed [2026-02-03], got %v", removed)
	}
	snap = snapshot(t, e, poll.ID)
	if !reflect.DeepEqual(snap.Days, []string{"2026-02-10"}) {
		t.Errorf("Expected only 2026-02-10, got %v", snap.Days)
	}
	for k := range snap.Responses {
		if strings.Contains(k, "2026-02-03") {
			t.Errorf("Response key %s survived", k)
		}
	}
	for k := range snap.Comments {
		if strings.Contains(k, "2026-02-03") {
			t.Errorf("Comment key %s survived", k)
		}
	}
}

func TestNormalizeDays(t *testing.T) {
	got := normalizeDays([]string{"b", " a ", "", "b", "c", "a"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestDiffDays(t *testing.T) {
	removed, added := diffDays([]string{"a", "b", "c"}, []string{"b", "d"})
	if !reflect.DeepEqual(removed, []string{"a", "c"}) {
		t.Errorf("Expected removed [a c], got %v", removed)
	}
	if !reflect.DeepEqual(added, []string{"d"}) {
		t.Errorf("Expected added [d], got %v", added)
	}

	removed, added = diffDays([]string{"a"}, []string{"a"})
	if removed != nil || added != nil {
		t.Errorf("Expected no diff, got %v / %v", removed, added)
	}
}
