// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package duudl implements the poll operations: create, edit, answer, delete.

# Creating

	token, err := engine.CreatePoll(ctx, "Trip", "", creatorID, []string{"2026-02-03", "2026-02-10"})

Days are deduplicated. The creator proposed the dates, so a "yes" response
is seeded for them on every day.

# Editing

	removed, err := engine.EditPoll(ctx, poll.ID, title, description, days)

The stored day set is diffed against days inside one transaction:

  - added days are inserted and the original creator is seeded as "yes"
  - removed days are deleted with every response on them, for all users

Calling EditPoll twice with the same days is a no-op the second time.

# Answering

	err := engine.UpsertResponse(ctx, poll.ID, actor.ID, day, &value, nil)

A nil value clears the answer. A nil comment keeps the stored one. The
day must currently be in the poll. UpsertResponseFor writes another
user's cell and rejects unknown users.

	err := engine.UpsertAnswers(ctx, poll.ID, actor.ID, []duudl.Answer{{Day: day, Value: &value}})

UpsertAnswers is the batch form used by the answer form: all answers are
validated, then written in one transaction.

# Errors

	ErrEmptyTitle    title blank after trimming
	ErrEmptyDateSet  no days left after normalising
	ErrEmptyDay      response without a day
	ErrUnknownDay    response for a day not in the poll
	ErrInvalidValue  value outside yes/no/inconvenient
	ErrUnknownUser   full-grid write for a user not in the roster
	ErrNotFound      poll does not exist
*/
package duudl
