// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, read-model, and response types.

# Domain Types

  - User: fixed roster member (id, slug, display name)
  - Poll: a Duudl; Token is the only public identifier
  - PollSummary: overview row with the count of users who answered
  - CellKey: (user, day) address of a response within a poll

# Read Model

Snapshot is what GET /api/duudl/{token} returns:

	{
	  "users": [{"id": 1, "display_name": "Huez-Helge"}],
	  "days": ["2026-02-03"],
	  "responses": {"1:2026-02-03": "yes", "2:2026-02-03": null},
	  "comments": {"1:2026-02-03": "+1"}
	}

# Constants

Response values:

	ValueYes          = "yes"
	ValueNo           = "no"
	ValueInconvenient = "inconvenient"

A nil value means the cell has no answer.
*/
package models
