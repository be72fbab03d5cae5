// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"github.com/danielhkuo/duudl/models"
)

type GridCell struct {
	Key     string
	Day     string
	Value   *string
	Comment string
}

// ValueString is the value or "" for an unanswered cell.
func (c GridCell) ValueString() string {
	if c.Value == nil {
		return ""
	}
	return *c.Value
}

type GridRow struct {
	User  models.SnapshotUser
	Cells []GridCell
	Mine  bool
}

// DayTally counts answers per value for one day.
type DayTally struct {
	Day          string
	Yes          int
	No           int
	Inconvenient int
}

// PollView is the data of the show and edit pages.
type PollView struct {
	Poll           models.Poll
	Days           []string
	Rows           []GridRow
	Tallies        []DayTally
	SelectedUserID int64

	// Mine is the selected user's row, backing the answer form
	Mine []GridCell
}

// BuildPollView lays a snapshot out as one row per user, one cell per day.
func BuildPollView(poll models.Poll, snap models.Snapshot, selectedUserID int64) PollView {
	view := PollView{
		Poll:           poll,
		Days:           snap.Days,
		Rows:           make([]GridRow, 0, len(snap.Users)),
		Tallies:        make([]DayTally, len(snap.Days)),
		SelectedUserID: selectedUserID,
	}
	for i, day := range snap.Days {
		view.Tallies[i].Day = day
	}

	for _, u := range snap.Users {
		row := GridRow{User: u, Cells: make([]GridCell, 0, len(snap.Days)), Mine: u.ID == selectedUserID}
		for i, day := range snap.Days {
			key := models.CellKey{UserID: u.ID, Day: day}.String()
			value := snap.Responses[key]
			row.Cells = append(row.Cells, GridCell{
				Key:     key,
				Day:     day,
				Value:   value,
				Comment: snap.Comments[key],
			})
			if value == nil {
				continue
			}
			switch *value {
			case models.ValueYes:
				view.Tallies[i].Yes++
			case models.ValueNo:
				view.Tallies[i].No++
			case models.ValueInconvenient:
				view.Tallies[i].Inconvenient++
			}
		}
		if row.Mine {
			view.Mine = row.Cells
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
