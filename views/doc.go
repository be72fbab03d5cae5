// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package views renders the HTML pages from embedded templates.

	renderer, err := views.New()
	err = renderer.Render(w, http.StatusOK, views.PageOverview, views.Page{Title: "Oversikt", Data: polls})

Every page is layout.html plus one page template defining "content" and,
optionally, "scripts".

# Static Assets

Static returns the embedded static/ directory, served under /static/:

	grid.js        value cycling, cell updates, JSON posts
	calendar.js    month calendar that fills selected_days_json
	show_duudl.js  saves the selected user's answers as they change
	new_duudl.js   day picker on the create form
	edit_duudl.js  day picker, removal confirmation, full-grid editing
	duudl.css      styles

Pages work without the scripts: the poll page has an answer form and the
day fields accept a JSON array.

# Template Functions

	noMonthDate  "2026-02-03" → "3. februar 2026"
	ago          relative time, "3 days ago"
	toJSON       JSON encoding, used for the editable day list
	valueLabel   yes/no/inconvenient → Ja/Nei/Passer dårlig
*/
package views
