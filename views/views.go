// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/duudl/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded scripts and stylesheet, rooted so that
// "grid.js" is static/grid.js.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page names
const (
	PageLogin      = "login.html"
	PageSelectUser = "select_user.html"
	PageOverview   = "overview.html"
	PageNewDuudl   = "duudl_new.html"
	PageShowDuudl  = "show_duudl.html"
	PageEditDuudl  = "edit_duudl.html"
)

var pageNames = []string{
	PageLogin,
	PageSelectUser,
	PageOverview,
	PageNewDuudl,
	PageShowDuudl,
	PageEditDuudl,
}

// Template helper functions
var funcMap = template.FuncMap{
	"noMonthDate": formatNoMonthDate,
	"ago":         Ago,
	"toJSON":      toJSON,
	"valueLabel":  ValueLabel,
}

// Page is the data every template receives.
type Page struct {
	Title        string
	IsAuthed     bool
	SelectedUser *models.User
	FlashError   string
	Data         any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded layout and pages.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes a page into a buffer first so a template error never
// produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %s", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var norwegianMonths = [...]string{
	"januar", "februar", "mars", "april", "mai", "juni",
	"juli", "august", "september", "oktober", "november", "desember",
}

// NoMonthDate formats an ISO date or datetime as "D. month YYYY" with the
// Norwegian month name, e.g. "2026-02-03T12:34:56Z" -> "3. februar 2026".
// Unparsable input is returned as its ISO prefix.
func NoMonthDate(value string) string {
	s := strings.TrimSpace(value)
	iso := substr(s, 0, 10)

	year, errY := strconv.Atoi(substr(iso, 0, 4))
	month, errM := strconv.Atoi(substr(iso, 5, 7))
	day, errD := strconv.Atoi(substr(iso, 8, 10))
	if errY != nil || errM != nil || errD != nil {
		if iso != "" {
			return iso
		}
		return s
	}

	if month >= 1 && month <= 12 {
		return fmt.Sprintf("%d. %s %d", day, norwegianMonths[month-1], year)
	}
	return iso
}

func formatNoMonthDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return NoMonthDate(t.UTC().Format(time.RFC3339))
	case string:
		return NoMonthDate(t)
	default:
		return NoMonthDate(fmt.Sprint(v))
	}
}

// Ago renders a relative time such as "3 days ago".
func Ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// ValueLabel is the grid label for a response value.
func ValueLabel(v *string) string {
	if v == nil {
		return ""
	}
	switch *v {
	case models.ValueYes:
		return "Ja"
	case models.ValueNo:
		return "Nei"
	case models.ValueInconvenient:
		return "Passer dårlig"
	}
	return *v
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func substr(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
