// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/danielhkuo/duudl/auth"
	"github.com/danielhkuo/duudl/cliparse"
	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/duudl"
	"github.com/danielhkuo/duudl/models"
	"github.com/danielhkuo/duudl/views"
)

// Flash messages
const (
	flashWrongPassword = "Feil passord."
	flashInvalidUser   = "Ugyldig bruker."
	flashEmptyTitle    = "Skriv inn en tittel."
	flashEmptyDays     = "Velg minst én dato."
	flashBadAnswer     = "Ugyldig svar."
	flashDayRemoved    = "En av datoene finnes ikke lenger."
)

type PageHandler struct {
	store        *db.Store
	engine       *duudl.Engine
	sessions     *auth.SessionManager
	views        *views.Renderer
	passwordHash string
}

func NewPageHandler(store *db.Store, engine *duudl.Engine, sessions *auth.SessionManager, renderer *views.Renderer, cfg cliparse.Config) (*PageHandler, error) {
	hash := cfg.PasswordHash
	if hash == "" {
		var err error
		hash, err = auth.HashPassword(cfg.SitePassword)
		if err != nil {
			return nil, err
		}
	}
	return &PageHandler{
		store:        store,
		engine:       engine,
		sessions:     sessions,
		views:        renderer,
		passwordHash: hash,
	}, nil
}

// LoginPage handles GET /login
func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if auth.SessionFromContext(r.Context()).Authed {
		http.Redirect(w, r, "/select-user", http.StatusFound)
		return
	}
	h.render(w, r, views.PageLogin, "Logg inn", nil)
}

// Login handles POST /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())
	if err := auth.CheckPassword(h.passwordHash, r.FormValue("password")); err != nil {
		s.Flash = flashWrongPassword
		h.redirect(w, r, s, "/login")
		return
	}

	s.Authed = true
	h.redirect(w, r, s, "/select-user")
}

// Logout handles POST /logout
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// SelectUserPage handles GET /select-user
func (h *PageHandler) SelectUserPage(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, "failed to list users", err)
		return
	}
	h.render(w, r, views.PageSelectUser, "Velg bruker", users)
}

// SelectUser handles POST /select-user
func (h *PageHandler) SelectUser(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())

	userID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("user_id")), 10, 64)
	if err != nil {
		s.Flash = flashInvalidUser
		h.redirect(w, r, s, "/select-user")
		return
	}
	user, err := h.store.GetUser(r.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		s.Flash = flashInvalidUser
		h.redirect(w, r, s, "/select-user")
		return
	}
	if err != nil {
		h.serverError(w, "failed to look up user", err)
		return
	}

	s.UserID = user.ID
	h.redirect(w, r, s, s.PopNextURL("/"))
}

// Overview handles GET /
func (h *PageHandler) Overview(w http.ResponseWriter, r *http.Request) {
	polls, err := h.store.ListPolls(r.Context())
	if err != nil {
		h.serverError(w, "failed to list polls", err)
		return
	}
	h.render(w, r, views.PageOverview, "Oversikt", polls)
}

// NewDuudlPage handles GET /duudl/new
func (h *PageHandler) NewDuudlPage(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())
	form := s.PopNewForm()
	h.render(w, r, views.PageNewDuudl, "Ny Duudl", form)
}

// CreateDuudl handles POST /duudl/new
func (h *PageHandler) CreateDuudl(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())
	actor, _ := auth.ActorFromContext(r.Context())

	titleRaw := r.FormValue("title")
	descriptionRaw := r.FormValue("description")
	daysJSON := r.FormValue("selected_days_json")
	if daysJSON == "" {
		daysJSON = "[]"
	}

	token, err := h.engine.CreatePoll(r.Context(), titleRaw, descriptionRaw, actor.ID, ParseDaysJSON(daysJSON))
	if errors.Is(err, duudl.ErrEmptyTitle) || errors.Is(err, duudl.ErrEmptyDateSet) {
		s.NewForm = &auth.FormState{
			Title:            titleRaw,
			Description:      descriptionRaw,
			SelectedDaysJSON: daysJSON,
		}
		s.Flash = flashFor(err)
		h.redirect(w, r, s, "/duudl/new")
		return
	}
	if err != nil {
		h.serverError(w, "failed to create poll", err)
		return
	}

	http.Redirect(w, r, "/d/"+token, http.StatusFound)
}

// ShowDuudl handles GET /d/{token}
func (h *PageHandler) ShowDuudl(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.lookupPoll(w, r)
	if !ok {
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())

	snap, err := h.engine.Snapshot(r.Context(), poll.ID)
	if err != nil {
		h.serverError(w, "failed to load poll", err)
		return
	}
	h.render(w, r, views.PageShowDuudl, poll.Title, views.BuildPollView(poll, snap, actor.ID))
}

// RespondDuudl handles POST /d/{token}/respond, the answer form on the poll
// page. The whole form is written in one transaction or not at all.
func (h *PageHandler) RespondDuudl(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.lookupPoll(w, r)
	if !ok {
		return
	}
	s := auth.SessionFromContext(r.Context())
	actor, _ := auth.ActorFromContext(r.Context())
	back := "/d/" + poll.Token

	if err := r.ParseForm(); err != nil {
		s.Flash = flashBadAnswer
		h.redirect(w, r, s, back)
		return
	}
	days, err := h.store.ListPollDates(r.Context(), poll.ID)
	if err != nil {
		h.serverError(w, "failed to list poll days", err)
		return
	}

	err = h.engine.UpsertAnswers(r.Context(), poll.ID, actor.ID, answersFromForm(r.PostForm, days))
	switch {
	case errors.Is(err, duudl.ErrInvalidValue):
		s.Flash = flashBadAnswer
		h.redirect(w, r, s, back)
		return
	case errors.Is(err, duudl.ErrUnknownDay):
		s.Flash = flashDayRemoved
		h.redirect(w, r, s, back)
		return
	case err != nil:
		h.serverError(w, "failed to save answers", err)
		return
	}

	http.Redirect(w, r, back, http.StatusFound)
}

// EditDuudlPage handles GET /d/{token}/edit
func (h *PageHandler) EditDuudlPage(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.lookupPoll(w, r)
	if !ok {
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())

	snap, err := h.engine.Snapshot(r.Context(), poll.ID)
	if err != nil {
		h.serverError(w, "failed to load poll", err)
		return
	}
	h.render(w, r, views.PageEditDuudl, "Rediger: "+poll.Title, views.BuildPollView(poll, snap, actor.ID))
}

// EditDuudl handles POST /d/{token}/edit
func (h *PageHandler) EditDuudl(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.lookupPoll(w, r)
	if !ok {
		return
	}
	s := auth.SessionFromContext(r.Context())

	daysJSON := r.FormValue("selected_days_json")
	if daysJSON == "" {
		daysJSON = "[]"
	}

	removed, err := h.engine.EditPoll(r.Context(), poll.ID, r.FormValue("title"), r.FormValue("description"), ParseDaysJSON(daysJSON))
	if errors.Is(err, duudl.ErrEmptyTitle) || errors.Is(err, duudl.ErrEmptyDateSet) {
		s.Flash = flashFor(err)
		h.redirect(w, r, s, "/d/"+poll.Token+"/edit")
		return
	}
	if errors.Is(err, duudl.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, "failed to edit poll", err)
		return
	}

	if len(removed) > 0 {
		zap.L().Info("days removed from poll", zap.String("token", poll.Token), zap.Strings("days", removed))
	}
	http.Redirect(w, r, "/d/"+poll.Token, http.StatusFound)
}

// DeleteDuudl handles POST /d/{token}/delete
func (h *PageHandler) DeleteDuudl(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.lookupPoll(w, r)
	if !ok {
		return
	}

	err := h.engine.DeletePoll(r.Context(), poll.ID)
	if err != nil && !errors.Is(err, duudl.ErrNotFound) {
		h.serverError(w, "failed to delete poll", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *PageHandler) lookupPoll(w http.ResponseWriter, r *http.Request) (models.Poll, bool) {
	poll, err := h.store.GetPollByToken(r.Context(), r.PathValue("token"))
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return models.Poll{}, false
	}
	if err != nil {
		h.serverError(w, "failed to query poll", err)
		return models.Poll{}, false
	}
	return poll, true
}

// render fills the shared page fields. Popping the flash consumes it, so
// the session is saved before the body is written.
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	s := auth.SessionFromContext(r.Context())
	page := views.Page{
		Title:      title,
		IsAuthed:   s.Authed,
		FlashError: s.PopFlash(),
		Data:       data,
	}
	if actor, ok := auth.ActorFromContext(r.Context()); ok {
		page.SelectedUser = &actor
	} else if s.UserID != 0 {
		if u, err := h.store.GetUser(r.Context(), s.UserID); err == nil {
			page.SelectedUser = &u
		}
	}

	if err := h.sessions.Save(w, s); err != nil {
		zap.L().Error("failed to save session", zap.Error(err))
	}
	if err := h.views.Render(w, http.StatusOK, name, page); err != nil {
		h.serverError(w, "failed to render page", err)
	}
}

func (h *PageHandler) redirect(w http.ResponseWriter, r *http.Request, s *auth.Session, target string) {
	if err := h.sessions.Save(w, s); err != nil {
		zap.L().Error("failed to save session", zap.Error(err))
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *PageHandler) serverError(w http.ResponseWriter, msg string, err error) {
	zap.L().Error(msg, zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func flashFor(err error) string {
	if errors.Is(err, duudl.ErrEmptyTitle) {
		return flashEmptyTitle
	}
	return flashEmptyDays
}
