// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielhkuo/duudl/auth"
	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/duudl"
	"github.com/danielhkuo/duudl/middleware"
	"github.com/danielhkuo/duudl/models"
)

type APIHandler struct {
	store  *db.Store
	engine *duudl.Engine
}

func NewAPIHandler(store *db.Store, engine *duudl.Engine) *APIHandler {
	return &APIHandler{store: store, engine: engine}
}

// Health handles GET /healthz
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// GetState handles GET /api/duudl/{token}
func (h *APIHandler) GetState(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.lookupPoll(w, r)
	if !ok {
		return
	}

	snap, err := h.engine.Snapshot(r.Context(), poll.ID)
	if err != nil {
		zap.L().Error("failed to build snapshot", zap.Error(err), zap.String("token", poll.Token))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// PostResponse handles POST /api/duudl/{token}/response
//
// Body: {"day": "2026-02-03", "value": "yes"|"no"|"inconvenient"|null, "comment": "..."}.
// Leaving out comment keeps the stored comment.
func (h *APIHandler) PostResponse(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.lookupPoll(w, r)
	if !ok {
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())

	payload := middleware.ParseJSONObject(r)
	day := stringField(payload, "day")
	value := optionalField(payload, "value")
	comment := optionalField(payload, "comment")

	err := h.engine.UpsertResponse(r.Context(), poll.ID, actor.ID, day, value, comment)
	h.writeUpsertResult(w, err, poll)
}

// PostAdminResponse handles POST /api/duudl/{token}/admin-response
//
// Used by the edit page to change any user's cell.
// Body: {"user_id": 2, "day": "2026-02-03", "value": "no"}.
func (h *APIHandler) PostAdminResponse(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.lookupPoll(w, r)
	if !ok {
		return
	}

	payload := middleware.ParseJSONObject(r)
	userID, err := userIDField(payload, "user_id")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Bad user_id")
		return
	}
	day := stringField(payload, "day")
	value := optionalField(payload, "value")
	comment := optionalField(payload, "comment")

	err = h.engine.UpsertResponseFor(r.Context(), poll.ID, userID, day, value, comment)
	h.writeUpsertResult(w, err, poll)
}

func (h *APIHandler) writeUpsertResult(w http.ResponseWriter, err error, poll models.Poll) {
	switch {
	case err == nil:
		middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
	case errors.Is(err, duudl.ErrInvalidValue):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Bad value")
	case errors.Is(err, duudl.ErrEmptyDay), errors.Is(err, duudl.ErrUnknownDay):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Bad day")
	case errors.Is(err, duudl.ErrUnknownUser):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown user")
	default:
		zap.L().Error("failed to upsert response", zap.Error(err), zap.String("token", poll.Token))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save response")
	}
}

func (h *APIHandler) lookupPoll(w http.ResponseWriter, r *http.Request) (models.Poll, bool) {
	poll, err := h.store.GetPollByToken(r.Context(), r.PathValue("token"))
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return models.Poll{}, false
	}
	if err != nil {
		zap.L().Error("failed to query poll", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Poll{}, false
	}
	return poll, true
}
