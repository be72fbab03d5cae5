// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/duudl/auth"
	"github.com/danielhkuo/duudl/cliparse"
	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/duudl"
	"github.com/danielhkuo/duudl/handlers"
	"github.com/danielhkuo/duudl/middleware"
	"github.com/danielhkuo/duudl/views"
)

func NewRouter(conn *sql.DB, cfg cliparse.Config) (http.Handler, error) {
	store := db.NewStore(conn)
	engine := duudl.NewEngine(store)
	sessions := auth.NewSessionManager(cfg.SecretKey, auth.DefaultSessionTTL)

	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	// Initialize handlers
	pageHandler, err := handlers.NewPageHandler(store, engine, sessions, renderer, cfg)
	if err != nil {
		return nil, err
	}
	apiHandler := handlers.NewAPIHandler(store, engine)

	guard := middleware.NewGuard(sessions, store)
	login := guard.RequireLogin
	selected := guard.RequireSelectedUser

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /healthz", middleware.WithLogging(apiHandler.Health))

	// Scripts and styles, unguarded so the login page is styled too
	static := http.StripPrefix("/static/", http.FileServerFS(views.Static()))
	mux.HandleFunc("GET /static/", middleware.WithLogging(static.ServeHTTP))

	// Login and user selection
	mux.HandleFunc("GET /login", middleware.WithLogging(pageHandler.LoginPage))
	mux.HandleFunc("POST /login", middleware.WithLogging(pageHandler.Login))
	mux.HandleFunc("POST /logout", middleware.WithLogging(pageHandler.Logout))
	mux.HandleFunc("GET /select-user", middleware.WithLogging(login(pageHandler.SelectUserPage)))
	mux.HandleFunc("POST /select-user", middleware.WithLogging(login(pageHandler.SelectUser)))

	// Pages
	mux.HandleFunc("GET /{$}", middleware.WithLogging(selected(pageHandler.Overview)))
	mux.HandleFunc("GET /duudl/new", middleware.WithLogging(selected(pageHandler.NewDuudlPage)))
	mux.HandleFunc("POST /duudl/new", middleware.WithLogging(selected(pageHandler.CreateDuudl)))
	mux.HandleFunc("GET /d/{token}", middleware.WithLogging(selected(pageHandler.ShowDuudl)))
	mux.HandleFunc("POST /d/{token}/respond", middleware.WithLogging(selected(pageHandler.RespondDuudl)))
	mux.HandleFunc("GET /d/{token}/edit", middleware.WithLogging(selected(pageHandler.EditDuudlPage)))
	mux.HandleFunc("POST /d/{token}/edit", middleware.WithLogging(selected(pageHandler.EditDuudl)))
	mux.HandleFunc("POST /d/{token}/delete", middleware.WithLogging(selected(pageHandler.DeleteDuudl)))

	// JSON API
	mux.HandleFunc("GET /api/duudl/{token}", middleware.WithLogging(selected(apiHandler.GetState)))
	mux.HandleFunc("POST /api/duudl/{token}/response", middleware.WithLogging(selected(apiHandler.PostResponse)))
	mux.HandleFunc("POST /api/duudl/{token}/admin-response", middleware.WithLogging(selected(apiHandler.PostAdminResponse)))

	return middleware.RequestID(middleware.Sessions(sessions, mux)), nil
}
