package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"imagestudio/internal/domain"
	"imagestudio/internal/middleware"
	"imagestudio/internal/studio"
	"imagestudio/internal/view"
)

// App carries the dependencies shared by every handler.
type App struct {
	Sessions *studio.Sessions
	Logger   zerolog.Logger

	// ctx parents background generations so they outlive the request that
	// started them but stop on shutdown.
	ctx      context.Context
	tmpl     *template.Template
	upgrader websocket.Upgrader
	origins  map[string]struct{}
}

// NewApp wires the handlers. allowedOrigins extends the same-origin check of
// the event stream.
func NewApp(ctx context.Context, sessions *studio.Sessions, logger zerolog.Logger, allowedOrigins []string) (*App, error) {
	if sessions == nil {
		return nil, errors.New("handlers: sessions are required")
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("handlers: parse templates: %w", err)
	}
	a := &App{
		Sessions: sessions,
		Logger:   logger,
		ctx:      ctx,
		tmpl:     tmpl,
		origins:  make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		a.origins[strings.TrimRight(strings.TrimSpace(o), "/")] = struct{}{}
	}
	a.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     a.checkOrigin,
	}
	return a, nil
}

// orchestrator returns the studio bound to the request's session cookie.
func (a *App) orchestrator(r *http.Request) (*studio.Orchestrator, error) {
	return a.Sessions.Get(middleware.SessionIDFromContext(r.Context()))
}

// sessionError answers a failed session lookup. A full registry is reported
// as 503 so clients retry later.
func (a *App) sessionError(w http.ResponseWriter, r *http.Request, err error, api bool) {
	status, code, message := http.StatusInternalServerError, "internal", domain.UnknownErrorMessage
	if errors.Is(err, studio.ErrSessionLimit) {
		status, code, message = http.StatusServiceUnavailable, "busy", "The studio is busy. Please try again shortly."
		w.Header().Set("Retry-After", "30")
		a.log(r).Warn().Err(err).Msg("resolve session")
	} else {
		a.log(r).Error().Err(err).Msg("resolve session")
	}
	if api {
		a.error(w, status, code, message)
		return
	}
	http.Error(w, message, status)
}

func (a *App) copyFor(r *http.Request) view.Copy {
	return view.CopyFor(middleware.LocaleFromContext(r.Context()))
}

func (a *App) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := a.origins[origin]; ok {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	l := a.Logger.With().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("session_id", middleware.SessionIDFromContext(r.Context())).
		Logger()
	return &l
}
