package main

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/vae-dossiers/auth"
	"github.com/diewo77/vae-dossiers/httpx"
	"github.com/diewo77/vae-dossiers/i18n"
	"github.com/diewo77/vae-dossiers/internal/config"
	"github.com/diewo77/vae-dossiers/internal/db"
	"github.com/diewo77/vae-dossiers/internal/handlers"
	"github.com/diewo77/vae-dossiers/internal/iam"
	"github.com/diewo77/vae-dossiers/internal/logging"
	"github.com/diewo77/vae-dossiers/internal/policy"
	"github.com/diewo77/vae-dossiers/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux  *http.ServeMux
	db   *gorm.DB
	log  *zap.Logger
	gate *policy.Gate
	// subjects caches the authorization subject of signed-in accounts.
	subjects *policy.CachedResolver

	auth         *handlers.AuthHandler
	registration *handlers.RegistrationHandler
	candidacies  *handlers.CandidacyHandler
}

// NewApp wires services and handlers on top of an open database.
func NewApp(conn *gorm.DB, cfg *config.Config, mailer services.Mailer, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	if mailer == nil {
		mailer = services.LogMailer{Log: log}
	}
	dir := iam.NewGormDirectory(conn)
	gate, subjects := policy.NewAccountGate(conn, cfg.Auth.CacheTTL())

	candidacies := services.NewCandidacyService(conn, log)
	feasibility := services.NewFeasibilityService(conn, log)
	registration := services.NewRegistrationService(conn, dir, mailer, cfg.App.BaseURL, log)

	app := &App{
		mux:          http.NewServeMux(),
		db:           conn,
		log:          log,
		gate:         gate,
		subjects:     subjects,
		auth:         handlers.NewAuthHandler(dir, subjects, log),
		registration: handlers.NewRegistrationHandler(registration, subjects, log),
		candidacies:  handlers.NewCandidacyHandler(candidacies, feasibility, gate, log),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := logging.Recover(a.log, auth.Middleware(withPreferences(a.mux)))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// Public
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.ready)
	a.mux.HandleFunc("POST /auth/login", a.auth.Login)
	a.mux.HandleFunc("POST /auth/logout", a.auth.Logout)
	a.mux.HandleFunc("POST /candidates/registration", a.registration.Ask)
	a.mux.HandleFunc("POST /candidates/password-reset", a.registration.AskPasswordReset)
	a.mux.HandleFunc("POST /candidates/reset-password", a.registration.ResetPassword)

	// Authenticated
	a.mux.Handle("GET /auth/me", auth.RequireAuth(http.HandlerFunc(a.auth.Me)))

	ch := a.candidacies
	a.mux.Handle("GET /candidacies/{id}",
		a.protect(policy.ResourceCandidacy, policy.ActionView, ch.Show))
	a.mux.Handle("POST /candidacies/{id}/type-accompagnement/autonome",
		a.protect(policy.ResourceCandidacy, policy.ActionSwitchAutonome, ch.SwitchToAutonome))
	a.mux.Handle("GET /candidacies/{id}/feasibility-file.pdf",
		a.protect(policy.ResourceFeasibility, policy.ActionView, ch.FeasibilityFilePDF))
}

// protect requires a session and the profile permission; handlers check
// ownership once the resource is loaded.
func (a *App) protect(resource string, action policy.Action, h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.gate.RequirePermission(resource, action)(h))
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ready also checks the database.
func (a *App) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx, a.db); err != nil {
		a.log.Warn("readiness check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withPreferences injects the language preference from query, cookie or
// Accept-Language.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
