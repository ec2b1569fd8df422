package handler

import (
	"context"
	"net/http"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 1. Authentication
// ============================================================

// authResponse carries the BFF session token and the first render.
type authResponse struct {
	Token string         `json:"token"`
	State *service.State `json:"state"`
}

func authRegisterHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/register")
		defer span.End()

		var req domain.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		app := sessions.New()
		startSession(ctx, w, sessions, app, func(ctx context.Context) error {
			return app.Register(ctx, &req)
		}, http.StatusCreated, logger)
	}
}

func authLoginHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		app := sessions.New()
		startSession(ctx, w, sessions, app, func(ctx context.Context) error {
			return app.Login(ctx, &req)
		}, http.StatusOK, logger)
	}
}

// startSession runs authenticate and stores app only when it succeeds.
func startSession(ctx context.Context, w http.ResponseWriter, sessions *service.Sessions, app *service.App, authenticate func(context.Context) error, status int, logger *zap.Logger) {
	if err := authenticate(ctx); err != nil {
		handleServiceError(w, err, logger)
		return
	}
	token, err := sessions.Save(app)
	if err != nil {
		handleServiceError(w, err, logger)
		return
	}
	writeJSON(w, status, authResponse{Token: token, State: app.Snapshot()})
}

func authLogoutHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		AppFromContext(r.Context()).Logout()
		sessions.End(tokenFromContext(r.Context()))
		logger.Debug("session ended")
		w.WriteHeader(http.StatusNoContent)
	}
}

// authViewHandler switches between the register and login forms. The
// session is optional: anonymous callers get a throwaway App.
func authViewHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/auth/view")
		defer span.End()

		mode := domain.ParseAuthMode(r.URL.Query().Get("mode"))

		app := sessions.New()
		if token, ok := bearerToken(r); ok {
			if existing, err := sessions.Lookup(token); err == nil {
				app = existing
			} else {
				logger.Debug("auth view: ignoring stale session", zap.Error(err))
			}
		}

		view := app.ShowAuthForm(mode)
		writeJSON(w, http.StatusOK, struct {
			View    domain.View     `json:"view"`
			Notices []domain.Notice `json:"notices"`
		}{View: view, Notices: app.Notices()})
	}
}

func stateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AppFromContext(r.Context()).Snapshot())
	}
}
