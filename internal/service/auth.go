package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/profile"
	"github.com/boddenberg/influencer-bfa-go/internal/report"

	"go.uber.org/zap"
)

// ============================================================
// Register / Login: POST /v1/auth/register, /v1/auth/login
// ============================================================

// Register creates an account and, on success, switches the session to
// the authenticated view and loads profile, orders and purchases.
func (a *App) Register(ctx context.Context, req *domain.RegisterRequest) error {
	ctx, span := tracer.Start(ctx, "App.Register")
	defer span.End()

	start := time.Now()
	resp, err := a.base.Register(ctx, req)
	a.observe("Register", start, err)
	if err != nil {
		a.logger.Warn("registration failed", zap.Error(err))
		a.notify(domain.NoticeToast, "Registration failed: %s", err.Error())
		return fmt.Errorf("register: %w", err)
	}

	a.notify(domain.NoticeToast, "Registration successful!")
	return a.authenticate(ctx, resp)
}

// Login authenticates an existing account.
func (a *App) Login(ctx context.Context, req *domain.LoginRequest) error {
	ctx, span := tracer.Start(ctx, "App.Login")
	defer span.End()

	start := time.Now()
	resp, err := a.base.Login(ctx, req)
	a.observe("Login", start, err)
	if err != nil {
		a.logger.Warn("login failed", zap.Error(err))
		a.notify(domain.NoticeToast, "Sign-in failed: %s", err.Error())
		return fmt.Errorf("login: %w", err)
	}

	a.notify(domain.NoticeToast, "Signed in.")
	return a.authenticate(ctx, resp)
}

// authenticate stores the token and runs the initial load. A failed load
// is reported as a notice but does not undo the sign-in.
func (a *App) authenticate(ctx context.Context, resp *domain.AuthResponse) error {
	if resp == nil || resp.Token == "" {
		return &domain.ErrExternalService{Service: "backend", Err: fmt.Errorf("auth response without token")}
	}

	a.mu.Lock()
	a.session = domain.Session{Token: resp.Token, User: resp.User}
	a.api = a.base.WithToken(resp.Token)
	a.mu.Unlock()

	if err := a.LoadInitialData(ctx); err != nil {
		a.logger.Warn("initial load failed", zap.Error(err))
	}
	return nil
}

// Logout forgets the token and every server-owned copy.
func (a *App) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.session = domain.Session{}
	a.api = nil
	a.profile = nil
	a.orders = nil
	a.purchases = nil
	a.form = profile.NewForm()
	a.report = report.NewForm()
	a.gen.invalidate()
}

// ============================================================
// View: GET /v1/auth/view
// ============================================================

// ShowAuthForm switches between the registration and login forms.
func (a *App) ShowAuthForm(mode domain.AuthMode) domain.View {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.authMode = mode
	if mode == domain.AuthModeLogin {
		a.notifyLocked(domain.NoticeToast, "Login form opened")
	} else {
		a.notifyLocked(domain.NoticeToast, "Registration form opened")
	}
	return a.viewLocked()
}

// View reports which UI regions are visible.
func (a *App) View() domain.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewLocked()
}

func (a *App) viewLocked() domain.View {
	if a.session.Authenticated() {
		phone := ""
		if a.session.User != nil {
			phone = a.session.User.PhoneNumber
		}
		return domain.View{
			Authenticated: true,
			AuthStatus:    "Signed in: " + phone,
			ShowProfile:   true,
			ShowOrders:    true,
			ShowPurchases: true,
		}
	}
	return domain.View{
		AuthStatus:   "Not signed in",
		AuthMode:     a.authMode,
		ShowAuthNav:  true,
		ShowRegister: a.authMode != domain.AuthModeLogin,
		ShowLogin:    a.authMode == domain.AuthModeLogin,
	}
}
