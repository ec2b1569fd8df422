package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/profile"

	"go.uber.org/zap"
)

const stepRefusedMessage = "Please fill in all required fields on the current step"

// ============================================================
// Load: POST /v1/profile/reload
// ============================================================

// LoadProfile fetches the profile and repopulates the questionnaire.
func (a *App) LoadProfile(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "App.LoadProfile")
	defer span.End()

	api, err := a.client()
	if err != nil {
		return err
	}

	a.mu.Lock()
	seq := a.gen.profile.next()
	a.mu.Unlock()

	start := time.Now()
	p, err := api.GetProfile(ctx)
	a.observe("GetProfile", start, err)
	if err != nil {
		a.logger.Error("failed to fetch profile", zap.Error(err))
		return fmt.Errorf("profile fetch: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gen.profile.accept(seq) {
		a.logger.Debug("discarding stale profile", zap.Uint64("seq", seq))
		return nil
	}
	a.profile = p
	a.form.Populate(p)
	return nil
}

// ============================================================
// Questionnaire editing: /v1/profile/form/*
// ============================================================

// ProfileForm renders the questionnaire.
func (a *App) ProfileForm() profile.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.Render(a.profile)
}

// ApplyProfileFields sets field values from decoded JSON.
func (a *App) ApplyProfileFields(changes map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.Apply(changes)
}

// AddProfileRow appends an empty row to a list field.
func (a *App) AddProfileRow(field string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.AddRow(field)
}

// RemoveProfileRow removes row i of a list field, keeping at least one.
func (a *App) RemoveProfileRow(field string, i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.RemoveRow(field, i)
}

// GoToStep navigates the questionnaire. A refused forward move queues a
// notice and returns *domain.ErrIncompleteStep.
func (a *App) GoToStep(target int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.form.GoToStep(target)
	var incomplete *domain.ErrIncompleteStep
	if errors.As(err, &incomplete) {
		a.metrics.IncrStepRefusal("profile")
		a.notifyLocked(domain.NoticeToast, stepRefusedMessage)
	}
	return err
}

// ============================================================
// Save: POST /v1/profile/form/submit
// ============================================================

// SaveProfile checks the visible step, PATCHes the serialized form and
// repopulates from the server's answer. Failures queue both a toast and
// a blocking alert.
func (a *App) SaveProfile(ctx context.Context) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "App.SaveProfile")
	defer span.End()

	api, err := a.client()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if err := a.form.ValidateCurrent(); err != nil {
		a.metrics.IncrStepRefusal("profile")
		a.notifyLocked(domain.NoticeToast, stepRefusedMessage)
		a.mu.Unlock()
		return nil, err
	}
	update := a.form.Serialize()
	seq := a.gen.profile.next()
	a.mu.Unlock()

	start := time.Now()
	p, err := api.UpdateProfile(ctx, &update)
	a.observe("UpdateProfile", start, err)
	if err != nil {
		msg := saveErrorMessage(err)
		a.logger.Error("failed to save profile", zap.Error(err))
		a.mu.Lock()
		a.notifyLocked(domain.NoticeToast, "%s", msg)
		a.notifyLocked(domain.NoticeAlert, "Error: %s", msg)
		a.mu.Unlock()
		return nil, fmt.Errorf("profile save: %w", err)
	}

	a.mu.Lock()
	if a.gen.profile.accept(seq) {
		a.profile = p
		a.form.Populate(p)
	}
	a.form.ResetStep()
	a.notifyLocked(domain.NoticeToast, "Profile saved successfully!")
	a.mu.Unlock()

	if err := a.LoadProfile(ctx); err != nil {
		a.logger.Warn("profile reload after save failed", zap.Error(err))
	}
	return p, nil
}

// saveErrorMessage prefixes field-level rejections so the user can tell
// them from transport failures.
func saveErrorMessage(err error) string {
	var apiErr *domain.ErrAPI
	if errors.As(err, &apiErr) && apiErr.Detail == "" && len(apiErr.Fields) > 0 {
		return "Validation errors: " + domain.FlattenFieldErrors(apiErr.Fields)
	}
	return err.Error()
}

// ============================================================
// Participation: POST /v1/profile/participation
// ============================================================

// ToggleParticipation flips is_participating, repopulates the form and
// reloads orders, which depend on the flag.
func (a *App) ToggleParticipation(ctx context.Context) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "App.ToggleParticipation")
	defer span.End()

	api, err := a.client()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.profile == nil {
		a.mu.Unlock()
		return nil, &domain.ErrNotFound{Resource: "profile", ID: "me"}
	}
	next := !a.profile.IsParticipating
	seq := a.gen.profile.next()
	a.mu.Unlock()

	start := time.Now()
	p, err := api.SetParticipation(ctx, next)
	a.observe("SetParticipation", start, err)
	if err != nil {
		a.notify(domain.NoticeToast, "Could not change participation: %s", err.Error())
		return nil, fmt.Errorf("participation: %w", err)
	}

	a.mu.Lock()
	if a.gen.profile.accept(seq) {
		a.profile = p
		a.form.Populate(p)
	}
	if next {
		a.notifyLocked(domain.NoticeToast, "You are now taking part in orders.")
	} else {
		a.notifyLocked(domain.NoticeToast, "You stopped participating.")
	}
	a.mu.Unlock()

	if err := a.LoadOrders(ctx); err != nil {
		a.logger.Warn("orders reload after participation change failed", zap.Error(err))
	}
	return p, nil
}
