package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/report"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Open: POST /v1/reports/{purchaseId}/open
// ============================================================

// OpenReport binds the sub-form to a purchase. An existing report is
// loaded in full; otherwise identity is prefilled from the profile and
// the item name from the purchase article.
func (a *App) OpenReport(ctx context.Context, purchaseID int64) error {
	ctx, span := tracer.Start(ctx, "App.OpenReport")
	defer span.End()
	span.SetAttributes(attribute.Int64("purchase.id", purchaseID))

	api, err := a.client()
	if err != nil {
		return err
	}

	a.mu.Lock()
	err = a.report.Open(purchaseID)
	a.mu.Unlock()
	if err != nil {
		return err
	}

	start := time.Now()
	existing, err := api.GetReport(ctx, purchaseID)
	notFound := domain.IsNotFound(err)
	if notFound {
		a.observe("GetReport", start, nil)
	} else {
		a.observe("GetReport", start, err)
	}
	if err != nil && !notFound {
		a.logger.Error("failed to fetch report", zap.Int64("purchase_id", purchaseID), zap.Error(err))
		a.mu.Lock()
		if a.report.PurchaseID() == purchaseID {
			a.report.Close()
		}
		a.mu.Unlock()
		a.notify(domain.NoticeToast, "Could not open report: %s", err.Error())
		return fmt.Errorf("report fetch: %w", err)
	}

	if existing != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.report.PurchaseID() == purchaseID {
			a.report.Populate(existing)
		}
		return nil
	}

	fullName, contact := a.identity(ctx)
	itemName := a.itemName(ctx, purchaseID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.report.PurchaseID() == purchaseID {
		a.report.Prefill(fullName, contact, itemName)
	}
	return nil
}

// identity returns the name and contact for a new report, fetching the
// profile first when none is loaded. Contact falls back to the account
// phone number.
func (a *App) identity(ctx context.Context) (string, string) {
	a.mu.Lock()
	loaded := a.profile != nil
	a.mu.Unlock()
	if !loaded {
		if err := a.LoadProfile(ctx); err != nil {
			a.logger.Warn("profile unavailable for report prefill", zap.Error(err))
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	var fullName, contact string
	if a.profile != nil {
		fullName, contact = a.profile.FullName, a.profile.Contact
	}
	if contact == "" && a.session.User != nil {
		contact = a.session.User.PhoneNumber
	}
	return fullName, contact
}

// itemName looks the purchase up locally, then in a fresh list.
func (a *App) itemName(ctx context.Context, purchaseID int64) string {
	a.mu.Lock()
	p := domain.FindPurchase(a.purchases, purchaseID)
	a.mu.Unlock()
	if p != nil {
		return p.Article
	}

	if p = domain.FindPurchase(a.LoadPurchases(ctx), purchaseID); p != nil {
		return p.Article
	}
	return ""
}

// ============================================================
// Edit: PUT /v1/report/fields, POST /v1/report/proof-files
// ============================================================

// ReportForm renders the sub-form.
func (a *App) ReportForm() report.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.report.Render()
}

// ApplyReportFields sets sub-form values from decoded JSON.
func (a *App) ApplyReportFields(changes map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.report.Apply(changes)
}

// StageProofFile records a locally chosen proof file name.
func (a *App) StageProofFile(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.report.StageProofFile(name)
}

// CloseReport resets and hides the sub-form.
func (a *App) CloseReport() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.Close()
}

// ============================================================
// Submit: POST /v1/report/submit
// ============================================================

// SubmitReport validates, upserts the report, closes the sub-form and
// refreshes purchases so has_report is current.
func (a *App) SubmitReport(ctx context.Context) (*domain.TestReport, error) {
	ctx, span := tracer.Start(ctx, "App.SubmitReport")
	defer span.End()

	api, err := a.client()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if err := a.report.Validate(); err != nil {
		var incomplete *domain.ErrIncompleteStep
		if errors.As(err, &incomplete) {
			a.metrics.IncrStepRefusal("report")
			a.notifyLocked(domain.NoticeToast, "Please fill in all required report fields")
		}
		a.mu.Unlock()
		return nil, err
	}
	payload := a.report.Payload()
	purchaseID := a.report.PurchaseID()
	a.mu.Unlock()
	span.SetAttributes(attribute.Int64("purchase.id", purchaseID))

	start := time.Now()
	saved, err := api.SaveReport(ctx, purchaseID, &payload)
	a.observe("SaveReport", start, err)
	if err != nil {
		a.logger.Error("failed to save report", zap.Int64("purchase_id", purchaseID), zap.Error(err))
		a.notify(domain.NoticeToast, "Report save error: %s", err.Error())
		return nil, fmt.Errorf("report save: %w", err)
	}

	a.metrics.IncrReportSubmitted()
	a.mu.Lock()
	if a.report.PurchaseID() == purchaseID {
		a.report.Close()
	}
	a.notifyLocked(domain.NoticeToast, "Report saved.")
	a.mu.Unlock()

	a.LoadPurchases(ctx)
	return saved, nil
}
