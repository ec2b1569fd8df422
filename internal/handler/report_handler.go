package handler

import (
	"net/http"

	"github.com/boddenberg/influencer-bfa-go/internal/report"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 4. Test report sub-form
// ============================================================

func openReportHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/reports/{purchaseId}/open")
		defer span.End()

		purchaseID, err := report.ParsePurchaseID(chi.URLParam(r, "purchaseId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int64("purchase.id", purchaseID))

		app := AppFromContext(ctx)
		if err := app.OpenReport(ctx, purchaseID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.ReportForm())
	}
}

func reportFieldsHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/report/fields")
		defer span.End()

		var changes map[string]any
		if err := decodeJSON(r, &changes); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		app := AppFromContext(ctx)
		if err := app.ApplyReportFields(changes); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.ReportForm())
	}
}

// proofFileHandler records the name of a locally chosen file. The file
// itself is never uploaded.
func proofFileHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/report/proof-files")
		defer span.End()

		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		app := AppFromContext(ctx)
		if err := app.StageProofFile(req.Name); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.ReportForm())
	}
}

func submitReportHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/report/submit")
		defer span.End()

		app := AppFromContext(ctx)
		if _, err := app.SubmitReport(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.Snapshot())
	}
}

func closeReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/report/close")
		defer span.End()

		app := AppFromContext(r.Context())
		app.CloseReport()
		writeJSON(w, http.StatusOK, app.ReportForm())
	}
}
