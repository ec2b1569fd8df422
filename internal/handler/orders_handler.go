package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ============================================================
// 3. Orders & purchases
// ============================================================

func listOrdersHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/orders")
		defer span.End()

		app := AppFromContext(ctx)
		if err := app.LoadOrders(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		orders := app.Orders()
		span.SetAttributes(attribute.Int("orders.count", len(orders)))
		writeJSON(w, http.StatusOK, orders)
	}
}

// listPurchasesHandler never fails: upstream errors yield an empty list.
func listPurchasesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/purchases")
		defer span.End()

		purchases := AppFromContext(ctx).LoadPurchases(ctx)
		span.SetAttributes(attribute.Int("purchases.count", len(purchases)))
		writeJSON(w, http.StatusOK, purchases)
	}
}

func exportPurchasesHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/purchases/export")
		defer span.End()

		data, err := AppFromContext(ctx).ExportPurchases(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		filename := fmt.Sprintf("purchases-%s.xlsx", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

// decisionRequest is the BFF body for a decision. Approve-only fields are
// ignored on reject.
type decisionRequest struct {
	Action domain.DecisionAction `json:"action"`
	service.DecisionOptions
}

type decisionResponse struct {
	Decision *domain.DecisionResponse `json:"decision"`
	State    *service.State           `json:"state"`
}

func decisionHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/orders/{orderId}/decision")
		defer span.End()

		orderID, err := idParam(r, "orderId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var req decisionRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.Int64("order.id", orderID),
			attribute.String("decision.action", string(req.Action)),
		)

		app := AppFromContext(ctx)
		resp, err := app.Decide(ctx, orderID, req.Action, req.DecisionOptions)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, decisionResponse{Decision: resp, State: app.Snapshot()})
	}
}
