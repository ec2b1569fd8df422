package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Initial load
// ============================================================

// LoadInitialData fetches profile, orders and purchases concurrently.
// Purchases never fail the load; a profile or orders failure queues one
// notice and is returned.
func (a *App) LoadInitialData(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "App.LoadInitialData")
	defer span.End()

	// A plain group: one failed load must not cancel the others.
	var g errgroup.Group
	g.Go(func() error { return a.LoadProfile(ctx) })
	g.Go(func() error { return a.LoadOrders(ctx) })
	g.Go(func() error {
		a.LoadPurchases(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		a.notify(domain.NoticeToast, "Data loading error: %s", err.Error())
		return err
	}
	return nil
}

// ============================================================
// Lists: GET /v1/orders, /v1/purchases
// ============================================================

// LoadOrders fetches pending orders.
func (a *App) LoadOrders(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "App.LoadOrders")
	defer span.End()

	api, err := a.client()
	if err != nil {
		return err
	}

	a.mu.Lock()
	seq := a.gen.orders.next()
	a.mu.Unlock()

	start := time.Now()
	orders, err := api.ListOrders(ctx)
	a.observe("ListOrders", start, err)
	if err != nil {
		a.logger.Error("failed to fetch orders", zap.Error(err))
		return fmt.Errorf("orders fetch: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen.orders.accept(seq) {
		a.orders = orders
	}
	return nil
}

// LoadPurchases fetches purchases. Failures degrade to an empty list.
func (a *App) LoadPurchases(ctx context.Context) []domain.Purchase {
	ctx, span := tracer.Start(ctx, "App.LoadPurchases")
	defer span.End()

	api, err := a.client()
	if err != nil {
		return []domain.Purchase{}
	}

	a.mu.Lock()
	seq := a.gen.purchases.next()
	a.mu.Unlock()

	start := time.Now()
	purchases, err := api.ListPurchases(ctx)
	a.observe("ListPurchases", start, err)
	if err != nil {
		a.logger.Warn("failed to fetch purchases, showing none", zap.Error(err))
		purchases = []domain.Purchase{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen.purchases.accept(seq) {
		a.purchases = purchases
	}
	return append([]domain.Purchase{}, a.purchases...)
}

// Orders returns the last loaded orders.
func (a *App) Orders() []domain.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Order{}, a.orders...)
}

// Purchases returns the last loaded purchases.
func (a *App) Purchases() []domain.Purchase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Purchase{}, a.purchases...)
}

// ============================================================
// Decision: POST /v1/orders/{orderId}/decision
// ============================================================

// DecisionOptions are the optional approve-only inputs.
type DecisionOptions struct {
	ExternalID       string          `json:"external_id"`
	PickupPoint      string          `json:"pickup_point"`
	PurchaseMetadata json.RawMessage `json:"purchase_metadata,omitempty"`
}

// Decide answers an order. On approve with a purchase id the report
// sub-form opens before returning, while orders and purchases refresh in
// the background (see Wait). Reject refreshes synchronously. Precondition
// failures also refetch the profile so the participation state is current.
func (a *App) Decide(ctx context.Context, orderID int64, action domain.DecisionAction, opts DecisionOptions) (*domain.DecisionResponse, error) {
	ctx, span := tracer.Start(ctx, "App.Decide")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("decision.action", string(action)),
	)

	if !action.Valid() {
		return nil, &domain.ErrValidation{Field: "action", Message: "must be approve or reject"}
	}
	if orderID <= 0 {
		return nil, &domain.ErrValidation{Field: "order_id", Message: "must be a positive integer"}
	}
	api, err := a.client()
	if err != nil {
		return nil, err
	}

	req := &domain.DecisionRequest{Action: action}
	if action == domain.DecisionApprove {
		req.ExternalID = strings.TrimSpace(opts.ExternalID)
		req.PickupPoint = strings.TrimSpace(opts.PickupPoint)
		req.PurchaseMetadata = opts.PurchaseMetadata
	}

	start := time.Now()
	resp, err := api.Decide(ctx, orderID, req)
	a.observe("Decide", start, err)
	if err != nil {
		a.logger.Warn("decision rejected",
			zap.Int64("order_id", orderID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		a.notify(domain.NoticeToast, "Order processing error: %s", err.Error())
		if domain.IsKind(err, domain.KindPrecondition) {
			if perr := a.LoadProfile(ctx); perr != nil {
				a.logger.Warn("profile resync failed", zap.Error(perr))
			}
		}
		return nil, fmt.Errorf("decision: %w", err)
	}

	a.metrics.IncrDecision(action)
	if action == domain.DecisionApprove {
		a.notify(domain.NoticeToast, "Order accepted.")
	} else {
		a.notify(domain.NoticeToast, "Order rejected.")
	}

	if action == domain.DecisionApprove && resp.PurchaseID > 0 {
		a.goBackground(ctx, a.refreshLists)
		if err := a.OpenReport(ctx, resp.PurchaseID); err != nil {
			a.logger.Warn("report form did not open", zap.Int64("purchase_id", resp.PurchaseID), zap.Error(err))
		}
		return resp, nil
	}

	a.refreshLists(ctx)
	return resp, nil
}

// refreshLists reloads orders and purchases concurrently.
func (a *App) refreshLists(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error { return a.LoadOrders(ctx) })
	g.Go(func() error {
		a.LoadPurchases(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		a.logger.Warn("list refresh failed", zap.Error(err))
	}
}
