// Package client implements port.Backend against the platform's REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/influencer-bfa-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

const serviceName = "backend"

// Backend error codes that mark a missing profile precondition.
const (
	CodeProfileIncomplete     = "profile_incomplete"
	CodeParticipationRequired = "participation_required"
)

// Client talks to the backend with retry, circuit breaker, bulkhead and
// tracing. A Client is safe for concurrent use; WithToken returns a copy
// that shares the breaker and bulkhead.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

var _ port.Backend = (*Client)(nil)

// New creates an anonymous Client.
func New(httpClient *http.Client, baseURL string, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         resilience.NewCircuitBreaker(serviceName, IsSuccessful, logger),
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		logger:     logger,
	}
}

// WithToken returns a Client authenticating as token.
func (c *Client) WithToken(token string) port.Backend {
	cp := *c
	cp.token = token
	return &cp
}

// IsSuccessful tells the circuit breaker which outcomes are healthy:
// anything the backend answered with a 4xx is a caller problem, not an
// outage.
func IsSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *domain.ErrAPI
	if errors.As(err, &apiErr) {
		return apiErr.Status < http.StatusInternalServerError
	}
	return false
}

// ============================================================
// Auth
// ============================================================

func (c *Client) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.do(ctx, "Client.Register", http.MethodPost, "/auth/register/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.do(ctx, "Client.Login", http.MethodPost, "/auth/login/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================
// Profile
// ============================================================

func (c *Client) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, "Client.GetProfile", http.MethodGet, "/profile/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update *domain.ProfileUpdate) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, "Client.UpdateProfile", http.MethodPatch, "/profile/me/", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetParticipation(ctx context.Context, participating bool) (*domain.Profile, error) {
	var out domain.Profile
	body := &domain.ParticipationRequest{IsParticipating: participating}
	if err := c.do(ctx, "Client.SetParticipation", http.MethodPost, "/profile/participation/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================
// Orders and purchases
// ============================================================

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.do(ctx, "Client.ListOrders", http.MethodGet, "/orders/creating/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	var out []domain.Purchase
	if err := c.do(ctx, "Client.ListPurchases", http.MethodGet, "/orders/purchases/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Decide(ctx context.Context, orderID int64, req *domain.DecisionRequest) (*domain.DecisionResponse, error) {
	var out domain.DecisionResponse
	path := fmt.Sprintf("/orders/creating/%d/decision/", orderID)
	if err := c.do(ctx, "Client.Decide", http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================
// Reports
// ============================================================

// GetReport returns *domain.ErrNotFound when the purchase has no report.
func (c *Client) GetReport(ctx context.Context, purchaseID int64) (*domain.TestReport, error) {
	var out domain.TestReport
	path := fmt.Sprintf("/orders/purchases/%d/report/", purchaseID)
	if err := c.do(ctx, "Client.GetReport", http.MethodGet, path, nil, &out); err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.ErrNotFound{Resource: "report", ID: fmt.Sprint(purchaseID)}
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveReport(ctx context.Context, purchaseID int64, r *domain.TestReport) (*domain.TestReport, error) {
	var out domain.TestReport
	path := fmt.Sprintf("/orders/purchases/%d/report/", purchaseID)
	if err := c.do(ctx, "Client.SaveReport", http.MethodPatch, path, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================
// Transport
// ============================================================

// do sends one JSON request. Only GETs are retried; 4xx answers are never
// retried. 204 leaves out untouched.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
	}

	cfg := c.cfg.ForMethod(method)

	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.bulkhead.Do(ctx, func() error {
			return resilience.RetryWithBackoff(ctx, cfg, func() error {
				status, err := c.roundTrip(ctx, method, path, payload, out)
				if err != nil && status >= 400 && status < 500 {
					return resilience.Permanent(err)
				}
				return err
			})
		})
	})
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: serviceName}
	}
	var apiErr *domain.ErrAPI
	if errors.As(err, &apiErr) {
		c.logger.Debug("backend rejected request",
			zap.String("op", op),
			zap.Int("status", apiErr.Status),
			zap.String("kind", string(apiErr.Kind)),
		)
		return apiErr
	}
	return &domain.ErrExternalService{Service: serviceName, Err: err}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, out any) (int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeError(resp, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}
