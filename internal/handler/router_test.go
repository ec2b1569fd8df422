package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/handler"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/cache"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/observability"
	"github.com/boddenberg/influencer-bfa-go/internal/port"
	"github.com/boddenberg/influencer-bfa-go/internal/service"

	"go.uber.org/zap"
)

// --- Fake backend ---

type fakeBackend struct {
	loginErr error
}

func (f *fakeBackend) WithToken(string) port.Backend { return f }

func (f *fakeBackend) Register(_ context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	return &domain.AuthResponse{Token: "upstream", User: &domain.User{ID: 1, PhoneNumber: req.PhoneNumber}}, nil
}

func (f *fakeBackend) Login(_ context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.AuthResponse{Token: "upstream", User: &domain.User{ID: 1, PhoneNumber: req.PhoneNumber}}, nil
}

func (f *fakeBackend) GetProfile(context.Context) (*domain.Profile, error) {
	return &domain.Profile{ProfileFields: domain.ProfileFields{FullName: "Ann Lee"}}, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, u *domain.ProfileUpdate) (*domain.Profile, error) {
	return &domain.Profile{ProfileFields: *u}, nil
}

func (f *fakeBackend) SetParticipation(_ context.Context, on bool) (*domain.Profile, error) {
	return &domain.Profile{IsParticipating: on}, nil
}

func (f *fakeBackend) ListOrders(context.Context) ([]domain.Order, error) {
	return []domain.Order{{ID: 7, Article: "SKU-7"}}, nil
}

func (f *fakeBackend) ListPurchases(context.Context) ([]domain.Purchase, error) {
	return []domain.Purchase{{ID: 70, Article: "SKU-7", Status: domain.PurchaseStatusPending}}, nil
}

func (f *fakeBackend) Decide(_ context.Context, orderID int64, req *domain.DecisionRequest) (*domain.DecisionResponse, error) {
	if req.Action == domain.DecisionApprove {
		return &domain.DecisionResponse{PurchaseID: orderID * 10}, nil
	}
	return &domain.DecisionResponse{Detail: "rejected"}, nil
}

func (f *fakeBackend) GetReport(context.Context, int64) (*domain.TestReport, error) {
	return nil, &domain.ErrNotFound{Resource: "report"}
}

func (f *fakeBackend) SaveReport(_ context.Context, id int64, r *domain.TestReport) (*domain.TestReport, error) {
	saved := *r
	saved.PurchaseID = id
	return &saved, nil
}

// --- Helpers ---

func newRouter(t *testing.T, backend port.Backend) (http.Handler, *service.Sessions) {
	t.Helper()
	store := cache.New[*service.App](time.Hour)
	t.Cleanup(store.Close)
	metrics := observability.NewMetrics()
	sessions := service.NewSessions(store, backend, "test-secret", time.Hour, metrics, zap.NewNop())
	return handler.NewRouter(sessions, metrics, zap.NewNop(), []string{"http://localhost:3000"}), sessions
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/auth/login", "", `{"phone_number":"+1000","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string         `json:"token"`
		State *service.State `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected session token")
	}
	return resp.Token
}

// --- Tests ---

func TestHealthz(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})

	rec := do(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})

	rec := do(t, router, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})

	rec := do(t, router, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestSession_MissingToken(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})

	rec := do(t, router, http.MethodGet, "/v1/state", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSession_InvalidToken(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})

	rec := do(t, router, http.MethodGet, "/v1/state", "not-a-jwt", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestLogin_StateAfterward(t *testing.T) {
	router, sessions := newRouter(t, &fakeBackend{})
	token := login(t, router)

	if sessions.Active() != 1 {
		t.Errorf("expected 1 active session, got %d", sessions.Active())
	}

	rec := do(t, router, http.MethodGet, "/v1/state", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st service.State
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.View.Authenticated {
		t.Error("expected authenticated view")
	}
	if len(st.Orders) != 1 || st.Orders[0].Article != "SKU-7" {
		t.Errorf("expected initial orders to be loaded, got %+v", st.Orders)
	}
	if st.ProfileForm == nil {
		t.Error("expected profile form in state")
	}
}

func TestLogin_UpstreamValidationError(t *testing.T) {
	router, sessions := newRouter(t, &fakeBackend{
		loginErr: &domain.ErrAPI{Status: 400, Detail: "Invalid credentials", Kind: domain.KindValidation},
	})

	rec := do(t, router, http.MethodPost, "/v1/auth/login", "", `{"phone_number":"+1000","password":"bad"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Errorf("expected upstream detail in body, got %s", rec.Body.String())
	}
	if sessions.Active() != 0 {
		t.Errorf("failed login must not create a session, got %d", sessions.Active())
	}
}

func TestLogin_InvalidBody(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})

	rec := do(t, router, http.MethodPost, "/v1/auth/login", "", `{"phone_number":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuthView_Anonymous(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})

	rec := do(t, router, http.MethodGet, "/v1/auth/view?mode=login", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		View    domain.View     `json:"view"`
		Notices []domain.Notice `json:"notices"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.View.ShowLogin || resp.View.ShowRegister {
		t.Errorf("expected login form only, got %+v", resp.View)
	}
	if len(resp.Notices) != 1 || resp.Notices[0].Message != "Login form opened" {
		t.Errorf("unexpected notices: %+v", resp.Notices)
	}
}

func TestLogout_EndsSession(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	rec := do(t, router, http.MethodPost, "/v1/auth/logout", token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/v1/state", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestProfileStep_RefusedWhenIncomplete(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	do(t, router, http.MethodPut, "/v1/profile/form/fields", token, `{"full_name":""}`)
	rec := do(t, router, http.MethodPost, "/v1/profile/form/step", token, `{"step":2}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Step   int                 `json:"step"`
		Fields map[string][]string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Step != 1 || len(body.Fields["missing"]) == 0 {
		t.Errorf("expected step 1 with missing fields, got %+v", body)
	}
}

func TestProfileRows_AddAndRemove(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	rec := do(t, router, http.MethodPost, "/v1/profile/form/rows/social_links", token, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Row-Index") != "1" {
		t.Errorf("expected new row index 1, got %q", rec.Header().Get("X-Row-Index"))
	}

	rec = do(t, router, http.MethodDelete, "/v1/profile/form/rows/social_links/x", token, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric index, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodDelete, "/v1/profile/form/rows/social_links/1", token, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDecision_InvalidOrderID(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	rec := do(t, router, http.MethodPost, "/v1/orders/abc/decision", token, `{"action":"approve"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDecision_InvalidAction(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	rec := do(t, router, http.MethodPost, "/v1/orders/7/decision", token, `{"action":"maybe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDecision_ApproveOpensReport(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	rec := do(t, router, http.MethodPost, "/v1/orders/7/decision", token,
		`{"action":"approve","external_id":" WB-1 ","pickup_point":"Main st"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Decision domain.DecisionResponse `json:"decision"`
		State    service.State           `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Decision.PurchaseID != 70 {
		t.Errorf("expected purchase 70, got %d", resp.Decision.PurchaseID)
	}
	if !resp.State.Report.Open || resp.State.Report.PurchaseID != 70 {
		t.Errorf("expected report sub-form open for 70, got %+v", resp.State.Report)
	}
}

func TestReportSubmit_Closed(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	rec := do(t, router, http.MethodPost, "/v1/report/submit", token, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReportOpen_InvalidID(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	rec := do(t, router, http.MethodPost, "/v1/reports/0/open", token, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestExportPurchases(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})
	token := login(t, router)

	rec := do(t, router, http.MethodGet, "/v1/purchases/export", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected a workbook body")
	}
}

func TestMetricsSummary(t *testing.T) {
	router, _ := newRouter(t, &fakeBackend{})

	rec := do(t, router, http.MethodGet, "/v1/metrics/summary", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
