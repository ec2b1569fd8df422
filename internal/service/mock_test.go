package service_test

import (
	"context"
	"sync"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/observability"
	"github.com/boddenberg/influencer-bfa-go/internal/port"
	"github.com/boddenberg/influencer-bfa-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

// mockBackend is a scriptable port.Backend. Nil funcs return zero values.
type mockBackend struct {
	mu    sync.Mutex
	calls map[string]int
	token string

	register      func(*domain.RegisterRequest) (*domain.AuthResponse, error)
	login         func(*domain.LoginRequest) (*domain.AuthResponse, error)
	getProfile    func() (*domain.Profile, error)
	updateProfile func(*domain.ProfileUpdate) (*domain.Profile, error)
	participation func(bool) (*domain.Profile, error)
	listOrders    func(context.Context) ([]domain.Order, error)
	listPurchases func(context.Context) ([]domain.Purchase, error)
	decide        func(int64, *domain.DecisionRequest) (*domain.DecisionResponse, error)
	getReport     func(int64) (*domain.TestReport, error)
	saveReport    func(int64, *domain.TestReport) (*domain.TestReport, error)
}

func newMockBackend() *mockBackend {
	return &mockBackend{calls: make(map[string]int)}
}

func (m *mockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *mockBackend) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockBackend) WithToken(token string) port.Backend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return m
}

func (m *mockBackend) Register(_ context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	m.record("Register")
	if m.register == nil {
		return &domain.AuthResponse{Token: "tok", User: &domain.User{PhoneNumber: req.PhoneNumber}}, nil
	}
	return m.register(req)
}

func (m *mockBackend) Login(_ context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	m.record("Login")
	if m.login == nil {
		return &domain.AuthResponse{Token: "tok", User: &domain.User{PhoneNumber: req.PhoneNumber}}, nil
	}
	return m.login(req)
}

func (m *mockBackend) GetProfile(_ context.Context) (*domain.Profile, error) {
	m.record("GetProfile")
	if m.getProfile == nil {
		return &domain.Profile{}, nil
	}
	return m.getProfile()
}

func (m *mockBackend) UpdateProfile(_ context.Context, u *domain.ProfileUpdate) (*domain.Profile, error) {
	m.record("UpdateProfile")
	if m.updateProfile == nil {
		return &domain.Profile{ProfileFields: *u}, nil
	}
	return m.updateProfile(u)
}

func (m *mockBackend) SetParticipation(_ context.Context, on bool) (*domain.Profile, error) {
	m.record("SetParticipation")
	if m.participation == nil {
		return &domain.Profile{IsCompleted: true, IsParticipating: on}, nil
	}
	return m.participation(on)
}

func (m *mockBackend) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.record("ListOrders")
	if m.listOrders == nil {
		return []domain.Order{}, nil
	}
	return m.listOrders(ctx)
}

func (m *mockBackend) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	m.record("ListPurchases")
	if m.listPurchases == nil {
		return []domain.Purchase{}, nil
	}
	return m.listPurchases(ctx)
}

func (m *mockBackend) Decide(_ context.Context, id int64, req *domain.DecisionRequest) (*domain.DecisionResponse, error) {
	m.record("Decide")
	if m.decide == nil {
		return &domain.DecisionResponse{}, nil
	}
	return m.decide(id, req)
}

func (m *mockBackend) GetReport(_ context.Context, id int64) (*domain.TestReport, error) {
	m.record("GetReport")
	if m.getReport == nil {
		return nil, &domain.ErrNotFound{Resource: "report"}
	}
	return m.getReport(id)
}

func (m *mockBackend) SaveReport(_ context.Context, id int64, r *domain.TestReport) (*domain.TestReport, error) {
	m.record("SaveReport")
	if m.saveReport == nil {
		return r, nil
	}
	return m.saveReport(id, r)
}

func newApp(b *mockBackend) *service.App {
	return service.NewApp(b, observability.NewMetrics(), zap.NewNop())
}

// signedIn returns an App that already went through login.
func signedIn(t interface{ Fatalf(string, ...any) }, b *mockBackend) *service.App {
	app := newApp(b)
	if err := app.Login(context.Background(), &domain.LoginRequest{PhoneNumber: "+1000", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	app.Notices()
	return app
}

func hasNotice(notices []domain.Notice, level domain.NoticeLevel, msg string) bool {
	for _, n := range notices {
		if n.Level == level && n.Message == msg {
			return true
		}
	}
	return false
}
