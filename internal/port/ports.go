// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from the REST backend client and the session store.
package port

import (
	"context"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
)

// AuthAPI exchanges credentials for an API token.
type AuthAPI interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
}

// ProfileAPI reads and updates the signed-in user's profile.
type ProfileAPI interface {
	GetProfile(ctx context.Context) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, update *domain.ProfileUpdate) (*domain.Profile, error)
	SetParticipation(ctx context.Context, participating bool) (*domain.Profile, error)
}

// OrdersAPI lists orders and purchases and records decisions.
type OrdersAPI interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListPurchases(ctx context.Context) ([]domain.Purchase, error)
	Decide(ctx context.Context, orderID int64, req *domain.DecisionRequest) (*domain.DecisionResponse, error)
}

// ReportsAPI reads and upserts test reports. GetReport returns an error
// satisfying domain.IsNotFound when no report exists yet.
type ReportsAPI interface {
	GetReport(ctx context.Context, purchaseID int64) (*domain.TestReport, error)
	SaveReport(ctx context.Context, purchaseID int64, r *domain.TestReport) (*domain.TestReport, error)
}

// Backend is the full upstream surface. WithToken returns a view of the
// same backend that authenticates as the given token; an empty token
// sends anonymous requests.
type Backend interface {
	AuthAPI
	ProfileAPI
	OrdersAPI
	ReportsAPI
	WithToken(token string) Backend
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Len() int
}
