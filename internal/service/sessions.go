package service

import (
	"fmt"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/observability"
	"github.com/boddenberg/influencer-bfa-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sessions issues session tokens and keeps one App per session.
// The token is an HS256 JWT whose subject is the session id.
type Sessions struct {
	store   port.Cache[*App]
	backend port.Backend
	secret  []byte
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
}

// SessionClaims are the claims of a session token.
type SessionClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// NewSessions creates a session manager backed by store.
func NewSessions(store port.Cache[*App], backend port.Backend, secret string, ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Sessions {
	return &Sessions{
		store:   store,
		backend: backend,
		secret:  []byte(secret),
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// New returns a fresh anonymous App that is not stored yet.
func (s *Sessions) New() *App {
	return NewApp(s.backend, s.metrics, s.logger)
}

// Save stores app under a new session id and returns its token.
func (s *Sessions) Save(app *App) (string, error) {
	sid := uuid.NewString()
	token, err := s.sign(sid)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	s.store.Set(sid, app)
	s.metrics.SetActiveSessions(s.store.Len())
	s.logger.Debug("session created", zap.String("sid", sid))
	return token, nil
}

// Lookup validates a token and returns its App.
func (s *Sessions) Lookup(token string) (*App, error) {
	claims, err := s.validate(token)
	if err != nil {
		return nil, err
	}
	app, ok := s.store.Get(claims.Subject)
	if !ok {
		s.metrics.IncrCacheMiss("session")
		return nil, &domain.ErrUnauthorized{Message: "session expired"}
	}
	s.metrics.IncrCacheHit("session")
	return app, nil
}

// End drops the session behind token. Unknown tokens are ignored.
func (s *Sessions) End(token string) {
	claims, err := s.validate(token)
	if err != nil {
		return
	}
	s.store.Delete(claims.Subject)
	s.metrics.SetActiveSessions(s.store.Len())
}

// Active returns the number of live sessions.
func (s *Sessions) Active() int {
	return s.store.Len()
}

func (s *Sessions) sign(sid string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Type: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "influencer-bff",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Sessions) validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired session token"}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Type != "session" || claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid session token"}
	}
	return claims, nil
}
