// Package service holds the per-session application state of the BFF:
// authentication, the profile questionnaire, orders and purchases, the
// decision flow and the test report sub-form.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/observability"
	"github.com/boddenberg/influencer-bfa-go/internal/port"
	"github.com/boddenberg/influencer-bfa-go/internal/profile"
	"github.com/boddenberg/influencer-bfa-go/internal/report"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/app")

// backgroundTimeout bounds list refreshes that outlive the request that
// started them.
const backgroundTimeout = 30 * time.Second

// App is the state of one browser session. All methods are safe for
// concurrent use: state is guarded by mu and network calls run outside it.
type App struct {
	mu sync.Mutex

	base port.Backend // anonymous
	api  port.Backend // nil until authenticated

	session   domain.Session
	authMode  domain.AuthMode
	profile   *domain.Profile
	orders    []domain.Order
	purchases []domain.Purchase

	form   *profile.Form
	report *report.Form

	notices []domain.Notice
	gen     generations

	bg      sync.WaitGroup
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// generations orders completions of concurrent loads per resource. A
// response is applied only when it is newer than the last one applied.
type generations struct {
	profile, orders, purchases resourceGen
}

// invalidate discards every load still in flight.
func (g *generations) invalidate() {
	for _, r := range []*resourceGen{&g.profile, &g.orders, &g.purchases} {
		r.applied = r.issued
	}
}

type resourceGen struct {
	issued  uint64
	applied uint64
}

func (g *resourceGen) next() uint64 {
	g.issued++
	return g.issued
}

// accept reports whether completion seq is still current and records it.
func (g *resourceGen) accept(seq uint64) bool {
	if seq <= g.applied {
		return false
	}
	g.applied = seq
	return true
}

// NewApp creates an anonymous session state showing the registration form.
func NewApp(backend port.Backend, metrics *observability.Metrics, logger *zap.Logger) *App {
	return &App{
		base:     backend,
		authMode: domain.AuthModeRegister,
		form:     profile.NewForm(),
		report:   report.NewForm(),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// State is the full renderable snapshot of a session.
type State struct {
	View        domain.View       `json:"view"`
	User        *domain.User      `json:"user,omitempty"`
	Profile     *domain.Profile   `json:"profile,omitempty"`
	ProfileForm *profile.View     `json:"profile_form,omitempty"`
	Orders      []domain.Order    `json:"orders"`
	Purchases   []domain.Purchase `json:"purchases"`
	Report      report.View       `json:"report"`
	Notices     []domain.Notice   `json:"notices"`
}

// Snapshot renders the session and drains queued notices.
func (a *App) Snapshot() *State {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := &State{
		View:      a.viewLocked(),
		User:      a.session.User,
		Profile:   a.profile,
		Orders:    append([]domain.Order{}, a.orders...),
		Purchases: append([]domain.Purchase{}, a.purchases...),
		Report:    a.report.Render(),
		Notices:   a.drainLocked(),
	}
	if a.session.Authenticated() {
		pv := a.form.Render(a.profile)
		st.ProfileForm = &pv
	}
	return st
}

// Notices returns and clears queued notices.
func (a *App) Notices() []domain.Notice {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.drainLocked()
}

// Wait blocks until background refreshes started by this session finish.
func (a *App) Wait() {
	a.bg.Wait()
}

// Authenticated reports whether the session holds an API token.
func (a *App) Authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Authenticated()
}

func (a *App) notify(level domain.NoticeLevel, format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notifyLocked(level, format, args...)
}

func (a *App) notifyLocked(level domain.NoticeLevel, format string, args ...any) {
	a.notices = append(a.notices, domain.Notice{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		At:      a.now(),
	})
}

func (a *App) drainLocked() []domain.Notice {
	out := a.notices
	a.notices = nil
	if out == nil {
		out = []domain.Notice{}
	}
	return out
}

// client returns the authenticated backend or ErrUnauthorized.
func (a *App) client() (port.Backend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.api == nil {
		return nil, &domain.ErrUnauthorized{Message: "sign in first"}
	}
	return a.api, nil
}

// observe records latency and, on failure, an upstream error.
func (a *App) observe(op string, start time.Time, err error) {
	a.metrics.RecordOperation(op, time.Since(start))
	if err != nil {
		a.metrics.IncrUpstreamError(op)
	}
}

// goBackground runs fn detached from the caller's cancellation and tracks
// it for Wait.
func (a *App) goBackground(ctx context.Context, fn func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		defer cancel()
		fn(ctx)
	}()
}
