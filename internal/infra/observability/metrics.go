package observability

import (
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	upstreamErrors    *prometheus.CounterVec
	decisions         *prometheus.CounterVec
	stepRefusals      *prometheus.CounterVec
	reportsSubmitted  prometheus.Counter
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	activeSessions    prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bff_operation_duration_seconds",
				Help:    "Duration of application operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_upstream_errors_total",
				Help: "Total failed backend calls by operation.",
			},
			[]string{"operation"},
		),
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_order_decisions_total",
				Help: "Accepted order decisions by action.",
			},
			[]string{"action"},
		),
		stepRefusals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_form_refusals_total",
				Help: "Forward navigations or submissions refused for empty required fields.",
			},
			[]string{"form"},
		),
		reportsSubmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bff_reports_submitted_total",
				Help: "Test reports saved upstream.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bff_active_sessions",
				Help: "Sessions currently held in memory.",
			},
		),
	}
}

// RecordOperation records the duration of an operation.
func (m *Metrics) RecordOperation(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(operation string) {
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

// IncrDecision counts an accepted decision.
func (m *Metrics) IncrDecision(action domain.DecisionAction) {
	m.decisions.WithLabelValues(string(action)).Inc()
}

// IncrStepRefusal counts a refused step change or submission.
func (m *Metrics) IncrStepRefusal(form string) {
	m.stepRefusals.WithLabelValues(form).Inc()
}

// IncrReportSubmitted counts a saved report.
func (m *Metrics) IncrReportSubmitted() {
	m.reportsSubmitted.Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// SetActiveSessions reports the session store size.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// GetSnapshot returns cumulative counters for GET /v1/metrics/summary.
func (m *Metrics) GetSnapshot() *domain.MetricsSnapshot {
	hits := getCounterValue(m.cacheHits, "session")
	misses := getCounterValue(m.cacheMisses, "session")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.MetricsSnapshot{
		Approvals:           int64(getCounterValue(m.decisions, string(domain.DecisionApprove))),
		Rejections:          int64(getCounterValue(m.decisions, string(domain.DecisionReject))),
		ReportsSubmitted:    int64(metricValue(m.reportsSubmitted)),
		StepRefusals:        int64(getCounterValue(m.stepRefusals, "profile") + getCounterValue(m.stepRefusals, "report")),
		UpstreamErrors:      int64(sumCounterVec(m.upstreamErrors)),
		SessionCacheHitRate: hitRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return metricValue(cv.WithLabelValues(label))
}

func metricValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds up every label combination of cv.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err == nil && m.Counter != nil {
			total += m.Counter.GetValue()
		}
	}
	return total
}
