package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status         string          `json:"status"` // healthy, degraded, unhealthy
	Services       []ServiceHealth `json:"services"`
	ActiveSessions int             `json:"activeSessions"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// MetricsSnapshot is returned by GET /v1/metrics/summary.
type MetricsSnapshot struct {
	Approvals           int64   `json:"approvals"`
	Rejections          int64   `json:"rejections"`
	ReportsSubmitted    int64   `json:"reportsSubmitted"`
	StepRefusals        int64   `json:"stepRefusals"`
	UpstreamErrors      int64   `json:"upstreamErrors"`
	SessionCacheHitRate float64 `json:"sessionCacheHitRate"`
	Period              string  `json:"period"`
}
