package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/observability"
	"github.com/boddenberg/influencer-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Every /v1 route except register, login and the auth view requires a
// session token issued by register or login.
func NewRouter(sessions *service.Sessions, metrics *observability.Metrics, logger *zap.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Content-Disposition", "X-Row-Index"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(sessions))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/summary", metricsSummaryHandler(metrics))

		// =============================================
		// 1. Authentication (public)
		// =============================================
		r.Post("/auth/register", authRegisterHandler(sessions, logger))
		r.Post("/auth/login", authLoginHandler(sessions, logger))
		r.Get("/auth/view", authViewHandler(sessions, logger))

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(sessions, logger))

			r.Post("/auth/logout", authLogoutHandler(sessions, logger))
			r.Get("/state", stateHandler())

			// =============================================
			// 2. Profile questionnaire
			// =============================================
			r.Post("/profile/reload", profileReloadHandler(logger))
			r.Put("/profile/form/fields", profileFieldsHandler(logger))
			r.Post("/profile/form/rows/{field}", profileAddRowHandler(logger))
			r.Delete("/profile/form/rows/{field}/{index}", profileRemoveRowHandler(logger))
			r.Post("/profile/form/step", profileStepHandler(logger))
			r.Post("/profile/form/submit", profileSubmitHandler(logger))
			r.Post("/profile/participation", participationHandler(logger))

			// =============================================
			// 3. Orders & purchases
			// =============================================
			r.Get("/orders", listOrdersHandler(logger))
			r.Post("/orders/{orderId}/decision", decisionHandler(logger))
			r.Get("/purchases", listPurchasesHandler())
			r.Get("/purchases/export", exportPurchasesHandler(logger))

			// =============================================
			// 4. Test report
			// =============================================
			r.Post("/reports/{purchaseId}/open", openReportHandler(logger))
			r.Put("/report/fields", reportFieldsHandler(logger))
			r.Post("/report/proof-files", proofFileHandler(logger))
			r.Post("/report/submit", submitReportHandler(logger))
			r.Post("/report/close", closeReportHandler())
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(sessions *service.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		status := domain.HealthStatus{
			Status: "healthy",
			Services: []domain.ServiceHealth{
				{Name: "bff-api", Status: "healthy", LastChecked: now},
			},
		}
		if sessions != nil {
			status.ActiveSessions = sessions.Active()
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSnapshot())
	}
}
