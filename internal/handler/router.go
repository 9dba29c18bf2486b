package handler

import (
	"net/http"

	"github.com/boddenberg/givecalc-bfa-go/internal/infra/observability"
	"github.com/boddenberg/givecalc-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *service.CalculatorService, health *service.HealthService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(health))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		// Reference data
		r.Get("/states", statesHandler())
		r.Get("/uk/regions", ukRegionsHandler())
		r.Get("/tax-years", taxYearsHandler())

		r.Get("/metrics/calculator", calculatorMetricsHandler(svc))

		// Sessions
		r.Post("/sessions", createSessionHandler(svc, logger))
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Use(SessionAuthMiddleware(svc, logger))

			r.Get("/", getSessionHandler(svc, logger))
			r.Delete("/", endSessionHandler(svc, logger))
			r.Put("/jurisdiction", setJurisdictionHandler(svc, logger))
			r.Put("/us/form", updateUSFormHandler(svc, logger))
			r.Put("/uk/form", updateUKFormHandler(svc, logger))
			r.Delete("/error", dismissErrorHandler(svc, logger))

			// Wizard
			r.Post("/{jurisdiction}/{section}/confirm", confirmHandler(svc, logger))
			r.Post("/{jurisdiction}/{section}/edit", editHandler(svc, logger))
			r.Post("/{jurisdiction}/submit", submitHandler(svc, logger))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(health *service.HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, health.Check(r.Context()))
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func calculatorMetricsHandler(svc *service.CalculatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.GetCalculatorMetrics(r.Context()))
	}
}
