package observability

import (
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Scopes are the calculation kinds used as metric labels.
var Scopes = []string{"us/amount", "us/target", "uk"}

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	superseded      *prometheus.CounterVec
	calculations    *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "givecalc_engine_request_duration_seconds",
				Help:    "Duration of engine calls by calculation scope.",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40},
			},
			[]string{"scope"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "givecalc_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "givecalc_result_cache_hits_total",
				Help: "Calculations served from the session result cache.",
			},
			[]string{"scope"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "givecalc_result_cache_misses_total",
				Help: "Calculations that required an engine call.",
			},
			[]string{"scope"},
		),
		superseded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "givecalc_superseded_results_total",
				Help: "Engine results that arrived after newer input and were not displayed.",
			},
			[]string{"scope"},
		),
		calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "givecalc_calculations_total",
				Help: "Calculate actions by scope and outcome.",
			},
			[]string{"scope", "status"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "givecalc_active_sessions",
				Help: "Browser sessions currently held in memory.",
			},
		),
	}
}

// RecordEngineDuration records the duration of an engine call.
func (m *Metrics) RecordEngineDuration(scope string, d time.Duration) {
	m.requestDuration.WithLabelValues(scope).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(scope string) {
	m.cacheHits.WithLabelValues(scope).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(scope string) {
	m.cacheMisses.WithLabelValues(scope).Inc()
}

// IncrSuperseded counts a result dropped by last-fingerprint-wins.
func (m *Metrics) IncrSuperseded(scope string) {
	m.superseded.WithLabelValues(scope).Inc()
}

// IncrCalculation counts a calculate action with status success, cached or error.
func (m *Metrics) IncrCalculation(scope, status string) {
	m.calculations.WithLabelValues(scope, status).Inc()
}

// SessionStarted increments the active session gauge.
func (m *Metrics) SessionStarted() { m.activeSessions.Inc() }

// SessionEnded decrements the active session gauge.
func (m *Metrics) SessionEnded() { m.activeSessions.Dec() }

// GetCalculatorSnapshot returns a snapshot of calculator metrics suitable for
// the GET /v1/metrics/calculator endpoint.
func (m *Metrics) GetCalculatorSnapshot() *domain.CalculatorMetrics {
	var hits, misses, superseded float64
	byKind := make(map[string]int64, len(Scopes))
	for _, scope := range Scopes {
		hits += getCounterValue(m.cacheHits.WithLabelValues(scope))
		misses += getCounterValue(m.cacheMisses.WithLabelValues(scope))
		superseded += getCounterValue(m.superseded.WithLabelValues(scope))
		byKind[scope] = int64(getCounterValue(m.calculations.WithLabelValues(scope, "success")) +
			getCounterValue(m.calculations.WithLabelValues(scope, "cached")))
	}

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.CalculatorMetrics{
		CacheHits:          int64(hits),
		CacheMisses:        int64(misses),
		CacheHitRate:       hitRate,
		EngineErrors:       int64(getCounterValue(m.externalErrors.WithLabelValues("engine"))),
		SupersededResults:  int64(superseded),
		ActiveSessions:     int64(getGaugeValue(m.activeSessions)),
		CalculationsByKind: byKind,
		Period:             "all_time",
	}
}

// getCounterValue extracts the current float64 value from a counter.
func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	if m.Gauge != nil && m.Gauge.Value != nil {
		return *m.Gauge.Value
	}
	return 0
}
