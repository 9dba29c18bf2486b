package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
	Error       string `json:"error,omitempty"`
}

// CalculatorMetrics is returned by GET /v1/metrics/calculator.
type CalculatorMetrics struct {
	CacheHits          int64            `json:"cacheHits"`
	CacheMisses        int64            `json:"cacheMisses"`
	CacheHitRate       float64          `json:"cacheHitRate"`
	EngineErrors       int64            `json:"engineErrors"`
	SupersededResults  int64            `json:"supersededResults"`
	ActiveSessions     int64            `json:"activeSessions"`
	CalculationsByKind map[string]int64 `json:"calculationsByKind"`
	Period             string           `json:"period"`
}
