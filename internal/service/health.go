package service

import (
	"context"
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/port"
)

// HealthService probes the dependencies of the BFA for GET /healthz.
type HealthService struct {
	engine  port.HealthChecker
	timeout time.Duration
}

// NewHealthService creates a HealthService. A nil engine is skipped.
func NewHealthService(engine port.HealthChecker, timeout time.Duration) *HealthService {
	return &HealthService{engine: engine, timeout: timeout}
}

// Check reports the BFA itself and the engine. An unreachable engine marks the
// service degraded, never unhealthy.
func (s *HealthService) Check(ctx context.Context) domain.HealthStatus {
	now := time.Now().Format(time.RFC3339)
	services := []domain.ServiceHealth{
		{Name: "givecalc-bfa", Status: "healthy", LastChecked: now},
	}

	if s != nil && s.engine != nil {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		start := time.Now()
		err := s.engine.Ping(ctx)
		h := domain.ServiceHealth{
			Name:        "engine",
			Status:      "healthy",
			LatencyMs:   time.Since(start).Milliseconds(),
			LastChecked: now,
		}
		if err != nil {
			h.Status = "degraded"
			h.Error = err.Error()
		}
		services = append(services, h)
	}

	overall := "healthy"
	for _, svc := range services {
		if svc.Status != "healthy" {
			overall = svc.Status
		}
	}
	return domain.HealthStatus{Status: overall, Services: services}
}
