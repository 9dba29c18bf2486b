// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the calculator core
// from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
)

// Engine is the external tax/benefit microsimulation service.
type Engine interface {
	ComputeAmount(ctx context.Context, req *domain.AmountRequest) (*domain.AmountResult, error)
	ComputeTarget(ctx context.Context, req *domain.TargetRequest) (*domain.TargetResult, error)
	ComputeUK(ctx context.Context, req *domain.UKRequest) (*domain.UKResult, error)
}

// HealthChecker probes an external dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
