// Package engine is the HTTP client of the external tax microsimulation engine.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/resilience"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("engine")

const (
	pathAmount = "/api/calculate"
	pathTarget = "/api/target-donation"
	pathUK     = "/api/uk/calculate"
	pathHealth = "/api/health"
)

// Client calls the microsimulation engine with retry, circuit breaker, bulkhead
// and tracing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// NewClient creates a new engine Client. A nil cb gets a breaker that ignores
// request validation failures.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	if cb == nil {
		cb = resilience.NewCircuitBreaker(resilience.BreakerSettings{Name: "engine", IsSuccessful: IsSuccessful})
	}
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 16
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(maxConcurrency),
		cfg:        cfg,
	}
}

// IsSuccessful tells the circuit breaker which outcomes are not engine faults:
// rejected input is the caller's problem, not an outage.
func IsSuccessful(err error) bool {
	var validation *domain.ErrValidation
	return err == nil || errors.As(err, &validation)
}

// ComputeAmount runs the US fixed-donation calculation.
func (c *Client) ComputeAmount(ctx context.Context, req *domain.AmountRequest) (*domain.AmountResult, error) {
	return post[domain.AmountResult](ctx, c, "compute-amount", pathAmount, req)
}

// ComputeTarget runs the US target-reduction calculation.
func (c *Client) ComputeTarget(ctx context.Context, req *domain.TargetRequest) (*domain.TargetResult, error) {
	return post[domain.TargetResult](ctx, c, "compute-target", pathTarget, req)
}

// ComputeUK runs the UK Gift Aid calculation.
func (c *Client) ComputeUK(ctx context.Context, req *domain.UKRequest) (*domain.UKResult, error) {
	return post[domain.UKResult](ctx, c, "compute-uk", pathUK, req)
}

// Ping checks the engine health endpoint once, without retry.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHealth, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ErrExternalService{Service: "engine", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &domain.ErrExternalService{Service: "engine", Err: fmt.Errorf("health returned status %d", resp.StatusCode)}
	}
	return nil
}

// post sends in to path and decodes the answer into a new T. Every attempt
// decodes into its own value, so a response that fails halfway through
// decoding leaves nothing behind for the retry that follows.
func post[T any](ctx context.Context, c *Client, op, path string, in any) (*T, error) {
	ctx, span := tracer.Start(ctx, "EngineClient."+op)
	defer span.End()
	span.SetAttributes(attribute.String("engine.operation", op))

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: op}
	}
	defer c.bulkhead.Release()

	var out *T
	attempts := 0
	_, err = c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func(attempt int) error {
			attempts = attempt + 1
			var v T
			if err := c.do(ctx, op, path, body, &v); err != nil {
				return err
			}
			out = &v
			return nil
		})
	})
	span.SetAttributes(attribute.Int("engine.attempts", attempts))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, classify(op, err)
	}
	return out, nil
}

// classify maps transport failures onto the domain error taxonomy.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: "engine"}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrExternalService{Service: "engine", Err: &domain.ErrTimeout{Operation: op}}
	}
	return &domain.ErrExternalService{Service: "engine", Err: err}
}

// readDetail pulls the human-readable part of an engine error body.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4<<10))
	if err != nil || len(raw) == 0 {
		return "no detail"
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(payload.Detail); err == nil {
			return string(b)
		}
	}
	return strings.TrimSpace(string(raw))
}
