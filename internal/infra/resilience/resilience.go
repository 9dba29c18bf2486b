// Package resilience guards engine calls: retry with capped exponential
// backoff, a circuit breaker and a bulkhead.
package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the retry and concurrency limits of one downstream.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	// MaxBackoff caps a single wait. Zero means uncapped.
	MaxBackoff     time.Duration
	MaxConcurrency int
}

// Delay is the wait before retry number attempt+1, without jitter.
func (c Config) Delay(attempt int) time.Duration {
	d := c.InitialBackoff
	for i := 0; i < attempt; i++ {
		d *= 2
		if c.MaxBackoff > 0 && d >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	if c.MaxBackoff > 0 && d > c.MaxBackoff {
		return c.MaxBackoff
	}
	return d
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so RetryWithBackoff returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryWithBackoff calls fn with the zero-based attempt number until it
// succeeds, returns a Permanent error, or MaxRetries retries are spent. Waits
// grow from Delay by up to half again in jitter. The Permanent marker is
// stripped from the returned error.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		var p *permanentError
		if errors.As(lastErr, &p) {
			return p.err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := cfg.Delay(attempt)
		if half := int64(wait / 2); half > 0 {
			wait += time.Duration(rand.Int63n(half))
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// BreakerSettings configures NewCircuitBreaker.
type BreakerSettings struct {
	Name string
	// IsSuccessful decides which errors do not count as failures. Nil counts
	// every error.
	IsSuccessful func(err error) bool
	// OnStateChange is called on every transition, e.g. to log it.
	OnStateChange func(name string, from, to gobreaker.State)
}

// NewCircuitBreaker trips after at least 5 requests in a 30s window fail at a
// 60% ratio and probes again after 10s with up to 3 requests.
func NewCircuitBreaker(s BreakerSettings) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful:  s.IsSuccessful,
		OnStateChange: s.OnStateChange,
	})
}

// Bulkhead caps the number of engine calls running at once.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with maxConcurrency slots, at least one.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot is free or ctx is done.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}

// InUse returns the number of taken slots.
func (b *Bulkhead) InUse() int {
	return len(b.sem)
}
