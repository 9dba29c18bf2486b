package calc

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/cache"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/observability"
	"github.com/boddenberg/givecalc-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("calc")

// Outcome describes how a Calculate call was resolved.
type Outcome struct {
	Fingerprint Fingerprint
	Entry       cache.Entry
	// Cached is true when no engine call was made.
	Cached bool
	// Applied is false when newer input superseded the result before it arrived.
	// The result is cached either way.
	Applied bool
}

// Dispatcher resolves a form to results, from the session cache when possible
// and from the engine otherwise.
type Dispatcher struct {
	engine  port.Engine
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(engine port.Engine, metrics *observability.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{engine: engine, metrics: metrics, logger: logger}
}

// Job is a calculation staged against a State. Staging picks the fingerprint
// and updates the display, so it must run under the same lock that guards
// form edits; Run may then happen without it.
type Job struct {
	Fingerprint  Fingerprint
	Form         Form
	Jurisdiction domain.Jurisdiction

	entry  cache.Entry
	cached bool
}

// Cached reports whether the job was resolved from the cache while staging.
func (j *Job) Cached() bool { return j.cached }

// Stage resolves form for jurisdiction j against the cache. A hit is shown at
// once. A miss clears the displayed results of j and marks fp pending.
func (st *State) Stage(form Form, j domain.Jurisdiction) *Job {
	fp := FingerprintOf(form, j)
	job := &Job{Fingerprint: fp, Form: form, Jurisdiction: j}

	if entry, ok := st.Cache.Get(fp.Key()); ok && Holds(entry, fp.Scope()) {
		st.Display.Show(j, fp, entry)
		job.entry, job.cached = entry, true
		return job
	}
	st.Display.Begin(j, fp)
	return job
}

// Calculate stages and runs form in one step. Callers that share st with
// concurrent form edits should Stage under their own lock and call Run.
func (d *Dispatcher) Calculate(ctx context.Context, st *State, form Form, j domain.Jurisdiction) (*Outcome, error) {
	return d.Run(ctx, st, st.Stage(form, j))
}

// Run completes a staged job, issuing exactly one engine call on a cache miss.
// Failures are returned and never cached. The result is shown only if the
// display still wants the job's fingerprint.
func (d *Dispatcher) Run(ctx context.Context, st *State, job *Job) (*Outcome, error) {
	fp := job.Fingerprint
	scope := string(fp.Scope())

	if job.cached {
		d.metrics.IncrCacheHit(scope)
		d.logger.Debug("result served from cache",
			zap.String("scope", scope),
			zap.String("fingerprint", fp.Digest()),
		)
		return &Outcome{Fingerprint: fp, Entry: job.entry, Cached: true, Applied: true}, nil
	}
	d.metrics.IncrCacheMiss(scope)

	ctx, span := tracer.Start(ctx, "Dispatcher.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("calc.scope", scope),
		attribute.String("calc.fingerprint", fp.Digest()),
	)

	start := time.Now()
	part, err := d.call(ctx, job.Form, fp.Scope())
	d.metrics.RecordEngineDuration(scope, time.Since(start))
	if err != nil {
		st.Display.Fail(fp)
		d.metrics.IncrExternalError("engine")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("calculate %s: %w", scope, err)
	}

	st.Cache.Put(fp.Key(), part)
	entry, _ := st.Cache.Get(fp.Key())

	applied := st.Display.Complete(job.Jurisdiction, fp, entry)
	if !applied {
		d.metrics.IncrSuperseded(scope)
		d.logger.Info("result superseded by newer input",
			zap.String("scope", scope),
			zap.String("fingerprint", fp.Digest()),
		)
	}
	span.SetAttributes(attribute.Bool("calc.applied", applied))

	return &Outcome{Fingerprint: fp, Entry: entry, Applied: applied}, nil
}

// call issues the one engine request matching scope.
func (d *Dispatcher) call(ctx context.Context, form Form, scope Scope) (cache.Entry, error) {
	switch scope {
	case ScopeUSTarget:
		res, err := d.engine.ComputeTarget(ctx, targetRequest(form.US))
		return cache.Entry{Target: res}, err
	case ScopeUK:
		res, err := d.engine.ComputeUK(ctx, ukRequest(form.UK))
		return cache.Entry{UK: res}, err
	default:
		res, err := d.engine.ComputeAmount(ctx, amountRequest(form.US))
		return cache.Entry{Amount: res}, err
	}
}

// Holds reports whether entry carries the result part scope needs.
func Holds(entry cache.Entry, scope Scope) bool {
	switch scope {
	case ScopeUSTarget:
		return entry.Target != nil
	case ScopeUK:
		return entry.UK != nil
	default:
		return entry.Amount != nil
	}
}
