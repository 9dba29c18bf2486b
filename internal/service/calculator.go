// Package service provides the business logic layer (use cases).
// CalculatorService drives browser sessions through the donation wizard and
// dispatches calculations to the engine.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/calc"
	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/observability"
	"github.com/boddenberg/givecalc-bfa-go/internal/session"
	"github.com/boddenberg/givecalc-bfa-go/internal/wizard"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/calculator")

// CalculatorService orchestrates sessions, wizards and the dispatcher.
type CalculatorService struct {
	sessions   *session.Store
	tokens     *session.Tokens
	dispatcher *calc.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewCalculatorService creates a new calculator service.
func NewCalculatorService(
	sessions *session.Store,
	tokens *session.Tokens,
	dispatcher *calc.Dispatcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CalculatorService {
	return &CalculatorService{
		sessions:   sessions,
		tokens:     tokens,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// ============================================================
// Sessions
// ============================================================

// CreateSession starts a session and returns its view with a bearer token.
func (s *CalculatorService) CreateSession(ctx context.Context) (*domain.SessionView, error) {
	_, span := tracer.Start(ctx, "CalculatorService.CreateSession")
	defer span.End()

	sess := s.sessions.Create()
	token, err := s.tokens.Issue(sess.ID, time.Now())
	if err != nil {
		_ = s.sessions.Delete(sess.ID)
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", sess.ID))

	v := sess.View()
	v.Token = token
	return &v, nil
}

// Authorize checks that token was issued for sessionID.
func (s *CalculatorService) Authorize(token, sessionID string) error {
	sub, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if sub != sessionID {
		return &domain.ErrUnauthorized{Message: "token does not belong to this session"}
	}
	return nil
}

// GetSession returns the current view of a session.
func (s *CalculatorService) GetSession(_ context.Context, id string) (*domain.SessionView, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	v := sess.View()
	return &v, nil
}

// EndSession discards a session and everything cached in it.
func (s *CalculatorService) EndSession(_ context.Context, id string) error {
	return s.sessions.Delete(id)
}

// SetJurisdiction switches the jurisdiction shown by a session.
func (s *CalculatorService) SetJurisdiction(_ context.Context, id string, req *domain.JurisdictionRequest) (*domain.SessionView, error) {
	j, err := domain.ParseJurisdiction(req.Jurisdiction)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	sess.SetJurisdiction(j)
	v := sess.View()
	return &v, nil
}

// UpdateUSForm replaces the US form of a session.
func (s *CalculatorService) UpdateUSForm(_ context.Context, id string, form *domain.FormState) (*domain.SessionView, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if err := sess.SetUSForm(*form); err != nil {
		return nil, err
	}
	v := sess.View()
	return &v, nil
}

// UpdateUKForm replaces the UK form of a session.
func (s *CalculatorService) UpdateUKForm(_ context.Context, id string, form *domain.UKFormState) (*domain.SessionView, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if err := sess.SetUKForm(*form); err != nil {
		return nil, err
	}
	v := sess.View()
	return &v, nil
}

// DismissError clears the error shown by a session.
func (s *CalculatorService) DismissError(_ context.Context, id string) (*domain.SessionView, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	sess.DismissError()
	v := sess.View()
	return &v, nil
}

// ============================================================
// Wizard
// ============================================================

// Confirm confirms a wizard section. Confirming details runs one calculation
// before returning.
func (s *CalculatorService) Confirm(ctx context.Context, id string, j domain.Jurisdiction, sec wizard.Section) (*domain.ActionResponse, error) {
	ctx, span := tracer.Start(ctx, "CalculatorService.Confirm")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", id),
		attribute.String("wizard.jurisdiction", string(j)),
		attribute.String("wizard.section", string(sec)),
	)

	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	act, err := sess.Confirm(j, sec)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, sess, act), nil
}

// Edit reopens a wizard section.
func (s *CalculatorService) Edit(_ context.Context, id string, j domain.Jurisdiction, sec wizard.Section) (*domain.ActionResponse, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	applied := sess.Edit(j, sec)
	return &domain.ActionResponse{Applied: applied, Session: sess.View()}, nil
}

// Submit is the keyboard shortcut: it recalculates when both sections are
// complete and otherwise does nothing.
func (s *CalculatorService) Submit(ctx context.Context, id string, j domain.Jurisdiction) (*domain.ActionResponse, error) {
	ctx, span := tracer.Start(ctx, "CalculatorService.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", id),
		attribute.String("wizard.jurisdiction", string(j)),
	)

	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, sess, sess.Submit(j)), nil
}

// run performs the calculation an action asked for. Engine failures end up in
// the session as a dismissible error rather than failing the request.
func (s *CalculatorService) run(ctx context.Context, sess *session.Session, act session.Action) *domain.ActionResponse {
	resp := &domain.ActionResponse{Applied: act.Applied}
	if !act.Dispatch {
		resp.Session = sess.View()
		return resp
	}

	scope := string(act.Job.Fingerprint.Scope())

	// The call outlives a browser that gives up waiting.
	out, err := s.dispatcher.Run(context.WithoutCancel(ctx), sess.Calc(), act.Job)
	sess.Finish(err)

	switch {
	case err != nil:
		s.metrics.IncrCalculation(scope, "error")
		s.logger.Error("calculation failed",
			zap.String("session_id", sess.ID),
			zap.String("scope", scope),
			zap.Error(err),
		)
	case out.Cached:
		s.metrics.IncrCalculation(scope, "cached")
		resp.Calculated, resp.Cached = true, true
	default:
		s.metrics.IncrCalculation(scope, "success")
		resp.Calculated = true
		s.logger.Info("calculation completed",
			zap.String("session_id", sess.ID),
			zap.String("scope", scope),
			zap.String("fingerprint", out.Fingerprint.Digest()),
			zap.Bool("applied", out.Applied),
		)
	}

	resp.Session = sess.View()
	return resp
}

// ============================================================
// One-shot calculation
// ============================================================

// CalculateOnce validates form, runs one calculation on a throwaway context and
// selects the bundle to display.
func CalculateOnce(ctx context.Context, d *calc.Dispatcher, form calc.Form, j domain.Jurisdiction) (*domain.DisplayBundle, error) {
	var err error
	if j == domain.JurisdictionUK {
		err = form.UK.Validate()
	} else {
		err = form.US.Validate()
	}
	if err != nil {
		return nil, err
	}

	out, err := d.Calculate(ctx, calc.NewState(), form, j)
	if err != nil {
		return nil, err
	}
	bundle := calc.SelectEntry(out.Entry, form.Mode(j), j)
	if bundle == nil {
		return nil, errors.New("engine returned no result")
	}
	return bundle, nil
}

// ============================================================
// Metrics
// ============================================================

// GetCalculatorMetrics returns cache and engine statistics.
func (s *CalculatorService) GetCalculatorMetrics(_ context.Context) *domain.CalculatorMetrics {
	return s.metrics.GetCalculatorSnapshot()
}
