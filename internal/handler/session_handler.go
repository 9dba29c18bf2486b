package handler

import (
	"net/http"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/service"
	"github.com/boddenberg/givecalc-bfa-go/internal/wizard"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Sessions
// POST   /v1/sessions
// GET    /v1/sessions/{sessionId}
// DELETE /v1/sessions/{sessionId}
// ============================================================

func createSessionHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions")
		defer span.End()

		view, err := svc.CreateSession(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

func getSessionHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetSession(r.Context(), chi.URLParam(r, "sessionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func endSessionHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.EndSession(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Form state
// PUT /v1/sessions/{sessionId}/jurisdiction
// PUT /v1/sessions/{sessionId}/us/form
// PUT /v1/sessions/{sessionId}/uk/form
// DELETE /v1/sessions/{sessionId}/error
// ============================================================

func setJurisdictionHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.JurisdictionRequest
		if err := decodeBody(w, r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.SetJurisdiction(r.Context(), chi.URLParam(r, "sessionId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func updateUSFormHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form domain.FormState
		if err := decodeBody(w, r, &form); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.UpdateUSForm(r.Context(), chi.URLParam(r, "sessionId"), &form)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func updateUKFormHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form domain.UKFormState
		if err := decodeBody(w, r, &form); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.UpdateUKForm(r.Context(), chi.URLParam(r, "sessionId"), &form)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func dismissErrorHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.DismissError(r.Context(), chi.URLParam(r, "sessionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// ============================================================
// Wizard
// POST /v1/sessions/{sessionId}/{jurisdiction}/{section}/confirm
// POST /v1/sessions/{sessionId}/{jurisdiction}/{section}/edit
// POST /v1/sessions/{sessionId}/{jurisdiction}/submit
// ============================================================

// wizardParams parses the jurisdiction and, when withSection is set, the
// section of a wizard route.
func wizardParams(r *http.Request, withSection bool) (domain.Jurisdiction, wizard.Section, error) {
	j, err := domain.ParseJurisdiction(chi.URLParam(r, "jurisdiction"))
	if err != nil {
		return "", "", err
	}
	if !withSection {
		return j, "", nil
	}
	sec, err := wizard.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		return "", "", err
	}
	return j, sec, nil
}

func confirmHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/{jurisdiction}/{section}/confirm")
		defer span.End()

		j, sec, err := wizardParams(r, true)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		sessionID := chi.URLParam(r, "sessionId")
		span.SetAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("wizard.section", string(sec)),
		)

		resp, err := svc.Confirm(ctx, sessionID, j, sec)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func editHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, sec, err := wizardParams(r, true)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.Edit(r.Context(), chi.URLParam(r, "sessionId"), j, sec)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func submitHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/{jurisdiction}/submit")
		defer span.End()

		j, _, err := wizardParams(r, false)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.Submit(ctx, chi.URLParam(r, "sessionId"), j)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
