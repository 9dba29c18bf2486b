package handler

import (
	"errors"
	"net/http"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes the browser switches on.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "session_not_found"
	codeInFlight     = "calculation_in_flight"
	codeEngineDown   = "engine_unavailable"
	codeEngineSlow   = "engine_timeout"
	codeEngineFailed = "engine_error"
	codeInternal     = "internal"
)

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeBody reads a JSON request body of at most 1 MiB into dst, rejecting
// unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &domain.ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleServiceError maps domain errors to a status and an error code. Engine
// failures on wizard routes never get here: they are part of the session view.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		notFound     *domain.ErrNotFound
		validation   *domain.ErrValidation
		inFlight     *domain.ErrCalculationInFlight
		unauthorized *domain.ErrUnauthorized
		circuitOpen  *domain.ErrCircuitOpen
		timeout      *domain.ErrTimeout
		external     *domain.ErrExternalService
	)

	switch {
	case errors.As(err, &notFound):
		logger.Debug("session not found", zap.String("session_id", notFound.ID))
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.As(err, &inFlight):
		logger.Debug("calculation in flight", zap.String("session_id", inFlight.SessionID))
		writeError(w, http.StatusConflict, codeInFlight, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("engine circuit open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, codeEngineDown, err.Error())
	case errors.As(err, &timeout):
		logger.Error("engine timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, codeEngineSlow, err.Error())
	case errors.As(err, &external) && !errors.As(err, &validation):
		logger.Error("engine error", zap.String("service", external.Service), zap.Error(err))
		writeError(w, http.StatusBadGateway, codeEngineFailed, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("field", validation.Field), zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}
