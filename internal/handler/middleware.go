package handler

import (
	"net/http"
	"strings"

	"github.com/boddenberg/givecalc-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionAuthMiddleware requires a Bearer token issued for the {sessionId} of
// the route.
func SessionAuthMiddleware(svc *service.CalculatorService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token format")
				return
			}

			sessionID := chi.URLParam(r, "sessionId")
			if err := svc.Authorize(parts[1], sessionID); err != nil {
				logger.Warn("auth: token rejected",
					zap.String("path", r.URL.Path),
					zap.String("session_id", sessionID),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
