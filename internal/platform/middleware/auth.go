package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"intake/pkg/requestcontext"
)

// JWTValidator defines the interface for validating access tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	ActorID  string
	ClientID string
}

// RequireAuth rejects requests without a valid bearer token and injects the
// actor ID into the request context for downstream handlers and services.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err.Error(),
				)
				unauthorized(w)
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), claims.ActorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
