package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/model"
)

type contextKey struct{}

// SessionClaimsKey carries the authenticated session claims in the request context.
var SessionClaimsKey = contextKey{}

// ClaimsFromContext returns the session claims stored by JWTAuth middleware.
func ClaimsFromContext(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(SessionClaimsKey).(*auth.SessionClaims)
	return claims, ok
}

// JWTAuth validates the Bearer token on incoming requests and stores its
// claims in the request context.
func JWTAuth(jwtAuth auth.JWTAuthenticator, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims := &auth.SessionClaims{}
			if _, err := jwtAuth.ValidateTokenWithClaims(parts[1], secret, claims); err != nil {
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), SessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session does not carry the admin role.
// Must be mounted after JWTAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "missing session")
			return
		}

		if claims.Role != model.RoleAdmin {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs each request with a generated request id.
func RequestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			w.Header().Set("X-Request-ID", requestID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

// Recoverer converts panics into the 500 JSON envelope.
func Recoverer(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("unhandled panic")
					respondJSON(w, http.StatusInternalServerError, errorResponse{
						Success: false,
						Message: "Internal server error",
						Error:   "unexpected server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
