package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "worktrack/pkg/domain"
	"worktrack/pkg/requestcontext"
)

// JWTValidator validates bearer tokens issued by the identity provider.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries the identity facts we trust from a validated token.
// Role flags and capabilities are resolved against the identity store per
// request, not read from the token, so revocations take effect immediately.
type JWTClaims struct {
	UserID id.UserID
}

// GetActorID retrieves the authenticated user ID set by RequireAuth.
func GetActorID(r *http.Request) id.UserID {
	return requestcontext.ActorID(r.Context())
}

// RequireAuth validates the Authorization bearer token and injects the
// actor ID into the request context. Requests without a valid token get 401.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
