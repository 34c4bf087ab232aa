package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authorization header required"))
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid authorization header format"))
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logging.FromContext(r.Context()).Debug().Err(err).Msg("token rejected")
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
		})
	}
}

// OptionalAuth sets the identity when a valid token is present and never fails
// the request otherwise.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
				if identity, err := verifier.Verify(r.Context(), token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), *identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity reports ok=false for anonymous requests.
func GetIdentity(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok && identity.UserID != ""
}

// GetUserID returns "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	identity, _ := GetIdentity(ctx)
	return identity.UserID
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
