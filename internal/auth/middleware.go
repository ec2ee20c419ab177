package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type identityKey struct{}

// FromContext returns the verified identity stored by RequireAuth.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// WithIdentity puts a verified identity on the context. Exposed for handler
// tests that bypass the middleware.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// RequireAuth verifies the Authorization bearer token against the provider
// and stores the resulting identity in the request context. Requests without
// a valid token are rejected with 401 before any handler runs.
func RequireAuth(provider Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "missing or malformed Authorization header")
				return
			}

			identity, err := provider.VerifyToken(r.Context(), token)
			if err != nil {
				slog.Warn("token verification failed", "error", err)
				unauthorized(w, "invalid or expired token")

				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
