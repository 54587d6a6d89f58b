package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/alumniconnect/backend/internal/identity"
)

type contextKey string

const identityKey contextKey = "identity"

// Auth resolves the bearer credential on every request and threads the
// resulting identity through the request context. Resolution failures are
// 401; nothing downstream ever sees an unresolved caller.
func Auth(resolver *identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.ResolveRequest(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Missing or invalid token"}}`))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity extracts the resolved caller from the request context.
func GetIdentity(ctx context.Context) identity.Identity {
	return ctx.Value(identityKey).(identity.Identity)
}

// GetUserID extracts the resolved caller's user id from the request context.
func GetUserID(ctx context.Context) uuid.UUID {
	return GetIdentity(ctx).UserID
}
