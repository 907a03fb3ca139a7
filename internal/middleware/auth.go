// Package middleware provides HTTP middlewares for bearer authentication,
// request logging and metrics.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/DigitalHouse/internal/repository"
	"github.com/atinyakov/DigitalHouse/internal/service"
)

type ctxKey string

const (
	userKey ctxKey = "user"
	roleKey ctxKey = "role"
)

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (repository.UserRecord, error)
}

// WriteError writes the JSON error envelope the API uses for every failure.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "message": msg})
}

// BearerAuth rejects requests without a valid "Authorization: Bearer"
// token. A bad token is a 401; an account that is not approved is a 403.
//
// On success the account id and role are stored in the request context.
func BearerAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			u, err := auth.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				switch service.KindOf(err) {
				case service.KindUnauthorized:
					WriteError(w, http.StatusUnauthorized, service.MessageOf(err))
				case service.KindForbidden:
					WriteError(w, http.StatusForbidden, service.MessageOf(err))
				default:
					WriteError(w, http.StatusInternalServerError, "internal error")
				}
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u.ID)
			ctx = context.WithValue(ctx, roleKey, u.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets through only accounts with the given role. It must run
// after BearerAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got, _ := r.Context().Value(roleKey).(string); got != role {
				WriteError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns ctx carrying id as the authenticated account.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// GetUserIDFromContext extracts the authenticated account id from the
// request context. It returns 0 when there is none.
func GetUserIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userKey).(int64)
	return id
}
