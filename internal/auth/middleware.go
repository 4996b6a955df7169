package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/isdelr/weight-tracker-be/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// SessionResolver turns a session token into the caller it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (models.Caller, error)
}

type contextKey string

const callerKey = contextKey("caller")

// WithCaller returns a copy of ctx carrying the authenticated caller.
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the caller stored by RequireAuthentication.
func CallerFrom(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(models.Caller)
	return caller, ok
}

// RequireAuthentication rejects requests without a valid session with 401.
func RequireAuthentication(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}

			caller, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("Rejected session")
				unauthorized(w)
				return
			}

			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Int64("account_id", caller.AccountID)
			})
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
}
