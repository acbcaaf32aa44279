package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/workbridge/backend/internal/models"
)

type contextKey string

const ctxProfileKey contextKey = "profile"

// TokenValidator validates a bearer token and returns the subject id and role.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error)
}

// ProfileLookup resolves the full profile for the authenticated subject.
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// JWTAuth authenticates requests with a Bearer JWT and resolves the profile
// exactly once, storing it in the request context. Workflow code reads the
// resolved identity from context instead of re-querying per component.
func JWTAuth(tokens TokenValidator, profiles ProfileLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}

			id, _, err := tokens.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			profile, err := profiles.GetByID(r.Context(), id)
			if err != nil {
				http.Error(w, `{"error":"unknown profile"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxProfileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileFromCtx returns the authenticated profile or nil.
func ProfileFromCtx(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(ctxProfileKey).(*models.Profile)
	return p
}

// WithProfile returns a context carrying the given profile.
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, ctxProfileKey, p)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
