package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workbridge/backend/internal/models"
)

type stubValidator struct {
	subject uuid.UUID
	role    string
	err     error
}

func (s *stubValidator) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	if s.err != nil {
		return uuid.Nil, "", s.err
	}
	return s.subject, s.role, nil
}

type stubLookup struct {
	profiles map[uuid.UUID]*models.Profile
}

func (s *stubLookup) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func TestJWTAuth_ResolvesProfileIntoContext(t *testing.T) {
	profile := &models.Profile{ID: uuid.New(), Role: models.RoleClient, Email: "client@example.com"}
	mw := JWTAuth(
		&stubValidator{subject: profile.ID, role: profile.Role},
		&stubLookup{profiles: map[uuid.UUID]*models.Profile{profile.ID: profile}},
	)

	var got *models.Profile
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ProfileFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got == nil || got.ID != profile.ID {
		t.Fatalf("profile in context: got %+v, want %s", got, profile.ID)
	}
}

func TestJWTAuth_Rejections(t *testing.T) {
	profile := &models.Profile{ID: uuid.New(), Role: models.RoleFreelancer}
	lookup := &stubLookup{profiles: map[uuid.UUID]*models.Profile{profile.ID: profile}}

	cases := []struct {
		name      string
		header    string
		validator *stubValidator
	}{
		{"missing header", "", &stubValidator{subject: profile.ID}},
		{"not bearer", "Basic abc123", &stubValidator{subject: profile.ID}},
		{"invalid token", "Bearer bad.token", &stubValidator{err: errors.New("signature invalid")}},
		{"unknown subject", "Bearer ok.token", &stubValidator{subject: uuid.New()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := JWTAuth(tc.validator, lookup)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rec.Code)
			}
			if called {
				t.Error("next handler should not run")
			}
		})
	}
}

func TestProfileFromCtx_Empty(t *testing.T) {
	if p := ProfileFromCtx(context.Background()); p != nil {
		t.Fatalf("empty context should yield nil, got: %+v", p)
	}
}
