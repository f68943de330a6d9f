package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xela07ax/shopcore/internal/domain"
	"go.uber.org/zap"
)

type fakeValidator struct {
	claims *domain.Claims
	err    error
}

func (f fakeValidator) Decode(string) (*domain.Claims, error) { return f.claims, f.err }

func TestMiddleware(t *testing.T) {
	cases := []struct {
		name       string
		header     string
		validator  fakeValidator
		wantStatus int
	}{
		{
			name:       "no token",
			header:     "",
			validator:  fakeValidator{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			header:     "Bearer bogus",
			validator:  fakeValidator{err: domain.ErrInvalidToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			// Снаружи expired неотличим от invalid — единый 401.
			name:       "expired token",
			header:     "Bearer stale",
			validator:  fakeValidator{err: domain.ErrExpiredToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			header:     "Bearer good",
			validator:  fakeValidator{claims: &domain.Claims{UserID: "u1", Role: domain.RoleAdmin}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotClaims *domain.Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotClaims, _ = ClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			h := NewMiddleware(tc.validator, zap.NewNop())(next)

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK {
				if gotClaims == nil || gotClaims.UserID != "u1" {
					t.Fatalf("claims not propagated: %+v", gotClaims)
				}
			}
		})
	}
}
