package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/HammerMeetNail/readshelf/internal/handlers"
	"github.com/HammerMeetNail/readshelf/internal/models"
	"github.com/HammerMeetNail/readshelf/internal/services"
)

type fakeVerifier struct {
	valid  string
	claims *services.Claims
	calls  int
}

func (f *fakeVerifier) Verify(token string) (*services.Claims, error) {
	f.calls++
	if token != f.valid {
		return nil, services.ErrInvalidToken
	}
	return f.claims, nil
}

func newFakeVerifier() (*fakeVerifier, models.Identity) {
	identity := models.Identity{UserID: uuid.New(), Email: "alice@example.com", FullName: "Alice"}
	return &fakeVerifier{
		valid: "good-token",
		claims: &services.Claims{
			Email:            identity.Email,
			FullName:         identity.FullName,
			RegisteredClaims: jwt.RegisteredClaims{Subject: identity.UserID.String()},
		},
	}, identity
}

func captureIdentity(got **models.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = handlers.GetIdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		wantIdentity bool
	}{
		{"valid bearer", "Bearer good-token", true},
		{"lowercase scheme", "bearer good-token", true},
		{"uppercase scheme", "BEARER good-token", true},
		{"extra spaces", "Bearer   good-token  ", true},
		{"invalid token", "Bearer bad-token", false},
		{"missing header", "", false},
		{"wrong scheme", "Basic good-token", false},
		{"scheme only", "Bearer", false},
		{"empty token", "Bearer   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, identity := newFakeVerifier()
			var got *models.Identity

			req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			NewAuthMiddleware(verifier).Authenticate(captureIdentity(&got)).ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("Authenticate must never reject, got %d", rr.Code)
			}
			if !tt.wantIdentity {
				if got != nil {
					t.Fatalf("expected no identity, got %+v", got)
				}
				return
			}
			if got == nil || *got != identity {
				t.Fatalf("identity = %+v, want %+v", got, identity)
			}
		})
	}
}

func TestAuthMiddleware_Authenticate_SkipsVerifyWithoutHeader(t *testing.T) {
	verifier, _ := newFakeVerifier()
	var got *models.Identity

	NewAuthMiddleware(verifier).Authenticate(captureIdentity(&got)).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if verifier.calls != 0 {
		t.Fatalf("expected no verification attempts, got %d", verifier.calls)
	}
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	verifier, _ := newFakeVerifier()
	m := NewAuthMiddleware(verifier)
	chain := m.Authenticate(m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("rejects anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/friends", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if body := rr.Body.String(); body != "{\"error\":\"Authentication required\"}\n" {
			t.Fatalf("unexpected body %q", body)
		}
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("allows valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
	})
}
