package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/servicofacil/prestador-api/internal/domain"
	"github.com/servicofacil/prestador-api/internal/service"

	"go.uber.org/zap"
)

type stubUserDirectory struct {
	users map[string]*domain.User
	err   error
}

func (s *stubUserDirectory) LoadByLogin(ctx context.Context, login string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[login], nil
}

// identityProbe records the identity seen by the downstream handler.
func identityProbe(got **domain.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticator_ValidToken(t *testing.T) {
	tokens := service.NewTokenService("test-secret", 15*time.Minute)
	users := &stubUserDirectory{users: map[string]*domain.User{
		"maria@example.com": {ID: "p-1", Login: "maria@example.com"},
	}}

	bearer, err := tokens.Issue("maria@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var got *domain.User
	h := Authenticator(tokens, users, zap.NewNop())(identityProbe(&got))

	req := httptest.NewRequest(http.MethodGet, "/v1/prestador", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.ID != "p-1" {
		t.Fatalf("expected authenticated identity p-1, got %+v", got)
	}
}

func TestAuthenticator_PassesThroughUnauthenticated(t *testing.T) {
	tokens := service.NewTokenService("test-secret", 15*time.Minute)
	users := &stubUserDirectory{users: map[string]*domain.User{}}

	expired := service.NewTokenService("test-secret", -time.Minute)
	expiredBearer, _ := expired.Issue("maria@example.com")

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed header", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expiredBearer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got *domain.User
			h := Authenticator(tokens, users, zap.NewNop())(identityProbe(&got))

			req := httptest.NewRequest(http.MethodGet, "/v1/prestador", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			// The request still reaches the handler, just without an identity.
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if got != nil {
				t.Fatalf("expected no identity, got %+v", got)
			}
		})
	}
}

func TestAuthenticator_SubjectWithoutUser(t *testing.T) {
	tokens := service.NewTokenService("test-secret", 15*time.Minute)
	users := &stubUserDirectory{users: map[string]*domain.User{}}

	bearer, _ := tokens.Issue("ghost@example.com")

	var got *domain.User
	h := Authenticator(tokens, users, zap.NewNop())(identityProbe(&got))

	req := httptest.NewRequest(http.MethodGet, "/v1/prestador", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != nil {
		t.Fatal("a valid token whose subject has no account must not authenticate")
	}
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireAuth(zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodPut, "/v1/prestador/dados-servico", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	ctx := context.WithValue(req.Context(), identityKey, &domain.User{ID: "p-1"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with identity, got %d", rec.Code)
	}
}
