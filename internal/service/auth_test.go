package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/servicofacil/prestador-api/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type mockUserDirectory struct {
	users map[string]*domain.User
	err   error
}

func (m *mockUserDirectory) LoadByLogin(ctx context.Context, login string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[login], nil
}

func hashPassword(t *testing.T, senha string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func TestAuthService_Login_Success(t *testing.T) {
	users := &mockUserDirectory{users: map[string]*domain.User{
		"maria@example.com": {
			ID:        "u-1",
			Login:     "maria@example.com",
			SenhaHash: hashPassword(t, "s3nha-forte"),
		},
	}}
	tokens := NewTokenService("test-secret", 15*time.Minute)
	svc := NewAuthService(users, tokens, zap.NewNop())

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Login: "maria@example.com",
		Senha: "s3nha-forte",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("expected token type Bearer, got %s", resp.TokenType)
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("unexpected expiresIn: %d", resp.ExpiresIn)
	}
	if !tokens.IsValid(resp.AccessToken) {
		t.Fatal("expected issued token to validate")
	}
	subject, _ := tokens.Subject(resp.AccessToken)
	if subject != "maria@example.com" {
		t.Errorf("expected subject 'maria@example.com', got '%s'", subject)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	users := &mockUserDirectory{users: map[string]*domain.User{}}
	svc := NewAuthService(users, NewTokenService("test-secret", 15*time.Minute), zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Login: "ghost", Senha: "x"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users := &mockUserDirectory{users: map[string]*domain.User{
		"maria@example.com": {
			ID:        "u-1",
			Login:     "maria@example.com",
			SenhaHash: hashPassword(t, "certa"),
		},
	}}
	svc := NewAuthService(users, NewTokenService("test-secret", 15*time.Minute), zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Login: "maria@example.com",
		Senha: "errada",
	})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Login_DirectoryError(t *testing.T) {
	users := &mockUserDirectory{err: errors.New("supabase down")}
	svc := NewAuthService(users, NewTokenService("test-secret", 15*time.Minute), zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Login: "maria", Senha: "x"})
	if err == nil {
		t.Fatal("expected error when directory fails")
	}
	var unauthorized *domain.ErrUnauthorized
	if errors.As(err, &unauthorized) {
		t.Fatal("infrastructure failure must not surface as invalid credentials")
	}
}
