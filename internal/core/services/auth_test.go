package services

import (
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
)

// mockSessionStore implements driven.SessionStore for testing
type mockSessionStore struct {
	sessions map[string]*domain.Session
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]*domain.Session{}}
}

func (m *mockSessionStore) Save(ctx context.Context, session *domain.Session) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	for _, s := range m.sessions {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionStore) DeleteByToken(ctx context.Context, token string) error {
	for id, s := range m.sessions {
		if s.Token == token {
			delete(m.sessions, id)
		}
	}
	return nil
}

// mockAuthAdapter implements driven.AuthAdapter for testing
type mockAuthAdapter struct{}

func (m *mockAuthAdapter) HashPassphrase(passphrase string) (string, error) {
	return "hash:" + passphrase, nil
}

func (m *mockAuthAdapter) VerifyPassphrase(passphrase, hash string) bool {
	return hash == "hash:"+passphrase
}

func (m *mockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	return "token:" + claims.SessionID, nil
}

func (m *mockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	if len(token) <= 6 || token[:6] != "token:" {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.TokenClaims{
		SessionID: token[6:],
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil
}

func TestLoginAndValidate(t *testing.T) {
	store := newMockSessionStore()
	svc := NewAuthService(store, &mockAuthAdapter{}, "hash:s3cret")
	ctx := context.Background()

	if !svc.Enabled() {
		t.Fatal("expected auth enabled with a passphrase hash")
	}

	resp, err := svc.Login(ctx, domain.LoginRequest{Passphrase: "s3cret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	session, err := svc.ValidateToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if session.Token != resp.Token {
		t.Error("validated session does not match issued token")
	}
}

func TestLoginWrongPassphrase(t *testing.T) {
	svc := NewAuthService(newMockSessionStore(), &mockAuthAdapter{}, "hash:s3cret")

	_, err := svc.Login(context.Background(), domain.LoginRequest{Passphrase: "wrong"})
	if err != domain.ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginEmptyPassphrase(t *testing.T) {
	svc := NewAuthService(newMockSessionStore(), &mockAuthAdapter{}, "hash:s3cret")

	_, err := svc.Login(context.Background(), domain.LoginRequest{})
	if err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateUnknownSession(t *testing.T) {
	svc := NewAuthService(newMockSessionStore(), &mockAuthAdapter{}, "hash:s3cret")

	_, err := svc.ValidateToken(context.Background(), "token:missing")
	if err != domain.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestOpenInstanceValidatesAnything(t *testing.T) {
	svc := NewAuthService(newMockSessionStore(), &mockAuthAdapter{}, "")

	if svc.Enabled() {
		t.Fatal("expected auth disabled without a passphrase hash")
	}

	session, err := svc.ValidateToken(context.Background(), "")
	if err != nil {
		t.Fatalf("open instance must validate any token: %v", err)
	}
	if session == nil {
		t.Fatal("expected a synthesized session")
	}
}

func TestLogout(t *testing.T) {
	store := newMockSessionStore()
	svc := NewAuthService(store, &mockAuthAdapter{}, "hash:s3cret")
	ctx := context.Background()

	resp, err := svc.Login(ctx, domain.LoginRequest{Passphrase: "s3cret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := svc.ValidateToken(ctx, resp.Token); err != domain.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}
}
