package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driven"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService implements the AuthService interface for the single-analyst
// case: one optional passphrase guards the whole state API. With no
// passphrase configured the instance is open and every token validates.
type authService struct {
	sessionStore   driven.SessionStore
	authAdapter    driven.AuthAdapter
	passphraseHash string
	tokenTTL       time.Duration
}

// NewAuthService creates a new AuthService. An empty passphraseHash
// disables authentication entirely.
func NewAuthService(
	sessionStore driven.SessionStore,
	authAdapter driven.AuthAdapter,
	passphraseHash string,
) driving.AuthService {
	return &authService{
		sessionStore:   sessionStore,
		authAdapter:    authAdapter,
		passphraseHash: passphraseHash,
		tokenTTL:       24 * time.Hour,
	}
}

// Enabled reports whether a passphrase is configured
func (s *authService) Enabled() bool {
	return s.passphraseHash != ""
}

// Login verifies the passphrase and creates a session
func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if !s.Enabled() {
		return nil, domain.ErrInvalidInput
	}
	if req.Passphrase == "" {
		return nil, domain.ErrInvalidInput
	}

	if !s.authAdapter.VerifyPassphrase(req.Passphrase, s.passphraseHash) {
		return nil, domain.ErrInvalidCredentials
	}

	sessionID := generateID()
	claims := &domain.TokenClaims{
		SessionID: sessionID,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(s.tokenTTL).Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	session := &domain.Session{
		ID:        sessionID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if err := s.sessionStore.Save(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT token and returns its session
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	if !s.Enabled() {
		// Open instance: synthesize a session so callers have one shape
		return &domain.Session{ID: "open", ExpiresAt: time.Now().Add(s.tokenTTL)}, nil
	}
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	session, err := s.sessionStore.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	return session, nil
}

// Logout invalidates a session
func (s *authService) Logout(ctx context.Context, token string) error {
	if !s.Enabled() || token == "" {
		return nil
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil // Already invalid, nothing to do
	}

	return s.sessionStore.Delete(ctx, claims.SessionID)
}

// Helper functions

func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
