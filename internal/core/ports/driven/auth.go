package driven

import "github.com/custodia-labs/dorkdesk-core/internal/core/domain"

// AuthAdapter handles authentication cryptographic operations.
// This does NOT handle storage - use SessionStore for session persistence.
type AuthAdapter interface {
	// Passphrase operations
	HashPassphrase(passphrase string) (string, error)
	VerifyPassphrase(passphrase, hash string) bool

	// Token operations
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
