package driving

import (
	"context"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
)

// AuthService guards the state API. When no passphrase is configured the
// instance is open (local desktop use) and every token validates.
type AuthService interface {
	// Enabled reports whether a passphrase is configured
	Enabled() bool

	// Login verifies the passphrase and issues a session token
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken checks a bearer token and returns its session
	ValidateToken(ctx context.Context, token string) (*domain.Session, error)

	// Logout invalidates the session behind the token
	Logout(ctx context.Context, token string) error
}
