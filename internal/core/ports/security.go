package ports

import (
	"context"
	"time"

	"github.com/usermanagement/user-api/internal/core/domain"
)

// PasswordHasher is the credential store: a salted, deliberately slow one-way
// transform. Verify returns (false, nil) on mismatch and a non-nil error only
// when the stored hash itself is unusable.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// SessionClaims is what a verified session token asserts.
type SessionClaims struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	Issue(subjectID string, role domain.Role) (string, error)
	Verify(token string) (*SessionClaims, error)
}

// RevocationRegistry records tokens invalidated by logout before their
// natural expiry. Revoke is idempotent.
type RevocationRegistry interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
