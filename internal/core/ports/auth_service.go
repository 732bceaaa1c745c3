package ports

import (
	"context"

	"github.com/usermanagement/user-api/internal/core/domain"
)

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the validated login payload.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult pairs a fresh session token with the sanitized user.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthService orchestrates registration, sessions and self-service profile.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	GetSelf(ctx context.Context, id string) (*domain.User, error)
	UpdateSelf(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}
