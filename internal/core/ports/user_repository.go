package ports

import (
	"context"

	"github.com/usermanagement/user-api/internal/core/domain"
)

// ListUsersFilter carries the query parameters for listing users.
type ListUsersFilter struct {
	Role     domain.Role // empty = any role
	IsActive *bool       // nil = active users only
	Page     int         // 1-based
	Limit    int
}

// UserRepository defines persistence operations for users.
//
// Implementations must hash any plaintext password in NewUser or UserPatch
// through a PasswordHasher before it reaches storage, and must enforce email
// uniqueness by returning domain.ErrEmailTaken. Lookups of a missing user
// return domain.ErrUserNotFound.
type UserRepository interface {
	CountTotal(ctx context.Context) (int64, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in domain.NewUser) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	SoftDelete(ctx context.Context, id string) (*domain.User, error)
	// List returns a page of users matching filter and the total match count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
}
