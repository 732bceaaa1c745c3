package ports

import (
	"context"

	"github.com/usermanagement/user-api/internal/core/domain"
)

// ListUsersInput carries the raw list parameters; the service normalises them.
type ListUsersInput struct {
	Page     int
	Limit    int
	Role     domain.Role
	IsActive *bool
}

// Pagination describes the page returned by ListUsers.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// ListUsersResult is returned by ListUsers.
type ListUsersResult struct {
	Items      []*domain.User
	Pagination Pagination
}

// UserService defines the admin-only user administration use cases.
type UserService interface {
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id, actorID string) (*domain.User, error)
}
