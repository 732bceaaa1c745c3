package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/usermanagement/user-api/internal/api/metrics"
	"github.com/usermanagement/user-api/internal/core/domain"
	"github.com/usermanagement/user-api/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	// maxPage keeps (page-1)*limit inside a 32-bit int.
	maxPage = math.MaxInt32 / maxLimit
)

// UserService implements the admin-only user administration use cases.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// ListUsers returns one page of users. Page and limit are normalised rather
// than rejected: limit is clamped to [1, maxLimit] and page to [1, maxPage].
func (s *UserService) ListUsers(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
	page, limit := normalisePage(in.Page, in.Limit)

	users, total, err := s.repo.List(ctx, ports.ListUsersFilter{
		Role:     in.Role,
		IsActive: in.IsActive,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	items := make([]*domain.User, 0, len(users))
	for _, u := range users {
		items = append(items, u.Sanitized())
	}

	return &ports.ListUsersResult{
		Items: items,
		Pagination: ports.Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages(total, limit),
		},
	}, nil
}

// GetUser returns any user, active or not.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NotFound("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user.Sanitized(), nil
}

// UpdateUser applies an administrative patch, which may also change role and
// active status.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.IsEmpty() {
		return nil, domain.Validation("no updatable fields provided")
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, domain.Validation("role must be admin or user", domain.FieldError{Field: "role", Message: "role must be admin or user"})
	}

	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapWriteError("update user", err)
	}

	ev := s.logger.Info().Str("user_id", id)
	if patch.Role != nil {
		ev = ev.Str("role", string(*patch.Role))
	}
	if patch.IsActive != nil {
		ev = ev.Bool("is_active", *patch.IsActive)
	}
	ev.Msg("user updated by admin")

	return user.Sanitized(), nil
}

// DeleteUser deactivates the user. Administrators cannot deactivate the
// account they are acting from.
func (s *UserService) DeleteUser(ctx context.Context, id, actorID string) (*domain.User, error) {
	if id == actorID {
		return nil, domain.Forbidden("you cannot deactivate your own account")
	}

	user, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return nil, mapWriteError("delete user", err)
	}

	metrics.DeactivationsTotal.Inc()
	s.logger.Info().Str("user_id", id).Str("actor_id", actorID).Msg("user deactivated")

	return user.Sanitized(), nil
}

func mapWriteError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return domain.NotFound("user")
	case errors.Is(err, domain.ErrEmailTaken):
		return domain.Conflict("email is already registered")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func normalisePage(page, limit int) (int, int) {
	switch {
	case page < 1:
		page = defaultPage
	case page > maxPage:
		page = maxPage
	}
	switch {
	case limit == 0:
		limit = defaultLimit
	case limit < 1:
		limit = 1
	case limit > maxLimit:
		limit = maxLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
