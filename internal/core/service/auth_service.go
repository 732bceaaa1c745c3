package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/usermanagement/user-api/internal/api/metrics"
	"github.com/usermanagement/user-api/internal/core/domain"
	"github.com/usermanagement/user-api/internal/core/ports"
)

// revokeFallbackTTL bounds a revocation entry when the token's own expiry
// cannot be read. It matches the session lifetime.
const revokeFallbackTTL = 24 * time.Hour

// timingPassword is hashed once at start-up so that logins for unknown emails
// spend the same bcrypt time as logins with a wrong password.
const timingPassword = "timing-equaliser-Password1"

// AuthService implements registration, sessions and self-service profile.
type AuthService struct {
	repo        ports.UserRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenService
	revocations ports.RevocationRegistry
	logger      zerolog.Logger
	dummyHash   string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	revocations ports.RevocationRegistry,
	logger zerolog.Logger,
) *AuthService {
	s := &AuthService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
	}
	if h, err := hasher.Hash(timingPassword); err == nil {
		s.dummyHash = h
	}
	return s
}

func invalidCredentials() *domain.AppError {
	return domain.Unauthorized("invalid credentials")
}

// Register creates an account. The very first account in the store becomes
// admin; every later one is a regular user.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	count, err := s.repo.CountTotal(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: count users: %w", err)
	}

	role := domain.RoleUser
	if count == 0 {
		role = domain.RoleAdmin
	}

	user, err := s.repo.Create(ctx, domain.NewUser{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.Conflict("email is already registered")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues(string(role)).Inc()
	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")

	return user.Sanitized(), nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.equaliseTiming(in.Password)
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, invalidCredentials()
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("inactive").Inc()
		s.logger.Info().Str("user_id", user.ID).Msg("login refused for deactivated account")
		return nil, domain.Forbidden("account deactivated")
	}

	start := time.Now()
	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	metrics.PasswordVerifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unusable")
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, invalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("login succeeded")

	return &ports.LoginResult{Token: token, User: user.Sanitized()}, nil
}

// Logout revokes token. Revoking the same token twice is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	expiresAt := time.Now().Add(revokeFallbackTTL)
	if claims, err := s.tokens.Verify(token); err == nil {
		expiresAt = claims.ExpiresAt
	}

	if err := s.revocations.Revoke(ctx, token, expiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	metrics.LogoutsTotal.Inc()
	s.logger.Info().Time("expires_at", expiresAt).Msg("session revoked")
	return nil
}

// GetSelf returns the caller's own profile. Deactivated accounts are
// reported as missing.
func (s *AuthService) GetSelf(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NotFound("user")
		}
		return nil, fmt.Errorf("get self: %w", err)
	}
	if !user.IsActive {
		return nil, domain.NotFound("user")
	}
	return user.Sanitized(), nil
}

// UpdateSelf applies the name, email and password fields of patch to the
// caller's account; anything else in patch is ignored. Deactivated accounts
// are reported as missing, as in GetSelf.
func (s *AuthService) UpdateSelf(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	patch = patch.SelfService()
	if patch.IsEmpty() {
		return nil, domain.Validation("no updatable fields provided")
	}

	if _, err := s.GetSelf(ctx, id); err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapWriteError("update self", err)
	}

	s.logger.Info().Str("user_id", id).Bool("password_changed", patch.Password != nil).Msg("profile updated")
	return user.Sanitized(), nil
}

func (s *AuthService) equaliseTiming(password string) {
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(password, s.dummyHash)
}
