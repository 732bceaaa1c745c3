package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/usermanagement/user-api/internal/api/metrics"
	"github.com/usermanagement/user-api/internal/core/domain"
	"github.com/usermanagement/user-api/internal/core/ports"
)

const (
	principalKey = "principal"
	tokenKey     = "token"
)

// Authenticate requires a Bearer session token. A revoked token is rejected
// before its signature or expiry is looked at. On success the caller's
// identity is stored on the echo context and on the request context.
func Authenticate(tokens ports.TokenService, registry ports.RevocationRegistry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.GateRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.Unauthorized("not authorized to access this route")
			}

			revoked, err := registry.IsRevoked(c.Request().Context(), raw)
			if err != nil {
				return err
			}
			if revoked {
				metrics.GateRejectionsTotal.WithLabelValues("revoked").Inc()
				return domain.Unauthorized("session closed, please log in again")
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, domain.ErrTokenExpired) {
					reason = "expired"
				}
				metrics.GateRejectionsTotal.WithLabelValues(reason).Inc()
				return domain.Unauthorized("invalid or expired token").WithCause(err)
			}

			p := domain.Principal{ID: claims.Subject, Role: claims.Role}
			c.Set(principalKey, p)
			c.Set(tokenKey, raw)
			c.SetRequest(c.Request().WithContext(domain.WithPrincipal(c.Request().Context(), p)))

			return next(c)
		}
	}
}

// PrincipalFrom returns the identity stored by Authenticate.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

// TokenFrom returns the raw session token accepted by Authenticate.
func TokenFrom(c echo.Context) string {
	tok, _ := c.Get(tokenKey).(string)
	return tok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
