package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/usermanagement/user-api/internal/api/metrics"
	"github.com/usermanagement/user-api/internal/core/domain"
)

// Authorize enforces role-based access control. It must run after
// Authenticate.
func Authorize(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				metrics.GateRejectionsTotal.WithLabelValues("no_identity").Inc()
				return domain.Unauthorized("")
			}
			if _, ok := allowed[p.Role]; !ok {
				metrics.GateRejectionsTotal.WithLabelValues("forbidden_role").Inc()
				return domain.Forbidden(fmt.Sprintf("role '%s' is not allowed to perform this action", p.Role))
			}
			return next(c)
		}
	}
}
