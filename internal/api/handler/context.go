package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/usermanagement/user-api/internal/api/middleware"
	"github.com/usermanagement/user-api/internal/core/domain"
)

// ctxPrincipal returns the identity injected by the Authenticate middleware.
// Its absence means the route was wired without the gate; reject with 401
// rather than act anonymously.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.ID == "" {
		return domain.Principal{}, domain.Unauthorized("")
	}
	return p, nil
}
