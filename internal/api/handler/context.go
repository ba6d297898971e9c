package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/adventureapp/adventure-api/internal/api/middleware"
	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware.
// Absence means the middleware did not run; fail as unauthenticated rather
// than panic.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	principal, ok := c.Get(middleware.PrincipalKey).(domain.Principal)
	if !ok {
		return domain.Principal{}, domain.ErrAuthenticationRequired
	}
	return principal, nil
}
