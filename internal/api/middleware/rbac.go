package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// ActorIDKey is the context key the verified admin actor id is stored under.
const ActorIDKey = "actor_id"

// RequireAdmin gates a route group to admin principals. Runs after Auth.
func RequireAdmin(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := c.Get(PrincipalKey).(domain.Principal)
			if !ok {
				return domain.ErrAuthenticationRequired
			}

			actorID, err := auth.RequireAdmin(c.Request().Context(), principal)
			if err != nil {
				return err
			}

			c.Set(ActorIDKey, actorID)
			return next(c)
		}
	}
}

// RequireUser gates a route to user principals; API key callers are
// rejected with the credential-kind error.
func RequireUser() echo.MiddlewareFunc {
	return requireKind(domain.PrincipalUser)
}

// RequireAPIKey is the inverse gate: API key principals only.
func RequireAPIKey() echo.MiddlewareFunc {
	return requireKind(domain.PrincipalAPIKey)
}

func requireKind(kind domain.PrincipalKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := c.Get(PrincipalKey).(domain.Principal)
			if !ok {
				return domain.ErrAuthenticationRequired
			}
			if principal.Kind != kind {
				return domain.ErrWrongCredentialKind
			}
			return next(c)
		}
	}
}
