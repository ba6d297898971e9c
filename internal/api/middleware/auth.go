package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adventureapp/adventure-api/internal/api/metrics"
	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// PrincipalKey is the context key the resolved principal is stored under.
const PrincipalKey = "principal"

// Auth resolves the bearer credential into a Principal and injects it into
// the request context. Both signed tokens and opaque API keys are accepted;
// the auth service discriminates by credential shape.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bearer, err := extractBearer(c)
			if err != nil {
				return err
			}

			principal, err := auth.Authenticate(c.Request().Context(), bearer)
			if strings.HasPrefix(bearer, domain.APIKeyPrefix) {
				metrics.KeyVerificationsTotal.WithLabelValues(verifyResult(err)).Inc()
			}
			if err != nil {
				return err
			}

			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

func verifyResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAPIKeyInactive):
		return "inactive"
	case errors.Is(err, domain.ErrAPIKeyExpired):
		return "expired"
	case errors.Is(err, domain.ErrAPIKeyNotFound):
		return "not_found"
	default:
		return "invalid"
	}
}

func extractBearer(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", domain.ErrAuthenticationRequired
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", domain.ErrAuthenticationRequired
	}
	return parts[1], nil
}
