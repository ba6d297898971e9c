package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors: a
// machine-readable kind plus a human-readable message.
type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"kind": "...", "error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, kind, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Kind: kind, Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind := "bad_request"
		if he.Code == http.StatusNotFound {
			kind = "not_found"
		}
		return he.Code, kind, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return http.StatusUnauthorized, "authentication_required", "authentication required"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid credentials"
	// ErrInvalidAPIKey must resolve before the not-found group: an unknown
	// key presented as a credential wraps ErrAPIKeyNotFound but is a 401.
	case errors.Is(err, domain.ErrInvalidAPIKey),
		errors.Is(err, domain.ErrInvalidAPIKeyFormat),
		errors.Is(err, domain.ErrAPIKeyInactive),
		errors.Is(err, domain.ErrAPIKeyExpired):
		return http.StatusUnauthorized, "invalid_api_key", "invalid api key"
	case errors.Is(err, domain.ErrWrongCredentialKind):
		return http.StatusForbidden, "wrong_credential_kind", "operation not available for this credential kind"
	case errors.Is(err, domain.ErrAdminRequired):
		return http.StatusForbidden, "admin_required", "admin access required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", "access forbidden"
	case errors.Is(err, domain.ErrAdventureNotFound):
		return http.StatusNotFound, "not_found", "adventure not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "not_found", "user not found"
	case errors.Is(err, domain.ErrAPIKeyNotFound):
		return http.StatusNotFound, "not_found", "api key not found"
	case errors.Is(err, domain.ErrNoCoverImage):
		return http.StatusNotFound, "not_found", "adventure has no cover image"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "conflict", "user already exists"
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict, "conflict", "adventure was modified concurrently"
	case errors.Is(err, domain.ErrSelfDeletion):
		return http.StatusBadRequest, "validation_error", err.Error()
	case errors.Is(err, domain.ErrNodeIndexOutOfRange),
		errors.Is(err, domain.ErrOptionIndexOutOfRange),
		errors.Is(err, domain.ErrNoPromptAvailable),
		errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest, "validation_error", err.Error()
	case errors.Is(err, domain.ErrGeneratorTimeout):
		return http.StatusGatewayTimeout, "generator_timeout", "generation timed out"
	case errors.Is(err, domain.ErrGeneratorFailure):
		return http.StatusBadGateway, "generator_error", "generation failed"
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusBadGateway, "storage_error", "storage operation failed"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal", "internal server error"
}
