package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error envelope does not decode: %v", err)
	}
	return rec.Code, resp
}

func TestErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{domain.ErrAuthenticationRequired, http.StatusUnauthorized, "authentication_required"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{domain.ErrInvalidAPIKey, http.StatusUnauthorized, "invalid_api_key"},
		{domain.ErrInvalidAPIKeyFormat, http.StatusUnauthorized, "invalid_api_key"},
		{domain.ErrAPIKeyInactive, http.StatusUnauthorized, "invalid_api_key"},
		{domain.ErrAPIKeyExpired, http.StatusUnauthorized, "invalid_api_key"},
		{domain.ErrWrongCredentialKind, http.StatusForbidden, "wrong_credential_kind"},
		{domain.ErrAdminRequired, http.StatusForbidden, "admin_required"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrAdventureNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrAPIKeyNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrNoCoverImage, http.StatusNotFound, "not_found"},
		{domain.ErrUserExists, http.StatusConflict, "conflict"},
		{domain.ErrConcurrentModification, http.StatusConflict, "conflict"},
		{domain.ErrSelfDeletion, http.StatusBadRequest, "validation_error"},
		{domain.ErrNodeIndexOutOfRange, http.StatusBadRequest, "validation_error"},
		{domain.ErrOptionIndexOutOfRange, http.StatusBadRequest, "validation_error"},
		{domain.ErrNoPromptAvailable, http.StatusBadRequest, "validation_error"},
		{domain.ErrInvalidParameter, http.StatusBadRequest, "validation_error"},
		{domain.ErrGeneratorTimeout, http.StatusGatewayTimeout, "generator_timeout"},
		{domain.ErrGeneratorFailure, http.StatusBadGateway, "generator_error"},
		{domain.ErrStorageFailure, http.StatusBadGateway, "storage_error"},
	}

	for _, tc := range cases {
		code, resp := renderError(t, tc.err)
		if code != tc.code {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.code, code)
		}
		if resp.Kind != tc.kind {
			t.Fatalf("%v: expected kind %q, got %q", tc.err, tc.kind, resp.Kind)
		}
		if resp.Error == "" {
			t.Fatalf("%v: expected a message in the envelope", tc.err)
		}
	}
}

func TestErrorHandler_UnknownKeyCredentialIs401(t *testing.T) {
	// The auth boundary wraps the lookup miss; the 401 mapping must win
	// over the 404 mapping of the admin lifecycle path.
	err := fmt.Errorf("%w: %w", domain.ErrInvalidAPIKey, domain.ErrAPIKeyNotFound)
	code, resp := renderError(t, err)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an unknown key credential, got %d", code)
	}
	if resp.Kind != "invalid_api_key" {
		t.Fatalf("expected invalid_api_key kind, got %q", resp.Kind)
	}
}

func TestErrorHandler_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: node 7", domain.ErrNodeIndexOutOfRange)
	code, resp := renderError(t, wrapped)
	if code != http.StatusBadRequest || resp.Kind != "validation_error" {
		t.Fatalf("wrapped domain error not unwrapped: %d %+v", code, resp)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	code, resp := renderError(t, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"))
	if code != http.StatusBadRequest || resp.Kind != "bad_request" {
		t.Fatalf("unexpected mapping: %d %+v", code, resp)
	}
	if resp.Error != "invalid payload" {
		t.Fatalf("expected message passthrough, got %q", resp.Error)
	}

	code, resp = renderError(t, echo.NewHTTPError(http.StatusNotFound, "not found"))
	if code != http.StatusNotFound || resp.Kind != "not_found" {
		t.Fatalf("unexpected mapping: %d %+v", code, resp)
	}
}

func TestErrorHandler_UnexpectedError(t *testing.T) {
	code, resp := renderError(t, errors.New("driver: connection reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if resp.Kind != "internal" {
		t.Fatalf("expected internal kind, got %q", resp.Kind)
	}
	if resp.Error != "internal server error" {
		t.Fatalf("internal cause must not leak, got %q", resp.Error)
	}
}
