package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// stubAuth implements ports.AuthService with canned responses.
type stubAuth struct {
	principals map[string]domain.Principal
	authErr    error

	admins map[string]bool
}

func (s *stubAuth) Register(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, errors.New("not implemented")
}

func (s *stubAuth) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, errors.New("not implemented")
}

func (s *stubAuth) Authenticate(_ context.Context, bearer string) (domain.Principal, error) {
	if s.authErr != nil {
		return domain.Principal{}, s.authErr
	}
	p, ok := s.principals[bearer]
	if !ok {
		return domain.Principal{}, domain.ErrAuthenticationRequired
	}
	return p, nil
}

func (s *stubAuth) RequireAdmin(_ context.Context, p domain.Principal) (string, error) {
	if !s.admins[p.ActorID()] {
		return "", domain.ErrAdminRequired
	}
	return p.ActorID(), nil
}

func (s *stubAuth) IsAdmin(_ context.Context, actorID string) bool {
	return s.admins[actorID]
}

func (s *stubAuth) CreateUser(context.Context, string, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuth) DeleteUser(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuth) RoleInfo(context.Context, domain.Principal) (*ports.RoleInfoResult, error) {
	return nil, errors.New("not implemented")
}

func newAuthStub() *stubAuth {
	return &stubAuth{
		principals: map[string]domain.Principal{
			"eyJ.token":  {Kind: domain.PrincipalUser, UserID: "user_1"},
			"ak_secret":  {Kind: domain.PrincipalAPIKey, Key: &domain.KeyIdentity{KeyID: "key_1", Name: "ci"}},
			"eyJ.admint": {Kind: domain.PrincipalUser, UserID: "admin_1"},
		},
		admins: map[string]bool{"admin_1": true},
	}
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authorization string, seed func(echo.Context)) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	if seed != nil {
		seed(c)
	}
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return c, h(c)
}

func TestAuth_TokenBearer(t *testing.T) {
	c, err := invoke(t, Auth(newAuthStub()), "Bearer eyJ.token", nil)
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	p, ok := c.Get(PrincipalKey).(domain.Principal)
	if !ok {
		t.Fatalf("principal not stored in context")
	}
	if p.Kind != domain.PrincipalUser || p.UserID != "user_1" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestAuth_APIKeyBearer(t *testing.T) {
	c, err := invoke(t, Auth(newAuthStub()), "Bearer ak_secret", nil)
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	p := c.Get(PrincipalKey).(domain.Principal)
	if p.Kind != domain.PrincipalAPIKey || p.Key == nil || p.Key.KeyID != "key_1" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	_, err := invoke(t, Auth(newAuthStub()), "", nil)
	if !errors.Is(err, domain.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	for _, header := range []string{"eyJ.token", "Basic eyJ.token", "Bearer"} {
		_, err := invoke(t, Auth(newAuthStub()), header, nil)
		if !errors.Is(err, domain.ErrAuthenticationRequired) {
			t.Fatalf("header %q: expected ErrAuthenticationRequired, got %v", header, err)
		}
	}
}

func TestAuth_CaseInsensitiveScheme(t *testing.T) {
	if _, err := invoke(t, Auth(newAuthStub()), "bearer eyJ.token", nil); err != nil {
		t.Fatalf("lowercase scheme must be accepted, got %v", err)
	}
}

func TestAuth_ServiceErrorPropagates(t *testing.T) {
	stub := newAuthStub()
	stub.authErr = domain.ErrAPIKeyInactive

	_, err := invoke(t, Auth(stub), "Bearer ak_secret", nil)
	if !errors.Is(err, domain.ErrAPIKeyInactive) {
		t.Fatalf("expected ErrAPIKeyInactive, got %v", err)
	}
}
