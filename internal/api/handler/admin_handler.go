package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adventureapp/adventure-api/internal/api/middleware"
	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// AdminHandler handles the admin-gated surface: API key lifecycle, user
// management and the role debug endpoint.
type AdminHandler struct {
	keys ports.APIKeyService
	auth ports.AuthService
}

func NewAdminHandler(keys ports.APIKeyService, auth ports.AuthService) *AdminHandler {
	return &AdminHandler{keys: keys, auth: auth}
}

// GenerateKey handles POST /admin/api-keys. The response carries the
// plaintext secret exactly once; it cannot be retrieved again.
//
// @Summary      Generate a new API key
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateKeyRequest  true  "Key parameters"
// @Success      201   {object}  ports.GeneratedAPIKey
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /admin/api-keys [post]
func (h *AdminHandler) GenerateKey(c echo.Context) error {
	var req generateKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	key, err := h.keys.Generate(c.Request().Context(), req.Name, req.Scopes, req.ExpiresInDays)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, key)
}

// ListKeys handles GET /admin/api-keys. Metadata only, never secrets.
//
// @Summary      List API keys
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listKeysResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/api-keys [get]
func (h *AdminHandler) ListKeys(c echo.Context) error {
	keys, err := h.keys.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listKeysResponse{Keys: keys})
}

// GetKey handles GET /admin/api-keys/:id.
//
// @Summary      Get one API key's metadata
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Key id"
// @Success      200  {object}  ports.APIKeyInfo
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/api-keys/{id} [get]
func (h *AdminHandler) GetKey(c echo.Context) error {
	key, err := h.keys.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, key)
}

// UpdateKey handles PATCH /admin/api-keys/:id. Only name, scopes and the
// active flag are updatable.
//
// @Summary      Update an API key's metadata
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Key id"
// @Param        body  body      updateKeyRequest  true  "Fields to change"
// @Success      200   {object}  updateKeyResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/api-keys/{id} [patch]
func (h *AdminHandler) UpdateKey(c echo.Context) error {
	var req updateKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	changed, err := h.keys.Update(c.Request().Context(), c.Param("id"), ports.APIKeyPatch{
		Name:     req.Name,
		Scopes:   req.Scopes,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateKeyResponse{KeyID: c.Param("id"), Changed: changed})
}

// DeactivateKey handles PATCH /admin/api-keys/:id/deactivate.
//
// @Summary      Deactivate an API key
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Key id"
// @Success      200  {object}  updateKeyResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/api-keys/{id}/deactivate [patch]
func (h *AdminHandler) DeactivateKey(c echo.Context) error {
	changed, err := h.keys.Deactivate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateKeyResponse{KeyID: c.Param("id"), Changed: changed})
}

// DeleteKey handles DELETE /admin/api-keys/:id.
//
// @Summary      Delete an API key permanently
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Key id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/api-keys/{id} [delete]
func (h *AdminHandler) DeleteKey(c echo.Context) error {
	existed, err := h.keys.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !existed {
		return domain.ErrAPIKeyNotFound
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateUser handles POST /admin/users: account creation with an explicit
// role.
//
// @Summary      Create a user with an explicit role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.auth.CreateUser(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// DeleteUser handles DELETE /admin/users/:id. Admins cannot delete their own
// account.
//
// @Summary      Delete a user account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  deletedUserResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	adminID, _ := c.Get(middleware.ActorIDKey).(string)

	user, err := h.auth.DeleteUser(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedUserResponse{Deleted: user})
}

// UserRole handles GET /admin/debug/user-role: reports how the acting
// identity's role resolves.
//
// @Summary      Debug the acting identity's role resolution
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.RoleInfoResult
// @Failure      403  {object}  map[string]string
// @Router       /admin/debug/user-role [get]
func (h *AdminHandler) UserRole(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	info, err := h.auth.RoleInfo(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}
