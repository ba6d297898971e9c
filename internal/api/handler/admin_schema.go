package handler

import (
	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// --- Request types ---

type generateKeyRequest struct {
	Name          string   `json:"name" validate:"required"`
	Scopes        []string `json:"scopes"`
	ExpiresInDays *int     `json:"expires_in_days" validate:"omitempty,gte=1,lte=365"`
}

type updateKeyRequest struct {
	Name     *string  `json:"name"`
	Scopes   []string `json:"scopes"`
	IsActive *bool    `json:"is_active"`
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

// --- Response types ---

type listKeysResponse struct {
	Keys []ports.APIKeyInfo `json:"keys"`
}

type updateKeyResponse struct {
	KeyID   string `json:"key_id"`
	Changed bool   `json:"changed"`
}

type deletedUserResponse struct {
	Deleted *domain.User `json:"deleted"`
}
