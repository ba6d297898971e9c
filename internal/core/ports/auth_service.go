package ports

import (
	"context"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// AuthService covers registration, login, credential verification and the
// role-based authorization gate.
type AuthService interface {
	// Register creates an account and immediately issues an access token.
	Register(ctx context.Context, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// Authenticate resolves a raw bearer credential into a Principal. A
	// missing or unrecognized credential fails with
	// domain.ErrAuthenticationRequired.
	Authenticate(ctx context.Context, bearer string) (domain.Principal, error)

	// RequireAdmin resolves the principal's acting identity to a User record
	// and verifies the admin role. A missing user resolves to "not admin",
	// never an internal error.
	RequireAdmin(ctx context.Context, p domain.Principal) (string, error)

	// IsAdmin reports whether the acting identity has the admin role.
	IsAdmin(ctx context.Context, actorID string) bool

	// CreateUser creates an account with an explicit role (admin operation).
	CreateUser(ctx context.Context, email, password, role string) (*domain.User, error)

	// DeleteUser removes a user account. Admins cannot delete themselves.
	// Returns the deleted user's record.
	DeleteUser(ctx context.Context, adminID, userID string) (*domain.User, error)

	// RoleInfo reports the resolved role of the acting identity, for the
	// admin debug endpoint.
	RoleInfo(ctx context.Context, p domain.Principal) (*RoleInfoResult, error)
}

// RoleInfoResult is the debug view of an acting identity's role resolution.
type RoleInfoResult struct {
	ActorID string               `json:"actor_id"`
	Kind    domain.PrincipalKind `json:"kind"`
	Role    string               `json:"role,omitempty"`
	IsAdmin bool                 `json:"is_admin"`
	Email   string               `json:"email,omitempty"`
}
