package ports

import (
	"context"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// FindByEmail performs a case-insensitive unique-field lookup.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Delete removes the user document. It reports whether a record existed.
	Delete(ctx context.Context, id string) (bool, error)
}
