package ports

import (
	"context"
	"time"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// APIKeyPatch carries the restricted set of updatable key fields. Nil fields
// are left untouched.
type APIKeyPatch struct {
	Name     *string
	Scopes   []string
	IsActive *bool
}

// Empty reports whether the patch changes nothing.
func (p APIKeyPatch) Empty() bool {
	return p.Name == nil && p.Scopes == nil && p.IsActive == nil
}

// APIKeyRepository defines persistence operations for API keys.
type APIKeyRepository interface {
	Insert(ctx context.Context, key *domain.APIKey) (string, error)
	// FindByHash performs a unique-field lookup by secret digest.
	FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	FindByID(ctx context.Context, id string) (*domain.APIKey, error)
	List(ctx context.Context) ([]*domain.APIKey, error)
	// Update applies the patch and reports whether any field actually changed.
	Update(ctx context.Context, id string, patch APIKeyPatch) (bool, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
	// Delete removes the key document. It reports whether a record existed.
	Delete(ctx context.Context, id string) (bool, error)
}
