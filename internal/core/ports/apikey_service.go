package ports

import (
	"context"
	"time"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// APIKeyInfo is the metadata view of a key. It never contains the plaintext
// secret or its digest.
type APIKeyInfo struct {
	KeyID     string     `json:"key_id"`
	Name      string     `json:"name"`
	Scopes    []string   `json:"scopes"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	IsActive  bool       `json:"is_active"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// GeneratedAPIKey is returned exactly once at creation; Secret is the only
// copy of the plaintext that will ever exist.
type GeneratedAPIKey struct {
	APIKeyInfo
	Secret string `json:"api_key"`
}

// APIKeyService manages the opaque-credential lifecycle.
type APIKeyService interface {
	Generate(ctx context.Context, name string, scopes []string, expiresInDays *int) (*GeneratedAPIKey, error)
	// Verify checks an opaque secret and returns the key identity. The
	// last_used timestamp is updated best-effort and never fails the call.
	Verify(ctx context.Context, secret string) (*domain.KeyIdentity, error)
	List(ctx context.Context) ([]APIKeyInfo, error)
	GetByID(ctx context.Context, keyID string) (*APIKeyInfo, error)
	// Update applies name/scopes/is_active changes and reports whether any
	// field was actually changed.
	Update(ctx context.Context, keyID string, patch APIKeyPatch) (bool, error)
	Deactivate(ctx context.Context, keyID string) (bool, error)
	// Delete performs a hard removal and reports whether a record existed.
	Delete(ctx context.Context, keyID string) (bool, error)
}
