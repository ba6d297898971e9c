package domain

import (
	"errors"
	"time"
)

// APIKeyPrefix is the fixed distinguishing prefix of opaque key secrets.
const APIKeyPrefix = "ak_"

var ErrInvalidAPIKeyFormat = errors.New("invalid api key format")
var ErrAPIKeyNotFound = errors.New("api key not found")
var ErrAPIKeyInactive = errors.New("api key is inactive")
var ErrAPIKeyExpired = errors.New("api key expired")

// ErrInvalidAPIKey marks a key-verification failure at the authentication
// boundary. Any credential failure presented as a bearer key collapses to
// this 401-class error; the underlying cause stays wrapped alongside it.
var ErrInvalidAPIKey = errors.New("invalid api key")

// APIKey is a long-lived opaque credential. Only the SHA-256 digest of the
// secret is persisted; the plaintext is returned once at creation and is
// unrecoverable afterwards.
type APIKey struct {
	ID        string     `json:"key_id" bson:"_id,omitempty"`
	Name      string     `json:"name" bson:"name"`
	KeyHash   string     `json:"-" bson:"key_hash"`
	Scopes    []string   `json:"scopes" bson:"scopes"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	IsActive  bool       `json:"is_active" bson:"is_active"`
	LastUsed  *time.Time `json:"last_used,omitempty" bson:"last_used,omitempty"`
}

// Expired reports whether the key is past its expiry at instant now.
// Keys without an expiry never expire.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
