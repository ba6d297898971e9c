package domain

import "errors"

var ErrAuthenticationRequired = errors.New("authentication required")
var ErrWrongCredentialKind = errors.New("wrong credential kind")
var ErrAdminRequired = errors.New("admin access required")

// PrincipalKind discriminates the two credential kinds a request can carry.
type PrincipalKind string

const (
	PrincipalUser   PrincipalKind = "user"
	PrincipalAPIKey PrincipalKind = "api_key"
)

// KeyIdentity describes a verified API key acting as a principal.
type KeyIdentity struct {
	KeyID  string   `json:"key_id"`
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

// Principal is the resolved identity of an authenticated caller. Exactly one
// of UserID or Key is populated, according to Kind.
type Principal struct {
	Kind   PrincipalKind `json:"kind"`
	UserID string        `json:"user_id,omitempty"`
	Key    *KeyIdentity  `json:"key,omitempty"`
}

// ActorID returns the identity used for role and ownership resolution:
// the user id for user principals, the key id for API key principals.
func (p Principal) ActorID() string {
	if p.Kind == PrincipalAPIKey && p.Key != nil {
		return p.Key.KeyID
	}
	return p.UserID
}
