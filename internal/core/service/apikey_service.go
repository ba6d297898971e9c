package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
	"github.com/adventureapp/adventure-api/internal/pkg/sanitize"
)

const (
	secretEntropyBytes = 32
	maxExpiryDays      = 365
)

// APIKeyService implements the opaque-credential lifecycle. Secrets carry
// the fixed "ak_" prefix; only their SHA-256 digest is ever persisted.
type APIKeyService struct {
	repo   ports.APIKeyRepository
	tasks  ports.TaskQueue
	logger zerolog.Logger
}

func NewAPIKeyService(repo ports.APIKeyRepository, tasks ports.TaskQueue, logger zerolog.Logger) *APIKeyService {
	return &APIKeyService{repo: repo, tasks: tasks, logger: logger}
}

func (s *APIKeyService) Generate(ctx context.Context, name string, scopes []string, expiresInDays *int) (*ports.GeneratedAPIKey, error) {
	name, err := sanitize.Name(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
	}

	clean := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scope, err := sanitize.Name(scope)
		if err != nil {
			return nil, fmt.Errorf("%w: scope: %v", domain.ErrInvalidParameter, err)
		}
		clean = append(clean, scope)
	}

	var expiresAt *time.Time
	if expiresInDays != nil {
		if *expiresInDays <= 0 || *expiresInDays > maxExpiryDays {
			return nil, fmt.Errorf("%w: expires_in_days must be between 1 and %d", domain.ErrInvalidParameter, maxExpiryDays)
		}
		t := time.Now().UTC().AddDate(0, 0, *expiresInDays)
		expiresAt = &t
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}

	key := &domain.APIKey{
		Name:      name,
		KeyHash:   hashSecret(secret),
		Scopes:    clean,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}

	id, err := s.repo.Insert(ctx, key)
	if err != nil {
		return nil, err
	}
	key.ID = id

	s.logger.Info().Str("key_id", id).Str("name", name).Msg("api key generated")

	return &ports.GeneratedAPIKey{
		APIKeyInfo: toKeyInfo(key),
		Secret:     secret,
	}, nil
}

// Verify checks an opaque secret against the stored digests. Inactive,
// expired and unknown keys each fail with a distinct reason. The last_used
// update is best-effort: it is queued in the background and a failure never
// fails the verification.
func (s *APIKeyService) Verify(ctx context.Context, secret string) (*domain.KeyIdentity, error) {
	if !strings.HasPrefix(secret, domain.APIKeyPrefix) {
		return nil, domain.ErrInvalidAPIKeyFormat
	}

	key, err := s.repo.FindByHash(ctx, hashSecret(secret))
	if err != nil {
		return nil, err
	}

	if !key.IsActive {
		return nil, domain.ErrAPIKeyInactive
	}
	if key.Expired(time.Now().UTC()) {
		return nil, domain.ErrAPIKeyExpired
	}

	keyID := key.ID
	s.tasks.Submit(keyID, func(ctx context.Context) error {
		if err := s.repo.TouchLastUsed(ctx, keyID, time.Now().UTC()); err != nil {
			s.logger.Warn().Err(err).Str("key_id", keyID).Msg("failed to update last_used")
		}
		return nil
	})

	return &domain.KeyIdentity{KeyID: key.ID, Name: key.Name, Scopes: key.Scopes}, nil
}

func (s *APIKeyService) List(ctx context.Context) ([]ports.APIKeyInfo, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]ports.APIKeyInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, toKeyInfo(key))
	}
	return infos, nil
}

func (s *APIKeyService) GetByID(ctx context.Context, keyID string) (*ports.APIKeyInfo, error) {
	key, err := s.repo.FindByID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	info := toKeyInfo(key)
	return &info, nil
}

func (s *APIKeyService) Update(ctx context.Context, keyID string, patch ports.APIKeyPatch) (bool, error) {
	if patch.Name != nil {
		name, err := sanitize.Name(*patch.Name)
		if err != nil {
			return false, fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
		}
		patch.Name = &name
	}
	if patch.Empty() {
		return false, nil
	}
	return s.repo.Update(ctx, keyID, patch)
}

func (s *APIKeyService) Deactivate(ctx context.Context, keyID string) (bool, error) {
	inactive := false
	return s.repo.Update(ctx, keyID, ports.APIKeyPatch{IsActive: &inactive})
}

func (s *APIKeyService) Delete(ctx context.Context, keyID string) (bool, error) {
	existed, err := s.repo.Delete(ctx, keyID)
	if err != nil {
		return false, err
	}
	if existed {
		s.logger.Info().Str("key_id", keyID).Msg("api key deleted")
	}
	return existed, nil
}

func generateSecret() (string, error) {
	b := make([]byte, secretEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return domain.APIKeyPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func toKeyInfo(key *domain.APIKey) ports.APIKeyInfo {
	return ports.APIKeyInfo{
		KeyID:     key.ID,
		Name:      key.Name,
		Scopes:    key.Scopes,
		ExpiresAt: key.ExpiresAt,
		CreatedAt: key.CreatedAt,
		IsActive:  key.IsActive,
		LastUsed:  key.LastUsed,
	}
}
