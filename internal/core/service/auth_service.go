package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
	"github.com/adventureapp/adventure-api/internal/pkg/sanitize"
)

// jwtShapePrefix is the structural marker of a compact JWS: the base64url
// encoding of `{"` at the start of the header segment.
const jwtShapePrefix = "eyJ"

const defaultTokenTTL = 12 * 7 * 24 * time.Hour // 12 weeks

// keyVerifier is the slice of the API key service the verifier needs.
type keyVerifier interface {
	Verify(ctx context.Context, secret string) (*domain.KeyIdentity, error)
}

// AuthService implements registration, login, credential verification and
// the admin gate.
type AuthService struct {
	users     ports.UserRepository
	keys      keyVerifier
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, keys keyVerifier, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{users: users, keys: keys, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.createUser(ctx, email, password, domain.RoleUser)
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return token, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email, err := sanitize.Email(email)
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Authenticate resolves a bearer credential by structural shape: signed
// tokens are tried first, opaque keys second. Anything else fails with
// ErrAuthenticationRequired.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (domain.Principal, error) {
	if bearer == "" {
		return domain.Principal{}, domain.ErrAuthenticationRequired
	}

	if strings.HasPrefix(bearer, jwtShapePrefix) {
		userID, err := s.decodeToken(bearer)
		if err != nil {
			return domain.Principal{}, domain.ErrAuthenticationRequired
		}
		return domain.Principal{Kind: domain.PrincipalUser, UserID: userID}, nil
	}

	if strings.HasPrefix(bearer, domain.APIKeyPrefix) {
		identity, err := s.keys.Verify(ctx, bearer)
		if err != nil {
			// An unknown, inactive or expired key presented as a credential
			// is an authentication failure, not a lookup miss. The cause
			// stays wrapped for metrics.
			return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrInvalidAPIKey, err)
		}
		return domain.Principal{Kind: domain.PrincipalAPIKey, Key: identity}, nil
	}

	return domain.Principal{}, domain.ErrAuthenticationRequired
}

// RequireAdmin resolves the acting identity and verifies the admin role.
// A missing user record resolves to "not admin" rather than an error.
func (s *AuthService) RequireAdmin(ctx context.Context, p domain.Principal) (string, error) {
	actorID := p.ActorID()
	if actorID == "" || !s.IsAdmin(ctx, actorID) {
		return "", domain.ErrAdminRequired
	}
	return actorID, nil
}

func (s *AuthService) IsAdmin(ctx context.Context, actorID string) bool {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return false
	}
	return user.Role == domain.RoleAdmin
}

func (s *AuthService) CreateUser(ctx context.Context, email, password, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidParameter, role)
	}
	return s.createUser(ctx, email, password, role)
}

func (s *AuthService) DeleteUser(ctx context.Context, adminID, userID string) (*domain.User, error) {
	if userID == adminID {
		return nil, domain.ErrSelfDeletion
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	existed, err := s.users.Delete(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, domain.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", userID).Str("admin_id", adminID).Msg("user deleted")
	return user, nil
}

func (s *AuthService) RoleInfo(ctx context.Context, p domain.Principal) (*ports.RoleInfoResult, error) {
	actorID := p.ActorID()
	info := &ports.RoleInfoResult{ActorID: actorID, Kind: p.Kind}

	user, err := s.users.FindByID(ctx, actorID)
	if err == nil {
		info.Role = user.Role
		info.Email = user.Email
		info.IsAdmin = user.Role == domain.RoleAdmin
	}
	return info, nil
}

func (s *AuthService) createUser(ctx context.Context, email, password, role string) (*domain.User, error) {
	email, err := sanitize.Email(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password cannot be empty", domain.ErrInvalidParameter)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	return s.users.Create(ctx, user)
}

func (s *AuthService) generateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) decodeToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return sub, nil
}
