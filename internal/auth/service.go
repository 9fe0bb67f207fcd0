package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog-api/internal/logging"
	"github.com/redmonkez12/go-blog-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// UserStore is the credential store used by Service
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// PasswordHasher hashes new credentials and verifies stored digests
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
	NeedsRehash(digest string) bool
}

// Service handles authentication business logic
type Service struct {
	users        UserStore
	hasher       PasswordHasher
	tokenService TokenService
	logger       *logging.Logger
	// dummyDigest is verified against when an email is unknown so both
	// failure paths pay for one hash comparison
	dummyDigest string
}

func NewService(users UserStore, hasher PasswordHasher, tokenService TokenService, logger *logging.Logger) (*Service, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	return &Service{
		users:        users,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
		dummyDigest:  dummy,
	}, nil
}

// Authenticate checks email and password and returns the matching identity.
// Unknown emails and wrong passwords both fail with ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, existingUser.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(existingUser.PasswordHash) {
		s.rehash(ctx, existingUser, password)
	}

	return newIdentity(existingUser), nil
}

// Register creates a new user account and returns its identity
func (s *Service) Register(ctx context.Context, name, email, password string) (*Identity, error) {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailAlreadyInUse
	case !errors.Is(err, user.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// A concurrent signup for the same email can pass the check above;
	// the store's unique constraint decides the winner.
	newUser, err := s.users.Create(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newIdentity(newUser), nil
}

// GenerateToken issues a bearer token whose subject is the identity's email
func (s *Service) GenerateToken(identity *Identity) (string, error) {
	token, err := s.tokenService.CreateToken(identity.Email)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}
	return token, nil
}

// TokenDuration is the lifetime of tokens returned by GenerateToken
func (s *Service) TokenDuration() time.Duration {
	return s.tokenService.TokenDuration()
}

// ValidateToken verifies token and resolves its subject to a live user.
// Verifier failures are wrapped in ErrUnauthenticated; a subject with no
// user fails with ErrUserNotFound. Any other error is a store failure.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokenService.VerifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	existingUser, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return newIdentity(existingUser), nil
}

// Profile reloads the user behind identity
func (s *Service) Profile(ctx context.Context, identity *Identity) (*user.User, error) {
	existingUser, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return existingUser, nil
}

// EnsureUser creates the account when no user has email yet.
// It reports whether a user was created.
func (s *Service) EnsureUser(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.Register(ctx, name, email, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrEmailAlreadyInUse):
		return false, nil
	default:
		return false, err
	}
}

// rehash upgrades a digest produced by a non-default algorithm.
// Failure is logged and does not affect the login.
func (s *Service) rehash(ctx context.Context, u *user.User, password string) {
	digest, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, u.ID, digest)
	}
	if err != nil {
		s.logger.Warn("failed to upgrade password hash", "user_id", u.ID, "error", err)
		return
	}
	s.logger.Info("upgraded password hash", "user_id", u.ID)
}
