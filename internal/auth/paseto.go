package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	v4LocalHeader = "v4.local."
	// nonce (32) + authentication tag (32)
	v4LocalMinPayload = 64
)

// PasetoService handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	duration     time.Duration
	now          func() time.Time
}

func NewPasetoService(symmetricKey []byte, duration time.Duration) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("token duration must be positive, got %s", duration)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
		duration:     duration,
		now:          time.Now,
	}, nil
}

func (s *PasetoService) TokenDuration() time.Duration {
	return s.duration
}

// CreateToken generates a new PASETO v4.local token for subject
func (s *PasetoService) CreateToken(subject string) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(s.duration))
	token.SetSubject(subject)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken decrypts a PASETO v4.local token and returns the claims.
// A token that fails authentication is reported as ErrInvalidSignature.
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	if !strings.HasPrefix(tokenStr, v4LocalHeader) {
		return nil, ErrMalformedToken
	}

	body := strings.TrimPrefix(tokenStr, v4LocalHeader)
	if i := strings.IndexByte(body, '.'); i >= 0 {
		body = body[:i] // drop footer
	}
	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil || len(payload) < v4LocalMinPayload {
		return nil, ErrMalformedToken
	}

	// Expiry is checked below against the service clock
	parser := paseto.NewParserWithoutExpiryCheck()
	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrMalformedToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrMalformedToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrMalformedToken
	}

	if s.now().After(expiresAt) {
		return nil, ErrExpiredToken
	}

	return &TokenClaims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
