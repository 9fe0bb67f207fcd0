package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 32

// JWTService issues and verifies HS256-signed JWTs carrying sub, iat and exp
type JWTService struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewJWTService(secret []byte, duration time.Duration) (*JWTService, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", minSecretLen, len(secret))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("token duration must be positive, got %s", duration)
	}

	return &JWTService{
		secret:   secret,
		duration: duration,
		now:      time.Now,
	}, nil
}

func (s *JWTService) TokenDuration() time.Duration {
	return s.duration
}

// CreateToken signs a token for subject valid from now for the configured duration
func (s *JWTService) CreateToken(subject string) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken checks the signature and expiry of tokenStr and returns its claims
func (s *JWTService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, s.classify(tokenStr, err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrMalformedToken
	}

	return &TokenClaims{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// classify maps jwt errors onto the package's token errors.
// Once header and payload decode, any remaining failure is a signature failure,
// and an expired token reports ErrExpiredToken whether or not its signature holds.
func (s *JWTService) classify(tokenStr string, err error) error {
	claims, ok := unverifiedClaims(tokenStr)
	if !ok {
		return ErrMalformedToken
	}

	switch {
	case claims.ExpiresAt != nil && s.now().After(claims.ExpiresAt.Time):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenExpired):
		// the validator treats now == exp as expired
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformedToken
	}
}

// unverifiedClaims decodes the header and payload segments of tokenStr.
// Everything after the second dot is treated as the signature, so a
// corrupted signature never hides an intact header and payload.
func unverifiedClaims(tokenStr string) (*jwt.RegisteredClaims, bool) {
	parts := strings.SplitN(tokenStr, ".", 3)
	if len(parts) != 3 {
		return nil, false
	}

	claims := &jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser(jwt.WithStrictDecoding()).
		ParseUnverified(parts[0]+"."+parts[1]+".", claims)
	if err != nil {
		return nil, false
	}

	return claims, true
}
