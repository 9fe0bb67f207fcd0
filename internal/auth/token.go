package auth

import (
	"errors"
	"time"
)

var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
)

// TokenClaims is the verified content of a bearer token
type TokenClaims struct {
	Subject   string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
//
// VerifyToken fails with ErrMalformedToken, ErrExpiredToken or ErrInvalidSignature.
type TokenService interface {
	CreateToken(subject string) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
	TokenDuration() time.Duration
}
