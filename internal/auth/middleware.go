package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/go-blog-api/internal/httputil"
	"github.com/redmonkez12/go-blog-api/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

const bearerPrefix = "Bearer "

// TokenValidator resolves a bearer token to an identity
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Identity, error)
}

// Middleware attaches the caller's identity to requests
type Middleware struct {
	validator TokenValidator
}

func NewMiddleware(validator TokenValidator) *Middleware {
	return &Middleware{validator: validator}
}

// Authenticate resolves the bearer token, if any, and attaches the identity
// to the request context. Missing or invalid tokens leave the request
// anonymous; whether that is acceptable is decided by Policy.
// A store failure while resolving the token fails the request with 503.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.validator.ValidateToken(r.Context(), token)
		if err != nil {
			logger := logging.GetLoggerFromContext(r.Context())

			if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrUserNotFound) {
				logger.Warn("received invalid auth token", "reason", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			logger.Error("failed to resolve auth token", "error", err.Error())
			httputil.RespondErrorWithCode(w, "identity could not be resolved, try again later", httputil.CodeIdentityUnavailable, http.StatusServiceUnavailable)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// ContextWithIdentity returns a copy of ctx carrying identity
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFromContext extracts the identity attached by Authenticate
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	return identity, ok && identity != nil
}

// IdentityHandlerFunc is a handler that receives the caller's identity
type IdentityHandlerFunc func(w http.ResponseWriter, r *http.Request, identity *Identity)

// WithIdentity adapts fn to http.HandlerFunc, passing the resolved identity
// explicitly. Requests without one are rejected with 401.
func WithIdentity(fn IdentityHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			respondUnauthenticated(w)
			return
		}
		fn(w, r, identity)
	}
}

func respondUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="blog"`)
	httputil.RespondErrorWithCode(w, "authentication required", httputil.CodeUnauthenticated, http.StatusUnauthorized)
}
