package main

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/redmonkez12/go-blog-api/internal/auth"
	"github.com/redmonkez12/go-blog-api/internal/config"
	"github.com/redmonkez12/go-blog-api/internal/database/dbtest"
	"github.com/redmonkez12/go-blog-api/internal/logging"
	"github.com/redmonkez12/go-blog-api/internal/password"
	"github.com/redmonkez12/go-blog-api/internal/user"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthService(t *testing.T) *auth.Service {
	t.Helper()

	hasher, err := password.NewHasher(password.AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	tokens, err := auth.NewJWTService([]byte(testSecret), time.Hour)
	require.NoError(t, err)

	svc, err := auth.NewService(user.NewRepository(dbtest.NewDB(t)), hasher, tokens, logging.NewLoggerWithWriter(io.Discard, true))
	require.NoError(t, err)
	return svc
}

func TestBootstrapUser_DefaultConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, cfg.Bootstrap.PasswordGenerated)

	svc := newTestAuthService(t)
	ctx := context.Background()

	var logs bytes.Buffer
	require.NoError(t, bootstrapUser(ctx, cfg.Bootstrap, svc, logging.NewLoggerWithWriter(&logs, true)))
	assert.Contains(t, logs.String(), cfg.Bootstrap.Password, "generated password is logged on creation")

	identity, err := svc.Authenticate(ctx, cfg.Bootstrap.Email, cfg.Bootstrap.Password)
	require.NoError(t, err)
	assert.Equal(t, cfg.Bootstrap.Email, identity.Email)

	// a restart generates a new password but keeps the existing account
	restarted, err := config.Load()
	require.NoError(t, err)

	logs.Reset()
	require.NoError(t, bootstrapUser(ctx, restarted.Bootstrap, svc, logging.NewLoggerWithWriter(&logs, true)))
	assert.NotContains(t, logs.String(), restarted.Bootstrap.Password)

	_, err = svc.Authenticate(ctx, cfg.Bootstrap.Email, cfg.Bootstrap.Password)
	assert.NoError(t, err)
}

func TestBootstrapUser_ConfiguredPassword(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	cfg := config.BootstrapConfig{Name: "Blog Admin", Email: "admin@example.com", Password: "configured-secret"}

	var logs bytes.Buffer
	require.NoError(t, bootstrapUser(ctx, cfg, svc, logging.NewLoggerWithWriter(&logs, true)))
	assert.Contains(t, logs.String(), "bootstrap user created")
	assert.NotContains(t, logs.String(), cfg.Password)

	_, err := svc.Authenticate(ctx, cfg.Email, cfg.Password)
	assert.NoError(t, err)
}
