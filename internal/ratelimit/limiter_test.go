package ratelimit

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "rate_limit:login:10.0.0.1", rateLimitKey("login", "10.0.0.1"))
}

func TestNoop_AlwaysAllows(t *testing.T) {
	allowed, err := Noop{}.Allow(context.Background(), "login", "ip")
	require.NoError(t, err)
	assert.True(t, allowed)
}

// fakeRedis keeps counters and TTLs in memory and only understands the
// MULTI block the limiter sends
type fakeRedis struct {
	redis.Cmdable

	now        time.Time
	counts     map[string]int64
	expiresAt  map[string]time.Time
	failExpire int // number of upcoming EXPIRE commands that fail
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		now:       time.Now(),
		counts:    map[string]int64{},
		expiresAt: map[string]time.Time{},
	}
}

func (f *fakeRedis) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	pipe := &fakePipe{}
	if err := fn(pipe); err != nil {
		return nil, err
	}

	var firstErr error
	for i, op := range pipe.ops {
		op(f)
		if err := pipe.cmds[i].Err(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return pipe.cmds, firstErr
}

func (f *fakeRedis) evict(key string) {
	if exp, ok := f.expiresAt[key]; ok && !f.now.Before(exp) {
		delete(f.counts, key)
		delete(f.expiresAt, key)
	}
}

func (f *fakeRedis) ttl(key string) (time.Duration, bool) {
	f.evict(key)
	exp, ok := f.expiresAt[key]
	if !ok {
		return 0, false
	}
	return exp.Sub(f.now), true
}

type fakePipe struct {
	redis.Pipeliner

	ops  []func(*fakeRedis)
	cmds []redis.Cmder
}

func (p *fakePipe) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incr", key)
	p.ops = append(p.ops, func(f *fakeRedis) {
		f.evict(key)
		f.counts[key]++
		cmd.SetVal(f.counts[key])
	})
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakePipe) ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, "expire", key, expiration, "nx")
	p.ops = append(p.ops, func(f *fakeRedis) {
		if f.failExpire > 0 {
			f.failExpire--
			cmd.SetErr(errors.New("LOADING Redis is loading the dataset in memory"))
			return
		}
		if _, ok := f.expiresAt[key]; ok {
			cmd.SetVal(false)
			return
		}
		f.expiresAt[key] = f.now.Add(expiration)
		cmd.SetVal(true)
	})
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func TestLimiter_CountsWithinWindow(t *testing.T) {
	client := newFakeRedis()
	limiter := NewLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "login", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, err := limiter.Allow(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	other, err := limiter.Allow(ctx, "signup", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, other, "purposes are counted separately")

	// later requests do not extend the window
	ttl, ok := client.ttl(rateLimitKey("login", "10.0.0.1"))
	require.True(t, ok)
	assert.Equal(t, time.Minute, ttl)
}

func TestLimiter_WindowResets(t *testing.T) {
	client := newFakeRedis()
	limiter := NewLimiter(client, 1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	require.False(t, allowed)

	client.now = client.now.Add(time.Minute)

	allowed, err = limiter.Allow(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_RecoversFromFailedExpire(t *testing.T) {
	client := newFakeRedis()
	client.failExpire = 1
	limiter := NewLimiter(client, 3, time.Minute)
	ctx := context.Background()
	key := rateLimitKey("login", "10.0.0.1")

	allowed, err := limiter.Allow(ctx, "login", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, allowed, "limiter errors let the request through")

	_, ok := client.ttl(key)
	require.False(t, ok)

	allowed, err = limiter.Allow(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)

	ttl, ok := client.ttl(key)
	require.True(t, ok, "the next request sets the missing TTL")
	assert.Equal(t, time.Minute, ttl)

	client.now = client.now.Add(time.Minute)
	allowed, err = limiter.Allow(ctx, "login", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), client.counts[key])
}

// TestLimiter_Redis runs against a live Redis when REDIS_TEST_ADDR is set
func TestLimiter_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	limiter := NewLimiter(client, 2, time.Minute)
	key := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, rateLimitKey("login", key)) })

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "login", key)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, err := limiter.Allow(ctx, "login", key)
	require.NoError(t, err)
	assert.False(t, allowed)

	ttl, err := client.TTL(ctx, rateLimitKey("login", key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	other, err := limiter.Allow(ctx, "signup", key)
	require.NoError(t, err)
	assert.True(t, other, "purposes are counted separately")
}
