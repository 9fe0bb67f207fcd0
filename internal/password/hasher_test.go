package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T, algorithm string) *Hasher {
	t.Helper()
	h, err := NewHasher(algorithm, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestHasher_RoundTrip(t *testing.T) {
	for _, algorithm := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(algorithm, func(t *testing.T) {
			h := newTestHasher(t, algorithm)

			digest, err := h.Hash("p1-secret")
			require.NoError(t, err)

			assert.Contains(t, digest, "{"+algorithm+"}")
			assert.NotContains(t, digest, "p1-secret")
			assert.True(t, h.Verify("p1-secret", digest))
			assert.False(t, h.Verify("p2-secret", digest))
		})
	}
}

func TestHasher_Salted(t *testing.T) {
	h := newTestHasher(t, AlgorithmBcrypt)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same", first))
	assert.True(t, h.Verify("same", second))
}

func TestHasher_VerifiesEveryRegisteredAlgorithm(t *testing.T) {
	legacy := newTestHasher(t, AlgorithmArgon2id)
	current := newTestHasher(t, AlgorithmBcrypt)

	digest, err := legacy.Hash("migrate-me")
	require.NoError(t, err)

	assert.True(t, current.Verify("migrate-me", digest), "bcrypt hasher must still verify argon2id digests")
	assert.True(t, current.NeedsRehash(digest))
	assert.False(t, legacy.NeedsRehash(digest))
}

func TestHasher_RejectsUntaggedAndUnknownDigests(t *testing.T) {
	h := newTestHasher(t, AlgorithmBcrypt)

	raw, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, h.Verify("pw", string(raw)), "untagged digest")
	assert.False(t, h.Verify("pw", "{noop}pw"), "unknown algorithm")
	assert.False(t, h.Verify("pw", "{}"+string(raw)))
	assert.False(t, h.Verify("pw", ""))
	assert.True(t, h.NeedsRehash("garbage"))
}

func TestHasher_ArgonRejectsCorruptDigest(t *testing.T) {
	h := newTestHasher(t, AlgorithmArgon2id)

	assert.False(t, h.Verify("pw", "{argon2id}$argon2id$v=19$m=65536,t=3,p=4$!!$!!"))
	assert.False(t, h.Verify("pw", "{argon2id}$argon2i$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"))
}

func TestNewHasher_UnknownAlgorithm(t *testing.T) {
	_, err := NewHasher("md5", bcrypt.MinCost)
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}
