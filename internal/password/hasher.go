// Package password hashes and verifies user credentials.
//
// Digests are stored as "{algorithm}encoded" so that verification can
// dispatch on the algorithm that produced them while new hashes use the
// configured default.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown password hash algorithm")
	ErrMalformedDigest  = errors.New("malformed password digest")
)

// Argon2id parameters - tuned for security vs performance balance
// Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Encoder produces and checks digests for a single algorithm
type Encoder interface {
	Encode(plaintext string) (string, error)
	Matches(plaintext, encoded string) bool
}

// Hasher delegates to an Encoder selected by the digest's algorithm tag
type Hasher struct {
	defaultID string
	encoders  map[string]Encoder
}

// NewHasher returns a Hasher that creates new digests with algorithm and
// verifies bcrypt and argon2id digests. bcryptCost outside bcrypt's range
// falls back to bcrypt.DefaultCost.
func NewHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	h := &Hasher{
		defaultID: algorithm,
		encoders: map[string]Encoder{
			AlgorithmBcrypt:   BcryptEncoder{Cost: bcryptCost},
			AlgorithmArgon2id: Argon2idEncoder{},
		},
	}

	if _, ok := h.encoders[algorithm]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	return h, nil
}

// Hash returns a salted, tagged digest of plaintext
func (h *Hasher) Hash(plaintext string) (string, error) {
	encoded, err := h.encoders[h.defaultID].Encode(plaintext)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return "{" + h.defaultID + "}" + encoded, nil
}

// Verify reports whether plaintext matches digest
func (h *Hasher) Verify(plaintext, digest string) bool {
	id, encoded, err := splitDigest(digest)
	if err != nil {
		return false
	}

	encoder, ok := h.encoders[id]
	if !ok {
		return false
	}

	return encoder.Matches(plaintext, encoded)
}

// NeedsRehash reports whether digest was produced by an algorithm other than the default
func (h *Hasher) NeedsRehash(digest string) bool {
	id, _, err := splitDigest(digest)
	return err != nil || id != h.defaultID
}

func splitDigest(digest string) (string, string, error) {
	if !strings.HasPrefix(digest, "{") {
		return "", "", ErrMalformedDigest
	}

	end := strings.IndexByte(digest, '}')
	if end <= 1 {
		return "", "", ErrMalformedDigest
	}

	return digest[1:end], digest[end+1:], nil
}

// BcryptEncoder hashes with bcrypt at Cost
type BcryptEncoder struct {
	Cost int
}

func (e BcryptEncoder) Encode(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), e.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (e BcryptEncoder) Matches(plaintext, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
}

// Argon2idEncoder hashes with argon2id using the PHC string format
type Argon2idEncoder struct{}

func (Argon2idEncoder) Encode(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(plaintext), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func (Argon2idEncoder) Matches(plaintext, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != AlgorithmArgon2id {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	actual := argon2.IDKey([]byte(plaintext), salt, iterations, memory, threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(expected, actual) == 1
}
