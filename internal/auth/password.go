package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Password digest schemes.
const (
	// SchemeSHA256 is SHA-256(password || salt). It is a fast digest, not
	// a memory-hard KDF; prefer SchemeArgon2ID for new deployments.
	SchemeSHA256   = "sha256"
	SchemeArgon2ID = "argon2id"
)

// SaltSize is the number of random bytes in a fresh salt.
const SaltSize = 16

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// PasswordHasher digests plaintext credentials with a per-record salt.
type PasswordHasher struct {
	scheme string
}

// NewPasswordHasher returns a hasher for scheme; empty means SchemeSHA256.
func NewPasswordHasher(scheme string) (*PasswordHasher, error) {
	if scheme == "" {
		scheme = SchemeSHA256
	}
	if !knownScheme(scheme) {
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
	return &PasswordHasher{scheme: scheme}, nil
}

// Scheme names the scheme Hash applies.
func (h *PasswordHasher) Scheme() string {
	return h.scheme
}

// Hash digests password with salt using the hasher's scheme.
func (h *PasswordHasher) Hash(password string, salt []byte) []byte {
	return digest(h.scheme, password, salt)
}

// Compare recomputes the digest under scheme and compares in constant
// time. Records keep the scheme they were created with.
func (h *PasswordHasher) Compare(scheme string, stored []byte, password string, salt []byte) bool {
	if !knownScheme(scheme) {
		return false
	}
	return subtle.ConstantTimeCompare(stored, digest(scheme, password, salt)) == 1
}

func knownScheme(scheme string) bool {
	return scheme == SchemeSHA256 || scheme == SchemeArgon2ID
}

func digest(scheme, password string, salt []byte) []byte {
	if scheme == SchemeArgon2ID {
		return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	}
	sum := sha256.New()
	sum.Write([]byte(password))
	sum.Write(salt)
	return sum.Sum(nil)
}

// GenerateSalt reads SaltSize bytes from crypto/rand.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// EncodeSalt renders bytes for a text column.
func EncodeSalt(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeSalt is the inverse of EncodeSalt.
func DecodeSalt(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
