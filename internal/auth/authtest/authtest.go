// Package authtest builds key material and services for tests. RSA key
// generation is slow, so keys are generated once per test binary.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/clock"
)

// Token constants shared by tests.
const (
	Issuer   = "campus-auth-test"
	Audience = "campus-test"
)

var (
	keysOnce sync.Once
	keys     [2]*rsa.PrivateKey
	keysErr  error
)

// RSAKey returns one of two cached 2048-bit test keys (index 0 or 1).
func RSAKey(t testing.TB, index int) *rsa.PrivateKey {
	t.Helper()
	keysOnce.Do(func() {
		for i := range keys {
			if keys[i], keysErr = rsa.GenerateKey(rand.Reader, 2048); keysErr != nil {
				return
			}
		}
	})
	if keysErr != nil {
		t.Fatalf("generating rsa key: %v", keysErr)
	}
	return keys[index]
}

// SignatureService returns a signing-capable service over RSAKey(index).
func SignatureService(t testing.TB, index int) *auth.SignatureService {
	t.Helper()
	key := RSAKey(t, index)
	svc, err := auth.NewSignatureService(&key.PublicKey, key)
	if err != nil {
		t.Fatalf("NewSignatureService: %v", err)
	}
	return svc
}

// TokenService returns a token service over the primary test key.
func TokenService(t testing.TB, clk clock.Clock, ttl time.Duration) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService(SignatureService(t, 0), auth.TokenConfig{
		Issuer:   Issuer,
		Audience: Audience,
		TTL:      ttl,
	}, clk, nil)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

// EncryptionService returns a service over a freshly generated age pair.
func EncryptionService(t testing.TB) *auth.EncryptionService {
	t.Helper()
	pub, priv, err := auth.GenerateEncryptionKeyPair()
	if err != nil {
		t.Fatalf("GenerateEncryptionKeyPair: %v", err)
	}
	svc, err := auth.LoadEncryptionService(pub, priv)
	if err != nil {
		t.Fatalf("LoadEncryptionService: %v", err)
	}
	return svc
}
