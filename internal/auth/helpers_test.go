package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-auth/internal/clock"
)

var (
	testKeysOnce sync.Once
	testKeys     [2]*rsa.PrivateKey
)

func testKey(t *testing.T, index int) *rsa.PrivateKey {
	t.Helper()
	testKeysOnce.Do(func() {
		for i := range testKeys {
			key, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				panic(err)
			}
			testKeys[i] = key
		}
	})
	return testKeys[index]
}

func testSignatureService(t *testing.T, index int) *SignatureService {
	t.Helper()
	key := testKey(t, index)
	svc, err := NewSignatureService(&key.PublicKey, key)
	require.NoError(t, err)
	return svc
}

func testTokenService(t *testing.T, clk clock.Clock, ttl time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSignatureService(t, 0), TokenConfig{
		Issuer:   "campus-auth",
		Audience: "campus",
		TTL:      ttl,
	}, clk, nil)
	require.NoError(t, err)
	return svc
}
