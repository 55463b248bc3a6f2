package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureRoundTrip(t *testing.T) {
	svc := testSignatureService(t, 0)
	payload := segmentEncoding.EncodeToString([]byte(`{"identity":"u1"}`))

	sig, err := svc.Sign(payload)
	require.NoError(t, err)

	ok, err := svc.Verify(sig, payload)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignatureMismatchIsFalseNotError(t *testing.T) {
	svc := testSignatureService(t, 0)
	payload := segmentEncoding.EncodeToString([]byte("hello"))
	other := segmentEncoding.EncodeToString([]byte("hello "))

	sig, err := svc.Sign(payload)
	require.NoError(t, err)

	ok, err := svc.Verify(sig, other)
	require.NoError(t, err)
	assert.False(t, ok, "whitespace change must not verify")

	ok, err = testSignatureService(t, 1).Verify(sig, payload)
	require.NoError(t, err)
	assert.False(t, ok, "different key must not verify")
}

func TestSignatureMalformedBase64(t *testing.T) {
	svc := testSignatureService(t, 0)

	_, err := svc.Verify("!!!", segmentEncoding.EncodeToString([]byte("x")))
	require.Error(t, err)
	assert.True(t, IsCryptoError(err))

	_, err = svc.Sign("not base64 ***")
	require.Error(t, err)
	assert.True(t, IsCryptoError(err))
}

func TestSignWithoutPrivateKey(t *testing.T) {
	key := testKey(t, 0)
	verifyOnly, err := NewSignatureService(&key.PublicKey, nil)
	require.NoError(t, err)
	assert.False(t, verifyOnly.CanSign())

	_, err = verifyOnly.SignBytes([]byte("data"))
	require.Error(t, err)
	assert.True(t, IsCryptoError(err))

	sig, err := testSignatureService(t, 0).SignBytes([]byte("data"))
	require.NoError(t, err)
	ok, err := verifyOnly.VerifyBytes(sig, []byte("data"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewSignatureServiceRejectsMismatchedPair(t *testing.T) {
	_, err := NewSignatureService(&testKey(t, 0).PublicKey, testKey(t, 1))
	require.Error(t, err)
	assert.True(t, IsCryptoError(err))

	_, err = NewSignatureService(nil, nil)
	require.Error(t, err)
}

func TestLoadSignatureService(t *testing.T) {
	pub, priv, err := EncodeSigningKeyPair(testKey(t, 0))
	require.NoError(t, err)

	svc, err := LoadSignatureService(pub, priv)
	require.NoError(t, err)
	assert.True(t, svc.CanSign())

	sig, err := svc.SignBytes([]byte("payload"))
	require.NoError(t, err)
	ok, err := testSignatureService(t, 0).VerifyBytes(sig, []byte("payload"))
	require.NoError(t, err)
	assert.True(t, ok)

	verifyOnly, err := LoadSignatureService(pub, "")
	require.NoError(t, err)
	assert.False(t, verifyOnly.CanSign())
}

func TestLoadSignatureServiceRejectsBadMaterial(t *testing.T) {
	cases := map[string]struct {
		public  string
		private string
	}{
		"missing public":  {public: "", private: ""},
		"not base64":      {public: "%%%", private: ""},
		"not pem":         {public: "aGVsbG8=", private: ""},
		"garbage private": {public: mustPublic(t), private: "aGVsbG8="},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSignatureService(tc.public, tc.private)
			require.Error(t, err)
			assert.True(t, IsCryptoError(err))
		})
	}
}

func mustPublic(t *testing.T) string {
	t.Helper()
	pub, _, err := EncodeSigningKeyPair(testKey(t, 0))
	require.NoError(t, err)
	return pub
}
