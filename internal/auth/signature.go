package auth

import (
	"crypto"
	"crypto/rsa"
	"encoding/base64"
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
)

// pssSaltLength is fixed so signatures from every process verify the
// same way; it equals the SHA-256 output size.
const pssSaltLength = 32

// segmentEncoding is used for every base64 value this package emits.
var segmentEncoding = base64.RawURLEncoding

// Signing contexts prefix the signed bytes of each artifact kind so a
// token signature never verifies as an envelope signature or the
// reverse. Neither prefix appears on the wire.
var (
	tokenContext    = []byte("campus-auth/token\x00")
	envelopeContext = []byte("campus-auth/payload\x00")
)

func signingInput(context, body []byte) []byte {
	out := make([]byte, 0, len(context)+len(body))
	return append(append(out, context...), body...)
}

var signingMethod = &jwt.SigningMethodRSAPSS{
	SigningMethodRSA: &jwt.SigningMethodRSA{Name: "PS256", Hash: crypto.SHA256},
	Options:          &rsa.PSSOptions{SaltLength: pssSaltLength},
	VerifyOptions:    &rsa.PSSOptions{SaltLength: pssSaltLength},
}

// SignatureService produces and checks detached RSA-PSS signatures. It
// is immutable after construction and safe for concurrent use.
type SignatureService struct {
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// NewSignatureService binds a keypair. The private key may be nil for a
// verify-only service.
func NewSignatureService(public *rsa.PublicKey, private *rsa.PrivateKey) (*SignatureService, error) {
	if public == nil {
		return nil, cryptoError("load", errors.New("public key required"))
	}
	if private != nil && !private.PublicKey.Equal(public) {
		return nil, cryptoError("load", errors.New("private key does not match public key"))
	}
	return &SignatureService{public: public, private: private}, nil
}

// LoadSignatureService parses base64-encoded PEM key material. An empty
// privateB64 yields a verify-only service.
func LoadSignatureService(publicB64, privateB64 string) (*SignatureService, error) {
	public, err := decodeRSAPublicKey(publicB64)
	if err != nil {
		return nil, err
	}
	var private *rsa.PrivateKey
	if privateB64 != "" {
		if private, err = decodeRSAPrivateKey(privateB64); err != nil {
			return nil, err
		}
	}
	return NewSignatureService(public, private)
}

// CanSign reports whether a private key is bound.
func (s *SignatureService) CanSign() bool {
	return s != nil && s.private != nil
}

// SignBytes signs payload exactly as given.
func (s *SignatureService) SignBytes(payload []byte) ([]byte, error) {
	if !s.CanSign() {
		return nil, cryptoError("sign", errors.New("private key not configured"))
	}
	sig, err := signingMethod.Sign(string(payload), s.private)
	if err != nil {
		return nil, cryptoError("sign", err)
	}
	return sig, nil
}

// VerifyBytes checks signature against payload. A mismatch is reported
// as false with a nil error.
func (s *SignatureService) VerifyBytes(signature, payload []byte) (bool, error) {
	if s == nil || s.public == nil {
		return false, cryptoError("verify", errors.New("public key not configured"))
	}
	err := signingMethod.Verify(string(payload), signature, s.public)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, jwt.ErrInvalidKeyType), errors.Is(err, jwt.ErrHashUnavailable):
		return false, cryptoError("verify", err)
	default:
		return false, nil
	}
}

// Sign decodes a base64 payload, signs the decoded bytes and returns the
// base64 signature.
func (s *SignatureService) Sign(payload string) (string, error) {
	raw, err := segmentEncoding.DecodeString(payload)
	if err != nil {
		return "", cryptoError("decode payload", err)
	}
	sig, err := s.SignBytes(raw)
	if err != nil {
		return "", err
	}
	return segmentEncoding.EncodeToString(sig), nil
}

// Verify checks a base64 signature over a base64 payload.
func (s *SignatureService) Verify(signature, payload string) (bool, error) {
	rawSig, err := segmentEncoding.DecodeString(signature)
	if err != nil {
		return false, cryptoError("decode signature", err)
	}
	rawPayload, err := segmentEncoding.DecodeString(payload)
	if err != nil {
		return false, cryptoError("decode payload", err)
	}
	return s.VerifyBytes(rawSig, rawPayload)
}
