package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"
)

// SigningKeyBits is the modulus size used by GenerateSigningKeyPair.
const SigningKeyBits = 3072

// Key material travels through the environment as standard base64 of
// the PEM text.
func decodeKeyEnv(name, value string) ([]byte, error) {
	if value == "" {
		return nil, cryptoError("load", fmt.Errorf("%s key missing", name))
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, cryptoError("load", fmt.Errorf("%s key is not base64: %w", name, err))
	}
	return raw, nil
}

func decodeRSAPublicKey(value string) (*rsa.PublicKey, error) {
	raw, err := decodeKeyEnv("signing public", value)
	if err != nil {
		return nil, err
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(raw)
	if err != nil {
		return nil, cryptoError("load", fmt.Errorf("signing public key: %w", err))
	}
	return key, nil
}

func decodeRSAPrivateKey(value string) (*rsa.PrivateKey, error) {
	raw, err := decodeKeyEnv("signing private", value)
	if err != nil {
		return nil, err
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(raw)
	if err != nil {
		return nil, cryptoError("load", fmt.Errorf("signing private key: %w", err))
	}
	return key, nil
}

// GenerateSigningKeyPair creates an RSA keypair and returns it in the
// base64 PEM form LoadSignatureService expects.
func GenerateSigningKeyPair(bits int) (publicB64, privateB64 string, err error) {
	if bits < 2048 {
		return "", "", errors.New("rsa modulus must be at least 2048 bits")
	}
	private, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", fmt.Errorf("generating rsa key: %w", err)
	}
	return EncodeSigningKeyPair(private)
}

// EncodeSigningKeyPair renders private and its public half as base64 PEM.
func EncodeSigningKeyPair(private *rsa.PrivateKey) (publicB64, privateB64 string, err error) {
	privDER, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return "", "", fmt.Errorf("encoding private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("encoding public key: %w", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return base64.StdEncoding.EncodeToString(pubPEM), base64.StdEncoding.EncodeToString(privPEM), nil
}
