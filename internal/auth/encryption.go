package auth

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"filippo.io/age"
)

// EncryptionService seals tokens for client-held storage with an age
// X25519 keypair, independent of the signing keys.
type EncryptionService struct {
	recipient *age.X25519Recipient
	identity  *age.X25519Identity
}

// LoadEncryptionService parses base64-encoded age key strings. The
// private identity may be empty for an encrypt-only service; when both
// are given they must form a pair.
func LoadEncryptionService(publicB64, privateB64 string) (*EncryptionService, error) {
	pub, err := decodeKeyEnv("encryption public", publicB64)
	if err != nil {
		return nil, err
	}
	recipient, err := age.ParseX25519Recipient(strings.TrimSpace(string(pub)))
	if err != nil {
		return nil, cryptoError("load", fmt.Errorf("encryption public key: %w", err))
	}

	svc := &EncryptionService{recipient: recipient}
	if privateB64 == "" {
		return svc, nil
	}

	priv, err := decodeKeyEnv("encryption private", privateB64)
	if err != nil {
		return nil, err
	}
	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(priv)))
	if err != nil {
		return nil, cryptoError("load", errors.New("encryption private key is malformed"))
	}
	if identity.Recipient().String() != recipient.String() {
		return nil, cryptoError("load", errors.New("encryption keys do not form a pair"))
	}
	svc.identity = identity
	return svc, nil
}

// GenerateEncryptionKeyPair returns a fresh age keypair in the base64
// form LoadEncryptionService expects.
func GenerateEncryptionKeyPair() (publicB64, privateB64 string, err error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", "", fmt.Errorf("generating age identity: %w", err)
	}
	publicB64 = base64.StdEncoding.EncodeToString([]byte(identity.Recipient().String()))
	privateB64 = base64.StdEncoding.EncodeToString([]byte(identity.String()))
	return publicB64, privateB64, nil
}

// Encrypt seals text and returns URL-safe base64 ciphertext.
func (e *EncryptionService) Encrypt(text string) (string, error) {
	if e == nil || e.recipient == nil {
		return "", cryptoError("encrypt", errors.New("encryption key not configured"))
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, e.recipient)
	if err != nil {
		return "", cryptoError("encrypt", err)
	}
	if _, err := io.WriteString(w, text); err != nil {
		return "", cryptoError("encrypt", err)
	}
	if err := w.Close(); err != nil {
		return "", cryptoError("encrypt", err)
	}
	return segmentEncoding.EncodeToString(buf.Bytes()), nil
}

// Decrypt opens ciphertext produced by Encrypt. Every failure, including
// a wrong key or non-UTF-8 plaintext, reports ok == false.
func (e *EncryptionService) Decrypt(ciphertext string) (text string, ok bool) {
	if e == nil || e.identity == nil {
		return "", false
	}
	raw, err := segmentEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", false
	}
	r, err := age.Decrypt(bytes.NewReader(raw), e.identity)
	if err != nil {
		return "", false
	}
	plain, err := io.ReadAll(r)
	if err != nil || !utf8.Valid(plain) {
		return "", false
	}
	return string(plain), true
}
