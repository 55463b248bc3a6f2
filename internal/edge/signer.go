// Package edge holds the capabilities of the trusted edge process: it
// co-signs mutation bodies that will later reach the backend without a
// session, and mints short-lived transport tokens as identity evidence
// for them. The API server never imports this package.
package edge

import (
	"errors"

	"github.com/spec-kit/campus-auth/internal/auth"
)

// Signer seals request bodies into signed payload envelopes.
type Signer struct {
	sig *auth.SignatureService
}

// NewSigner requires a SignatureService that holds a private key.
func NewSigner(sig *auth.SignatureService) (*Signer, error) {
	if !sig.CanSign() {
		return nil, errors.New("edge signer requires a private signing key")
	}
	return &Signer{sig: sig}, nil
}

// Seal canonicalizes body, signs it, and returns the envelope to send
// alongside the same body.
func (s *Signer) Seal(body any) (string, error) {
	canonical, err := auth.Canonicalize(body)
	if err != nil {
		return "", err
	}
	return auth.SealEnvelope(s.sig, canonical)
}
