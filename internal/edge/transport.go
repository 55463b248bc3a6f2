package edge

import (
	"errors"
	"time"

	"github.com/spec-kit/campus-auth/internal/auth"
)

// MaxTransportTTL bounds transport token lifetimes. They are evidence for
// a single hop, not sessions.
const MaxTransportTTL = time.Minute

// TransportIssuer mints short-lived tokens asserting an identity the
// edge has already authenticated.
type TransportIssuer struct {
	tokens *auth.TokenService
}

// NewTransportIssuer wraps a token service built for the transport
// audience.
func NewTransportIssuer(sig *auth.SignatureService, tokens *auth.TokenService) (*TransportIssuer, error) {
	if !sig.CanSign() {
		return nil, errors.New("transport issuer requires a private signing key")
	}
	if tokens.TTL() > MaxTransportTTL {
		return nil, errors.New("transport token lifetime exceeds one minute")
	}
	return &TransportIssuer{tokens: tokens}, nil
}

// Mint returns a transport token for identity. It carries no privileges.
func (t *TransportIssuer) Mint(identity string) (string, time.Time, error) {
	return t.tokens.Sign(auth.Claims{Identity: identity, Privileges: []string{}})
}
