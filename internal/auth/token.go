package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/clock"
)

const (
	headerAlgorithm = "PS256"
	headerType      = "CAT"
	tokenDelimiter  = "."
)

// Header identifies the signing scheme. It travels with the token but
// only the claims segment is signed.
type Header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

// Claims are the caller-visible contents of a token.
type Claims struct {
	Identity   string   `json:"identity"`
	Privileges []string `json:"privileges"`
}

// HasPrivileges reports whether every name is present in c.
func (c Claims) HasPrivileges(names ...string) bool {
	for _, name := range names {
		if !slices.Contains(c.Privileges, name) {
			return false
		}
	}
	return true
}

// tokenClaims is the signed claims segment: standard claims merged with
// Claims. Standard claims never leave this package.
type tokenClaims struct {
	Issuer     string   `json:"iss"`
	Subject    string   `json:"sub"`
	Audience   string   `json:"aud"`
	IssuedAt   int64    `json:"iat"`
	ExpiresAt  int64    `json:"exp"`
	Identity   string   `json:"identity"`
	Privileges []string `json:"privileges"`
}

// TokenConfig fixes the deployment constants and lifetime of one kind
// of token.
type TokenConfig struct {
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenService issues and validates bearer tokens over a
// SignatureService.
type TokenService struct {
	sig    *SignatureService
	cfg    TokenConfig
	clock  clock.Clock
	logger *zap.Logger
}

// NewTokenService builds a token service. A nil clock means the real
// clock; a nil logger discards diagnostics.
func NewTokenService(sig *SignatureService, cfg TokenConfig, clk clock.Clock, logger *zap.Logger) (*TokenService, error) {
	if sig == nil {
		return nil, errors.New("token service requires a signature service")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("token issuer and audience are required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{sig: sig, cfg: cfg, clock: clk, logger: logger}, nil
}

// TTL returns the configured token lifetime.
func (ts *TokenService) TTL() time.Duration {
	return ts.cfg.TTL
}

// Sign issues a token for claims and returns it with its expiry.
func (ts *TokenService) Sign(claims Claims) (string, time.Time, error) {
	if claims.Identity == "" {
		return "", time.Time{}, errors.New("token identity is required")
	}

	now := ts.clock.Now()
	expiresAt := now.Add(ts.cfg.TTL)
	privileges := claims.Privileges
	if privileges == nil {
		privileges = []string{}
	}

	headerJSON, err := json.Marshal(Header{Algorithm: headerAlgorithm, Type: headerType})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encoding token header: %w", err)
	}
	claimsJSON, err := json.Marshal(tokenClaims{
		Issuer:     ts.cfg.Issuer,
		Subject:    claims.Identity,
		Audience:   ts.cfg.Audience,
		IssuedAt:   now.Unix(),
		ExpiresAt:  expiresAt.Unix(),
		Identity:   claims.Identity,
		Privileges: privileges,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encoding token claims: %w", err)
	}

	sig, err := ts.sig.SignBytes(signingInput(tokenContext, claimsJSON))
	if err != nil {
		return "", time.Time{}, err
	}

	token := strings.Join([]string{
		segmentEncoding.EncodeToString(headerJSON),
		segmentEncoding.EncodeToString(claimsJSON),
		segmentEncoding.EncodeToString(sig),
	}, tokenDelimiter)
	return token, time.Unix(expiresAt.Unix(), 0), nil
}

// Verify returns the claims of a valid token. Every failure yields
// ErrInvalidToken; the underlying reason is only logged.
func (ts *TokenService) Verify(token string) (Claims, error) {
	claims, err := ts.validate(token)
	if err != nil {
		ts.logger.Debug("token rejected", zap.Error(err))
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (ts *TokenService) validate(token string) (Claims, error) {
	segments := strings.Split(token, tokenDelimiter)
	if len(segments) != 3 {
		return Claims{}, errMalformedToken
	}
	claimsSegment, sigSegment := segments[1], segments[2]

	raw, err := segmentEncoding.DecodeString(claimsSegment)
	if err != nil {
		return Claims{}, errMalformedToken
	}
	sig, err := segmentEncoding.DecodeString(sigSegment)
	if err != nil {
		return Claims{}, errMalformedToken
	}

	// The claims bytes stay opaque until their signature checks out.
	ok, err := ts.sig.VerifyBytes(sig, signingInput(tokenContext, raw))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", errBadSignature, err)
	}
	if !ok {
		return Claims{}, errBadSignature
	}

	tc, err := decodeTokenClaims(raw)
	if err != nil {
		return Claims{}, err
	}

	switch {
	case tc.Issuer != ts.cfg.Issuer:
		return Claims{}, errIssuer
	case tc.Audience != ts.cfg.Audience:
		return Claims{}, errAudience
	case tc.Subject != tc.Identity:
		return Claims{}, errSubject
	case ts.clock.Now().Unix() >= tc.ExpiresAt:
		return Claims{}, errExpired
	}

	return Claims{
		Identity:   tc.Identity,
		Privileges: append([]string{}, tc.Privileges...),
	}, nil
}

func decodeTokenClaims(raw []byte) (tokenClaims, error) {
	var tc tokenClaims
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tc); err != nil {
		return tokenClaims{}, fmt.Errorf("%w: %v", errClaimsShape, err)
	}
	if dec.More() {
		return tokenClaims{}, errClaimsShape
	}
	if tc.Issuer == "" || tc.Audience == "" || tc.Subject == "" || tc.Identity == "" ||
		tc.IssuedAt <= 0 || tc.ExpiresAt <= 0 || tc.Privileges == nil {
		return tokenClaims{}, errClaimsShape
	}
	return tc, nil
}
