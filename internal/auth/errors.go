package auth

import (
	"errors"
	"fmt"
)

// Errors surfaced to callers. Validation failures deliberately collapse
// into ErrInvalidToken and ErrInvalidSignature so the reason never
// reaches the client.
var (
	ErrInvalidToken     = errors.New("auth: invalid token")
	ErrInvalidSignature = errors.New("auth: invalid payload signature")
)

// Reasons a token fails validation. These stay inside the package and
// the audit log.
var (
	errMalformedToken = errors.New("malformed token")
	errBadSignature   = errors.New("signature mismatch")
	errClaimsShape    = errors.New("claims do not match expected shape")
	errIssuer         = errors.New("issuer mismatch")
	errAudience       = errors.New("audience mismatch")
	errSubject        = errors.New("subject does not match identity")
	errExpired        = errors.New("token expired")
)

// CryptoError reports unusable key material or malformed encoded input.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

func cryptoError(op string, err error) error {
	return &CryptoError{Op: op, Err: err}
}

// IsCryptoError reports whether err wraps a *CryptoError.
func IsCryptoError(err error) bool {
	var ce *CryptoError
	return errors.As(err, &ce)
}
