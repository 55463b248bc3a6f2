package service

import "errors"

// Errors returned by the services. Handlers map them to HTTP responses;
// none of them carries the reason a credential was rejected.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUnauthenticated        = errors.New("not authenticated")
	ErrInsufficientPrivileges = errors.New("insufficient privileges")
	ErrIdentityTaken          = errors.New("identity already registered")
	ErrUnknownIdentity        = errors.New("unknown identity")
	ErrStoreUnavailable       = errors.New("account store unavailable")
)
