package handlers

import (
	"errors"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/service"
	apperrors "github.com/spec-kit/campus-auth/pkg/util/errorutil"
)

// mapServiceError translates service errors into client-safe domain
// errors. Rejection reasons stay in the audit log.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrInvalidInput):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case errors.Is(err, service.ErrUnauthenticated):
		return apperrors.NewUnauthenticated()
	case errors.Is(err, auth.ErrInvalidSignature):
		return apperrors.NewInvalidSignature()
	case errors.Is(err, service.ErrInsufficientPrivileges):
		return apperrors.NewForbidden("insufficient privileges")
	case errors.Is(err, service.ErrUnknownIdentity):
		return apperrors.NewNotFound("user", nil)
	case errors.Is(err, service.ErrIdentityTaken):
		return apperrors.NewConflict("identity already registered", nil)
	case errors.Is(err, service.ErrStoreUnavailable):
		return apperrors.NewDependencyUnavailable(err)
	default:
		return apperrors.NewInternalError(err)
	}
}
