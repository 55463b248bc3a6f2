package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/clock"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/events"
	"github.com/spec-kit/campus-auth/internal/repository"
)

// PrivilegeStore is the read-only view of user records the elevation
// flow consults.
type PrivilegeStore interface {
	FindByIdentity(ctx context.Context, identity string) (*domain.User, error)
}

// ElevationService confirms that the holder of a token still holds a
// requested set of privileges and renews the token. It never grants:
// the renewed token carries exactly the privileges of the presented one.
type ElevationService struct {
	tokens     *auth.TokenService
	users      PrivilegeStore
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// NewElevationService builds the service.
func NewElevationService(tokens *auth.TokenService, users PrivilegeStore, dispatcher events.Dispatcher, clk clock.Clock, logger *zap.Logger) *ElevationService {
	if dispatcher == nil {
		dispatcher = events.NewNopDispatcher()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ElevationService{tokens: tokens, users: users, dispatcher: dispatcher, clock: clk, logger: logger}
}

// Elevate verifies token, checks every requested privilege against the
// stored record, and returns a renewed token. An empty request skips
// the store and only renews.
func (s *ElevationService) Elevate(ctx context.Context, token string, requested []string) (domain.IssuedToken, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.publish(ctx, events.New(events.EventTokenRejected, "", "elevation with invalid token", s.clock.Now()))
		return domain.IssuedToken{}, ErrUnauthenticated
	}

	if len(requested) > 0 {
		if err := s.Confirm(ctx, claims.Identity, requested); err != nil {
			return domain.IssuedToken{}, err
		}
	}

	renewed, exp, err := s.tokens.Sign(claims)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	ev := events.New(events.EventTokenRenewed, claims.Identity, "", s.clock.Now())
	ev.Payload = events.ElevationPayload{Requested: requested}
	s.publish(ctx, ev)
	return domain.IssuedToken{Token: renewed, ExpiresAt: exp}, nil
}

// Confirm checks the stored record of identity for every requested
// privilege. Missing or suspended records are denied; a store failure
// wraps ErrStoreUnavailable and is never read as a denial.
func (s *ElevationService) Confirm(ctx context.Context, identity string, requested []string) error {
	user, err := s.users.FindByIdentity(ctx, identity)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.deny(ctx, identity, "no privilege record")
	case err != nil:
		s.logger.Error("privilege lookup failed", zap.String("identity", identity), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !user.Active() {
		return s.deny(ctx, identity, "account suspended")
	}

	for _, p := range requested {
		if !slices.Contains(user.Privileges, p) {
			return s.deny(ctx, identity, "missing privilege "+p)
		}
	}
	return nil
}

func (s *ElevationService) deny(ctx context.Context, identity, reason string) error {
	s.publish(ctx, events.New(events.EventElevationDenied, identity, reason, s.clock.Now()))
	return ErrInsufficientPrivileges
}

func (s *ElevationService) publish(ctx context.Context, ev events.Event) {
	if err := s.dispatcher.Publish(ctx, ev); err != nil {
		s.logger.Warn("audit handler failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}
