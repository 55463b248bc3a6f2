package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/clock"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/events"
	"github.com/spec-kit/campus-auth/internal/repository"
)

const maxIdentityLength = 128

// AuthService coordinates registration and login flows.
type AuthService struct {
	accountRepo       repository.AccountRepository
	credentials       repository.CredentialRepository
	users             repository.UserRepository
	hasher            *auth.PasswordHasher
	sessions          *auth.TokenService
	dispatcher        events.Dispatcher
	clock             clock.Clock
	logger            *zap.Logger
	defaultPrivileges []string
	dummySalt         []byte
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	AccountRepo       repository.AccountRepository
	CredentialRepo    repository.CredentialRepository
	UserRepo          repository.UserRepository
	Hasher            *auth.PasswordHasher
	Sessions          *auth.TokenService
	Dispatcher        events.Dispatcher
	Clock             clock.Clock
	Logger            *zap.Logger
	DefaultPrivileges []string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewNopDispatcher()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	dummySalt, err := auth.GenerateSalt()
	if err != nil {
		dummySalt = make([]byte, auth.SaltSize)
	}
	return &AuthService{
		accountRepo:       deps.AccountRepo,
		credentials:       deps.CredentialRepo,
		users:             deps.UserRepo,
		hasher:            deps.Hasher,
		sessions:          deps.Sessions,
		dispatcher:        deps.Dispatcher,
		clock:             deps.Clock,
		logger:            deps.Logger,
		defaultPrivileges: slices.Clone(deps.DefaultPrivileges),
		dummySalt:         dummySalt,
	}
}

// Register creates a credential record and a privilege record for
// identity and returns a session token.
func (s *AuthService) Register(ctx context.Context, identity, password string) (*domain.User, domain.IssuedToken, error) {
	if err := validateIdentity(identity); err != nil {
		return nil, domain.IssuedToken{}, err
	}
	if password == "" {
		return nil, domain.IssuedToken{}, fmt.Errorf("%w: password required", ErrInvalidInput)
	}

	user, err := s.createAccount(ctx, identity, password)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	issued, err := s.issue(user)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	s.publish(ctx, events.New(events.EventAccountRegistered, identity, "", s.clock.Now()))
	return user, issued, nil
}

// Login checks password against the stored digest. Unknown identities,
// wrong passwords and suspended accounts are indistinguishable.
func (s *AuthService) Login(ctx context.Context, identity, password string) (*domain.User, domain.IssuedToken, error) {
	record, err := s.credentials.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Spend the same work as a real comparison.
			s.hasher.Hash(password, s.dummySalt)
			return nil, domain.IssuedToken{}, s.loginFailed(ctx, identity, "unknown identity")
		}
		return nil, domain.IssuedToken{}, s.storeFailure("find credentials", err)
	}
	if !s.hasher.Compare(record.Scheme, record.PasswordDigest, password, record.Salt) {
		return nil, domain.IssuedToken{}, s.loginFailed(ctx, identity, "password mismatch")
	}

	user, err := s.users.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.IssuedToken{}, s.loginFailed(ctx, identity, "no privilege record")
		}
		return nil, domain.IssuedToken{}, s.storeFailure("find user", err)
	}
	if !user.Active() {
		return nil, domain.IssuedToken{}, s.loginFailed(ctx, identity, "account suspended")
	}

	issued, err := s.issue(user)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	s.publish(ctx, events.New(events.EventLoginSucceeded, identity, "", s.clock.Now()))
	return user, issued, nil
}

// SetPrivileges replaces the stored privileges of identity. Tokens
// already issued keep their claims until they are renewed.
func (s *AuthService) SetPrivileges(ctx context.Context, actor, identity string, privileges []string) error {
	privileges = normalizePrivileges(privileges)
	if err := s.users.SetPrivileges(ctx, identity, privileges); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownIdentity
		}
		return s.storeFailure("set privileges", err)
	}
	ev := events.New(events.EventPrivilegesChanged, identity, "", s.clock.Now())
	ev.Payload = events.PrivilegesChangedPayload{ChangedBy: actor, Privileges: privileges}
	s.publish(ctx, ev)
	return nil
}

// createAccount writes the privilege record and, when password is set,
// the credential record as one unit. The first writer of an identity
// wins, and a failed write leaves nothing behind to block a retry.
func (s *AuthService) createAccount(ctx context.Context, identity, password string) (*domain.User, error) {
	user := &domain.User{
		Identity:   identity,
		Privileges: slices.Clone(s.defaultPrivileges),
		Status:     domain.UserStatusActive,
	}

	var record *domain.CredentialRecord
	if password != "" {
		salt, err := auth.GenerateSalt()
		if err != nil {
			return nil, err
		}
		record = &domain.CredentialRecord{
			Identity:       identity,
			PasswordDigest: s.hasher.Hash(password, salt),
			Salt:           salt,
			Scheme:         s.hasher.Scheme(),
		}
	}

	if err := s.accountRepo.CreateAccount(ctx, user, record); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrIdentityTaken
		}
		return nil, s.storeFailure("create account", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (domain.IssuedToken, error) {
	token, exp, err := s.sessions.Sign(auth.Claims{Identity: user.Identity, Privileges: user.Privileges})
	if err != nil {
		return domain.IssuedToken{}, err
	}
	return domain.IssuedToken{Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, identity, reason string) error {
	s.publish(ctx, events.New(events.EventLoginFailed, identity, reason, s.clock.Now()))
	return ErrInvalidCredentials
}

func (s *AuthService) storeFailure(op string, err error) error {
	s.logger.Error("account store failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

func (s *AuthService) publish(ctx context.Context, ev events.Event) {
	if err := s.dispatcher.Publish(ctx, ev); err != nil {
		s.logger.Warn("audit handler failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}

func validateIdentity(identity string) error {
	if identity == "" || len(identity) > maxIdentityLength || strings.TrimSpace(identity) != identity {
		return fmt.Errorf("%w: identity must be 1-%d characters without surrounding whitespace", ErrInvalidInput, maxIdentityLength)
	}
	return nil
}

func normalizePrivileges(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
