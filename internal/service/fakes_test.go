package service

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/auth/authtest"
	"github.com/spec-kit/campus-auth/internal/clock"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/events"
	"github.com/spec-kit/campus-auth/internal/repository"
)

type memCredentials struct {
	mu      sync.Mutex
	records map[string]domain.CredentialRecord
	err     error
}

func newMemCredentials() *memCredentials {
	return &memCredentials{records: make(map[string]domain.CredentialRecord)}
}

func (m *memCredentials) FindByIdentity(_ context.Context, identity string) (*domain.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[identity]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
	err   error
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]domain.User)}
}

func (m *memUsers) FindByIdentity(_ context.Context, identity string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[identity]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.Privileges = slices.Clone(user.Privileges)
	return &user, nil
}

func (m *memUsers) SetPrivileges(_ context.Context, identity string, privileges []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	user, ok := m.users[identity]
	if !ok {
		return repository.ErrNotFound
	}
	user.Privileges = slices.Clone(privileges)
	m.users[identity] = user
	return nil
}

func (m *memUsers) put(identity string, status domain.UserStatus, privileges ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[identity] = domain.User{ID: uuid.NewString(), Identity: identity, Privileges: privileges, Status: status}
}

// memAccounts writes both records or neither, failing with whichever
// injected error is set.
type memAccounts struct {
	users       *memUsers
	credentials *memCredentials
}

func (m *memAccounts) CreateAccount(_ context.Context, user *domain.User, credential *domain.CredentialRecord) error {
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	m.credentials.mu.Lock()
	defer m.credentials.mu.Unlock()

	if m.users.err != nil {
		return m.users.err
	}
	if _, ok := m.users.users[user.Identity]; ok {
		return repository.ErrConflict
	}
	if credential != nil {
		if m.credentials.err != nil {
			return m.credentials.err
		}
		if _, ok := m.credentials.records[credential.Identity]; ok {
			return repository.ErrConflict
		}
		credential.ID = uuid.NewString()
		m.credentials.records[credential.Identity] = *credential
	}
	user.ID = uuid.NewString()
	m.users.users[user.Identity] = *user
	return nil
}

type memReplay struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (m *memReplay) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

// recorder collects every published event.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func newRecorder() (*recorder, events.Dispatcher) {
	r := &recorder{}
	d := events.NewInMemoryDispatcher()
	for _, t := range events.AllEventTypes {
		d.Subscribe(t, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
	return r, d
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	clock       *clock.FakeClock
	credentials *memCredentials
	users       *memUsers
	sessions    *auth.TokenService
	recorder    *recorder
	accounts    *AuthService
}

func newFixture(t *testing.T, defaults ...string) *fixture {
	t.Helper()
	clk := clock.Fake(time.Unix(1_700_000_000, 0))
	rec, dispatcher := newRecorder()
	f := &fixture{
		clock:       clk,
		credentials: newMemCredentials(),
		users:       newMemUsers(),
		sessions:    authtest.TokenService(t, clk, time.Hour),
		recorder:    rec,
	}
	hasher, err := auth.NewPasswordHasher(auth.SchemeSHA256)
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}
	f.accounts = NewAuthService(AuthDependencies{
		AccountRepo:       &memAccounts{users: f.users, credentials: f.credentials},
		CredentialRepo:    f.credentials,
		UserRepo:          f.users,
		Hasher:            hasher,
		Sessions:          f.sessions,
		Dispatcher:        dispatcher,
		Clock:             clk,
		DefaultPrivileges: defaults,
	})
	return f
}
