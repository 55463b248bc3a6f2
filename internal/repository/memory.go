package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/campus-auth/internal/domain"
)

// MemoryStore keeps credential and privilege records in process memory.
// It backs local development when no Postgres DSN is configured; all data
// is lost on restart.
type MemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]domain.CredentialRecord
	users       map[string]domain.User
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		credentials: make(map[string]domain.CredentialRecord),
		users:       make(map[string]domain.User),
	}
}

// Credentials returns the store's CredentialRepository view.
func (s *MemoryStore) Credentials() CredentialRepository { return memoryCredentials{s} }

// Users returns the store's UserRepository view.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Accounts returns the store's AccountRepository view.
func (s *MemoryStore) Accounts() AccountRepository { return memoryAccounts{s} }

type memoryAccounts struct{ s *MemoryStore }

func (m memoryAccounts) CreateAccount(_ context.Context, user *domain.User, credential *domain.CredentialRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[user.Identity]; ok {
		return ErrConflict
	}
	if credential != nil {
		if _, ok := m.s.credentials[credential.Identity]; ok {
			return ErrConflict
		}
	}

	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Privileges == nil {
		user.Privileges = []string{}
	}
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	stored.Privileges = slices.Clone(user.Privileges)
	m.s.users[user.Identity] = stored

	if credential == nil {
		return nil
	}
	if credential.ID == "" {
		credential.ID = uuid.NewString()
	}
	credential.CreatedAt = now
	record := *credential
	record.PasswordDigest = slices.Clone(credential.PasswordDigest)
	record.Salt = slices.Clone(credential.Salt)
	m.s.credentials[credential.Identity] = record
	return nil
}

type memoryCredentials struct{ s *MemoryStore }

func (m memoryCredentials) FindByIdentity(_ context.Context, identity string) (*domain.CredentialRecord, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	record, ok := m.s.credentials[identity]
	if !ok {
		return nil, ErrNotFound
	}
	record.PasswordDigest = slices.Clone(record.PasswordDigest)
	record.Salt = slices.Clone(record.Salt)
	return &record, nil
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) FindByIdentity(_ context.Context, identity string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	user, ok := m.s.users[identity]
	if !ok {
		return nil, ErrNotFound
	}
	user.Privileges = slices.Clone(user.Privileges)
	return &user, nil
}

func (m memoryUsers) SetPrivileges(_ context.Context, identity string, privileges []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	user, ok := m.s.users[identity]
	if !ok {
		return ErrNotFound
	}
	if privileges == nil {
		privileges = []string{}
	}
	user.Privileges = slices.Clone(privileges)
	user.UpdatedAt = time.Now().UTC()
	m.s.users[identity] = user
	return nil
}
