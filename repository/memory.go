package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	auth "github.com/goliatone/go-multiauth"
	"github.com/google/uuid"
)

// MemoryStore is a mutex guarded in-memory UserStore. It honors the same
// atomicity contract as the SQL store: create-if-absent on username, email,
// and (provider, uid), decided under one lock.
type MemoryStore struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*auth.User
	usernames map[string]uuid.UUID
	emails    map[string]uuid.UUID
	external  map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      map[uuid.UUID]*auth.User{},
		usernames: map[string]uuid.UUID{},
		emails:    map[string]uuid.UUID{},
		external:  map[string]uuid.UUID{},
	}
}

var _ auth.UserStore = (*MemoryStore)(nil)

func externalKey(provider, externalUID string) string {
	return provider + "\x00" + externalUID
}

func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usernames[strings.TrimSpace(username)]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *MemoryStore) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(identifier)
	if id, ok := s.usernames[trimmed]; ok {
		return cloneUser(s.byID[id]), nil
	}
	if id, ok := s.emails[strings.ToLower(trimmed)]; ok {
		return cloneUser(s.byID[id]), nil
	}
	return nil, auth.ErrIdentityNotFound
}

func (s *MemoryStore) FindByExternalID(ctx context.Context, provider, externalUID string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.external[externalKey(provider, externalUID)]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	if user == nil {
		return nil, auth.ErrIdentityNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[user.Username]; taken {
		return nil, auth.ErrDuplicateIdentity
	}
	if _, taken := s.emails[strings.ToLower(user.Email)]; taken {
		return nil, auth.ErrDuplicateIdentity
	}
	for _, account := range user.Accounts {
		if err := account.Validate(); err != nil {
			return nil, err
		}
		if account.IsInternal() {
			continue
		}
		if _, taken := s.external[externalKey(account.Provider, account.ExternalUID)]; taken {
			return nil, auth.ErrAccountAlreadyLinked
		}
	}

	record := cloneUser(user)
	record.EnsureRole()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	for _, account := range record.Accounts {
		account.UserID = record.ID
		if account.ID == uuid.Nil {
			account.ID = uuid.New()
		}
		if account.CreatedAt == nil {
			created := now
			account.CreatedAt = &created
		}
		if !account.IsInternal() {
			s.external[externalKey(account.Provider, account.ExternalUID)] = record.ID
		}
	}

	s.byID[record.ID] = record
	s.usernames[record.Username] = record.ID
	s.emails[strings.ToLower(record.Email)] = record.ID

	return cloneUser(record), nil
}

func (s *MemoryStore) SaveLinkedAccount(ctx context.Context, user *auth.User, account *auth.LinkedAccount) (*auth.User, error) {
	if user == nil || account == nil {
		return nil, auth.ErrIdentityNotFound
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[user.ID]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}

	if !account.IsInternal() {
		if ownerID, taken := s.external[externalKey(account.Provider, account.ExternalUID)]; taken {
			if ownerID == record.ID {
				return cloneUser(record), nil
			}
			return nil, auth.ErrAccountAlreadyLinked
		}
	}

	linked := cloneAccount(account)
	linked.UserID = record.ID
	if linked.ID == uuid.Nil {
		linked.ID = uuid.New()
	}
	now := time.Now()
	if linked.CreatedAt == nil {
		linked.CreatedAt = &now
	}

	record.Accounts = append(record.Accounts, linked)
	if !linked.IsInternal() {
		s.external[externalKey(linked.Provider, linked.ExternalUID)] = record.ID
	}

	return cloneUser(record), nil
}

// RemoveUser deletes an identity and its uniqueness reservations. Exists so
// tests can model a user removed after token issuance.
func (s *MemoryStore) RemoveUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usernames[username]
	if !ok {
		return
	}
	user := s.byID[id]
	delete(s.usernames, username)
	delete(s.emails, strings.ToLower(user.Email))
	for _, account := range user.Accounts {
		if !account.IsInternal() {
			delete(s.external, externalKey(account.Provider, account.ExternalUID))
		}
	}
	delete(s.byID, id)
}

func cloneUser(user *auth.User) *auth.User {
	if user == nil {
		return nil
	}
	out := *user
	out.Accounts = make([]*auth.LinkedAccount, len(user.Accounts))
	for i, account := range user.Accounts {
		out.Accounts[i] = cloneAccount(account)
	}
	if user.Permissions != nil {
		out.Permissions = append([]auth.Permission(nil), user.Permissions...)
	}
	return &out
}

func cloneAccount(account *auth.LinkedAccount) *auth.LinkedAccount {
	if account == nil {
		return nil
	}
	out := *account
	return &out
}
