package auth_test

import (
	"context"

	auth "github.com/goliatone/go-multiauth"
	"github.com/stretchr/testify/mock"
)

// MockLogger implements auth.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentity implements auth.Identity
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// MockUserStore implements auth.UserStore so tests can script store faults
// that the in-memory store never produces.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserStore) FindByExternalID(ctx context.Context, provider, externalUID string) (*auth.User, error) {
	args := m.Called(ctx, provider, externalUID)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserStore) CreateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*auth.User)
	return created, args.Error(1)
}

func (m *MockUserStore) SaveLinkedAccount(ctx context.Context, user *auth.User, account *auth.LinkedAccount) (*auth.User, error) {
	args := m.Called(ctx, user, account)
	updated, _ := args.Get(0).(*auth.User)
	return updated, args.Error(1)
}
