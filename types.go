package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity, the summary a
// transport layer renders after login or token validation.
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (*User, error)
	Login(ctx context.Context, strategy string, assertion Assertion) (string, *SessionClaims, error)
	ValidateToken(ctx context.Context, token string) (Identity, *SessionClaims, error)
	LinkExternalAccount(ctx context.Context, identifier, provider, externalUID string) (*User, error)
}

// Config holds auth options. Values are read once at construction and never
// mutated afterwards.
type Config interface {
	GetSigningKey() string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// SimpleConfig is a plain value implementation of Config.
type SimpleConfig struct {
	SigningKey string
	TokenTTL   time.Duration
	Issuer     string
	Audience   []string
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetTokenTTL() time.Duration {
	if c.TokenTTL <= 0 {
		return DefaultTokenTTL
	}
	return c.TokenTTL
}

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
