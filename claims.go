package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fixed validity window of an issued session token.
const DefaultTokenTTL = 3 * time.Hour

// SessionClaims is the minimal signed payload proving a successful
// authentication. It is never persisted; liveness is recomputed from
// ExpiresAt on every validation.
type SessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// UserID returns the subject identifier.
func (c *SessionClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Role returns the role captured at issuance.
func (c *SessionClaims) Role() string {
	return c.UserRole
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issue time
func (c *SessionClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expired reports whether the claims are past their window at the given
// instant.
func (c *SessionClaims) Expired(now time.Time) bool {
	exp := c.Expires()
	return !exp.IsZero() && now.After(exp)
}
