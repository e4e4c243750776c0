package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role for every new identity
	RoleUser UserRole = "user"
	// RoleAdmin grants every operation on every route
	RoleAdmin UserRole = "admin"
)

// DefaultRole is assigned when registration or provider signup carries no role.
const DefaultRole = RoleUser

// ParseRole validates a raw role string
func ParseRole(role string) (UserRole, bool) {
	switch role {
	case RoleUser, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

// Operation is a CRUD verb a permission can grant on a route.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// IsValid checks the operation is one of the four CRUD verbs.
func (o Operation) IsValid() bool {
	switch o {
	case OperationCreate, OperationRead, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// Permission grants a set of operations on a single route.
type Permission struct {
	Route      string      `json:"route"`
	Operations []Operation `json:"operations"`
}

// Allows reports whether the permission grants op on route.
func (p Permission) Allows(route string, op Operation) bool {
	if p.Route != route {
		return false
	}
	for _, o := range p.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// AccountKind discriminates linked account variants. Internal accounts carry
// a password hash; external accounts carry a provider scoped uid.
type AccountKind string

// AccountKindInternal is the password backed account variant.
const AccountKindInternal AccountKind = "internal"

const externalKindPrefix = "external:"

// ExternalAccountKind builds the kind tag for a provider, e.g.
// "external:google".
func ExternalAccountKind(provider string) AccountKind {
	return AccountKind(externalKindPrefix + provider)
}

// IsInternal reports whether the kind is the password variant.
func (k AccountKind) IsInternal() bool { return k == AccountKindInternal }

// Provider returns the provider name of an external kind, or "" for internal.
func (k AccountKind) Provider() string {
	if strings.HasPrefix(string(k), externalKindPrefix) {
		return strings.TrimPrefix(string(k), externalKindPrefix)
	}
	return ""
}

// LinkedAccount is one authentication method bound to a user. Exactly one of
// PasswordHash or (Provider, ExternalUID) is set, selected by Kind. Use
// NewInternalAccount or NewExternalAccount so the invariant holds by
// construction; Validate re-checks records decoded from storage.
type LinkedAccount struct {
	bun.BaseModel `bun:"table:linked_accounts,alias:lac"`
	ID            uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID   `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Kind          AccountKind `bun:"kind,notnull" json:"kind"`
	Provider      string      `bun:"provider" json:"provider,omitempty"`
	ExternalUID   string      `bun:"external_uid" json:"external_uid,omitempty"`
	PasswordHash  string      `bun:"password_hash" json:"-"`
	CreatedAt     *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// NewInternalAccount builds the password variant.
func NewInternalAccount(passwordHash string) (*LinkedAccount, error) {
	if passwordHash == "" {
		return nil, ErrNoEmptyString
	}
	return &LinkedAccount{
		Kind:         AccountKindInternal,
		PasswordHash: passwordHash,
	}, nil
}

// NewExternalAccount builds the provider variant.
func NewExternalAccount(provider, externalUID string) (*LinkedAccount, error) {
	if provider == "" || externalUID == "" {
		return nil, ErrNoEmptyString
	}
	return &LinkedAccount{
		Kind:        ExternalAccountKind(provider),
		Provider:    provider,
		ExternalUID: externalUID,
	}, nil
}

// IsInternal reports whether this is the password variant.
func (a *LinkedAccount) IsInternal() bool { return a.Kind.IsInternal() }

// Matches reports whether this account binds the given provider identity.
func (a *LinkedAccount) Matches(provider, externalUID string) bool {
	return !a.IsInternal() && a.Provider == provider && a.ExternalUID == externalUID
}

// Validate enforces the exactly-one-of invariant on decoded records.
func (a *LinkedAccount) Validate() error {
	if a.IsInternal() {
		if a.PasswordHash == "" || a.Provider != "" || a.ExternalUID != "" {
			return ErrInvalidLinkedAccount
		}
		return nil
	}
	if a.Kind.Provider() == "" {
		return ErrInvalidLinkedAccount
	}
	if a.ExternalUID == "" || a.PasswordHash != "" {
		return ErrInvalidLinkedAccount
	}
	if a.Provider != a.Kind.Provider() {
		return ErrInvalidLinkedAccount
	}
	return nil
}

// User is the canonical identity record. Accounts preserves link order; a
// usable user always has at least one entry.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string           `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string           `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string           `bun:"phone_number" json:"phone_number,omitempty"`
	Role          UserRole         `bun:"user_role,notnull" json:"user_role,omitempty"`
	Permissions   []Permission     `bun:"permissions,type:jsonb" json:"permissions,omitempty"`
	Accounts      []*LinkedAccount `bun:"rel:has-many,join:id=user_id" json:"accounts,omitempty"`
	CreatedAt     *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time       `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Can reports whether the user may perform op on route. Admins can do
// everything; everyone else needs an explicit permission entry.
func (u *User) Can(route string, op Operation) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p.Allows(route, op) {
			return true
		}
	}
	return false
}

// InternalAccount returns the first password backed account in link order.
func (u *User) InternalAccount() (*LinkedAccount, bool) {
	for _, a := range u.Accounts {
		if a != nil && a.IsInternal() {
			return a, true
		}
	}
	return nil, false
}

// ExternalAccount returns the account bound to (provider, externalUID).
func (u *User) ExternalAccount(provider, externalUID string) (*LinkedAccount, bool) {
	for _, a := range u.Accounts {
		if a != nil && a.Matches(provider, externalUID) {
			return a, true
		}
	}
	return nil, false
}

// EnsureRole defaults the role when unset.
func (u *User) EnsureRole() {
	if u.Role == "" {
		u.Role = DefaultRole
	}
}

type authIdentity struct {
	id       string
	username string
	email    string
	role     string
}

func (a authIdentity) ID() string       { return a.id }
func (a authIdentity) Username() string { return a.username }
func (a authIdentity) Email() string    { return a.email }
func (a authIdentity) Role() string     { return a.role }

var _ Identity = authIdentity{}

// IdentityFromUser builds the transport facing identity summary.
func IdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return authIdentity{
		id:       user.ID.String(),
		username: user.Username,
		email:    user.Email,
		role:     string(user.Role),
	}
}
