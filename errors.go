package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeDuplicateIdentity  = "auth_duplicate_identity"
	TextCodeInvalidCreds       = "auth_invalid_credentials"
	TextCodeUnknownStrategy    = "auth_unknown_strategy"
	TextCodeAccountLinked      = "auth_account_already_linked"
	TextCodeTokenMalformed     = "auth_token_malformed"
	TextCodeTokenExpired       = "auth_token_expired"
	TextCodeIdentityNotFound   = "auth_identity_not_found"
	TextCodeInvalidEmail       = "auth_invalid_email_format"
	TextCodeNoInternalAccount  = "auth_no_internal_account"
	TextCodeStoreUnavailable   = "auth_store_unavailable"
	TextCodeInvalidLinkedState = "auth_invalid_linked_account"
)

// ErrDuplicateIdentity is returned when a username or email is already taken.
var ErrDuplicateIdentity = errors.New("identity already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(errors.CodeConflict)

// ErrMismatchedHashAndPassword is the single error returned for unknown users
// and wrong passwords alike, so callers cannot tell which check failed.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrUnknownStrategy is returned when the login request names a strategy
// that was never registered.
var ErrUnknownStrategy = errors.New("unknown authentication strategy", errors.CategoryNotFound).
	WithTextCode(TextCodeUnknownStrategy).
	WithCode(errors.CodeNotFound)

// ErrAccountAlreadyLinked is returned when a (provider, uid) pair is already
// bound to a different identity.
var ErrAccountAlreadyLinked = errors.New("external account already linked to another identity", errors.CategoryConflict).
	WithTextCode(TextCodeAccountLinked).
	WithCode(errors.CodeConflict)

// ErrTokenMalformed covers bad signatures and undecodable tokens.
var ErrTokenMalformed = errors.New("session token is malformed or has an invalid signature", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for well formed tokens past their expiry.
var ErrTokenExpired = errors.New("session token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidEmailFormat is returned when an email fails address validation.
var ErrInvalidEmailFormat = errors.New("email does not match a valid address format", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidEmail).
	WithCode(errors.CodeBadRequest)

// ErrNoInternalAccount is returned when an identity has no password backed
// account. External only identities are valid, they just cannot do password
// login, so callers should treat this as a branch and not a fault.
var ErrNoInternalAccount = errors.New("identity has no internal account", errors.CategoryNotFound).
	WithTextCode(TextCodeNoInternalAccount).
	WithCode(errors.CodeNotFound)

// ErrStoreUnavailable wraps transient store failures. No retries happen here,
// the caller decides.
var ErrStoreUnavailable = errors.New("identity store unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeStoreUnavailable).
	WithCode(errors.CodeInternal)

// ErrNoEmptyString is returned when a required string input is empty.
var ErrNoEmptyString = errors.New("value must not be an empty string", errors.CategoryBadInput).
	WithTextCode("auth_empty_string").
	WithCode(errors.CodeBadRequest)

// ErrInvalidLinkedAccount is returned when a linked account record violates
// the kind invariant: internal accounts carry a password hash and nothing
// else, external accounts carry a provider uid and nothing else.
var ErrInvalidLinkedAccount = errors.New("linked account violates its kind invariant", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidLinkedState).
	WithCode(errors.CodeBadRequest)

// IsDuplicateIdentityError checks for unique constraint style failures.
func IsDuplicateIdentityError(err error) bool {
	return hasTextCode(err, TextCodeDuplicateIdentity)
}

// IsInvalidCredentialsError checks for the conflated credentials failure.
func IsInvalidCredentialsError(err error) bool {
	return hasTextCode(err, TextCodeInvalidCreds)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for undecodable or badly signed tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsStoreUnavailableError checks for transient store failures.
func IsStoreUnavailableError(err error) bool {
	return hasTextCode(err, TextCodeStoreUnavailable)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// WrapStoreErr normalizes adapter failures: not-found stays not-found,
// typed auth errors pass through, everything else surfaces as a store
// availability problem.
func WrapStoreErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.IsNotFound(err) {
		return err
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich
	}
	return errors.Wrap(err, ErrStoreUnavailable.Category, msg).
		WithTextCode(TextCodeStoreUnavailable)
}
