// Package auth implements a multi-provider authentication and session core:
// one logical user account reachable through several credential types, the
// verification logic for each, and the issuance and validation of the
// session tokens that gate subsequent requests.
//
// # Model
//
// A User is the canonical identity record, addressed by a unique username
// and email. Each user owns an ordered list of LinkedAccount entries, one
// per authentication method: the internal variant carries a bcrypt password
// hash, external variants carry a provider scoped uid. A usable user always
// has at least one account.
//
// # Strategies
//
// Login requests name a strategy and carry an Assertion. The Registry
// dispatches to the matching AuthStrategy, which resolves the assertion to a
// user record or a typed failure. LocalPasswordStrategy handles password
// assertions; the social subpackage provides per-provider strategies that
// consume profiles already exchanged by the transport layer.
//
// # Sessions
//
// TokenService mints HS256 signed SessionClaims with a fixed TTL (three
// hours by default) and validates presented tokens: bad signatures fail
// with ErrTokenMalformed, stale tokens with ErrTokenExpired. Tokens are
// stateless; there is no revocation before expiry.
//
// # Stores
//
// The package depends on the UserStore contract only. The repository
// subpackage ships a Bun backed implementation and an in-memory store; both
// guarantee atomic create-if-absent semantics for username, email, and
// (provider, uid) uniqueness, so concurrent registrations racing on the
// same key yield exactly one success.
package auth
