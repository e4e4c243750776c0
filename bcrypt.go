package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for new password hashes. Hashing at this
// cost blocks the calling goroutine for tens of milliseconds, which is the
// point.
var BcryptCost = 12

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. Malformed or corrupted hashes report a mismatch
// instead of failing the caller.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// RandomPasswordHash is an unguessable placeholder hash. The local strategy
// compares against it when the username is unknown so both failure paths cost
// the same.
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}

type bcryptHasher struct{}

func (bcryptHasher) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (bcryptHasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

// DefaultHasher is the bcrypt backed PasswordAuthenticator.
var DefaultHasher PasswordAuthenticator = bcryptHasher{}
