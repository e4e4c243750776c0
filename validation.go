package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// MinPasswordLength optionally enforces a length floor at registration time.
// Zero, the default, only requires a non-empty password. Existing hashes are
// never re-checked when the floor is raised.
var MinPasswordLength = 0

// ValidateEmail checks address syntax, returning ErrInvalidEmailFormat so
// transports get a stable failure kind.
func ValidateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required,
		is.Email,
	)
	if err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

// ValidateRegistration checks the register input before any store call.
func ValidateRegistration(username, email, password string) error {
	if err := validation.Validate(username,
		validation.Required,
		validation.Length(3, 50),
	); err != nil {
		return wrapValidationErr(err, "invalid username")
	}

	if err := ValidateEmail(email); err != nil {
		return err
	}

	passwordRules := []validation.Rule{validation.Required}
	if MinPasswordLength > 0 {
		passwordRules = append(passwordRules, validation.Length(MinPasswordLength, 0))
	}
	if err := validation.Validate(password, passwordRules...); err != nil {
		return wrapValidationErr(err, "invalid password")
	}

	return nil
}

// ValidatePhone checks an optional phone number when a provider profile or
// registration carries one. Empty input is fine.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	parsed, err := phonenumbers.Parse(phone, "US")
	if err != nil {
		return wrapValidationErr(err, "invalid phone number")
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return wrapValidationErr(nil, "invalid phone number")
	}
	return nil
}

func wrapValidationErr(err error, msg string) error {
	if err == nil {
		return goerrors.New(msg, goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg).WithCode(goerrors.CodeBadRequest)
}
