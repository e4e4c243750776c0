package social

import "github.com/goliatone/go-errors"

const (
	TextCodeTokenExchangeFail = "social_token_exchange_failed"
	TextCodeUserInfoFail      = "social_user_info_failed"
	TextCodeEmptyProfile      = "social_empty_profile"
)

// ErrTokenExchangeFailed is returned when a provider token exchange fails.
var ErrTokenExchangeFailed = errors.New("token exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExchangeFail).
	WithCode(errors.CodeUnauthorized)

// ErrUserInfoFailed is returned when fetching user info fails.
var ErrUserInfoFailed = errors.New("failed to fetch user info", errors.CategoryAuth).
	WithTextCode(TextCodeUserInfoFail).
	WithCode(errors.CodeUnauthorized)

// ErrEmptyProfile is returned when an assertion arrives without a provider
// profile or with a profile missing its uid.
var ErrEmptyProfile = errors.New("provider assertion carries no usable profile", errors.CategoryBadInput).
	WithTextCode(TextCodeEmptyProfile).
	WithCode(errors.CodeBadRequest)
