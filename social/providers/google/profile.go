package google

import (
	"encoding/json"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-multiauth"
	"github.com/goliatone/go-multiauth/social"
)

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

func parseProfile(body []byte) (*auth.ExternalProfile, error) {
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, goerrors.Wrap(err, social.ErrUserInfoFailed.Category, social.ErrUserInfoFailed.Message).
			WithTextCode(social.ErrUserInfoFailed.TextCode)
	}

	if info.Sub == "" {
		return nil, social.ErrEmptyProfile
	}

	return &auth.ExternalProfile{
		Provider:      "google",
		ExternalUID:   info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
		AvatarURL:     info.Picture,
		Raw: map[string]any{
			"sub":            info.Sub,
			"email":          info.Email,
			"email_verified": info.EmailVerified,
			"name":           info.Name,
			"given_name":     info.GivenName,
			"family_name":    info.FamilyName,
			"picture":        info.Picture,
			"locale":         info.Locale,
		},
	}, nil
}
