package facebook

import (
	"encoding/json"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-multiauth"
	"github.com/goliatone/go-multiauth/social"
)

type facebookUserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func parseProfile(body []byte) (*auth.ExternalProfile, error) {
	var info facebookUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, goerrors.Wrap(err, social.ErrUserInfoFailed.Category, social.ErrUserInfoFailed.Message).
			WithTextCode(social.ErrUserInfoFailed.TextCode)
	}

	if info.ID == "" {
		return nil, social.ErrEmptyProfile
	}

	return &auth.ExternalProfile{
		Provider:    "facebook",
		ExternalUID: info.ID,
		Email:       info.Email,
		// the Graph API only returns an email the user has confirmed
		EmailVerified: info.Email != "",
		Name:          info.Name,
		AvatarURL:     info.Picture.Data.URL,
		Raw: map[string]any{
			"id":    info.ID,
			"name":  info.Name,
			"email": info.Email,
		},
	}, nil
}
