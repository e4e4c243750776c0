package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// RegisterUserMessage is the command payload for user registration. It
// matches the go-command message shape so applications can route it through
// their dispatcher.
type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	// UseHashid derives the user id deterministically from the email, which
	// keeps ids stable across environment rebuilds.
	UseHashid bool

	OnResponse func(user *User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler executes registrations against the identity store.
type RegisterUserHandler struct {
	store  UserStore
	hasher PasswordAuthenticator
}

// NewRegisterUserHandler builds the handler with the bcrypt hasher.
func NewRegisterUserHandler(store UserStore) *RegisterUserHandler {
	return &RegisterUserHandler{
		store:  store,
		hasher: DefaultHasher,
	}
}

func (h *RegisterUserHandler) WithHasher(hasher PasswordAuthenticator) *RegisterUserHandler {
	if hasher != nil {
		h.hasher = hasher
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	username := getUsername(event.Username, event.Email)

	if err := ValidateRegistration(username, event.Email, event.Password); err != nil {
		return err
	}

	if err := ValidatePhone(event.Phone); err != nil {
		return err
	}

	hash, err := h.hasher.HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account, err := NewInternalAccount(hash)
	if err != nil {
		return err
	}

	user := &User{
		Username: username,
		Email:    event.Email,
		Phone:    event.Phone,
		Role:     DefaultRole,
		Accounts: []*LinkedAccount{account},
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = id
		}
	}

	created, err := h.store.CreateUser(ctx, user)
	if err != nil {
		return WrapStoreErr(err, "could not create user")
	}

	if event.OnResponse != nil {
		event.OnResponse(created)
	}

	return nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
