package ops

import (
	"strings"

	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/vault"
)

// LoginInput contains parameters for the Login operation.
type LoginInput struct {
	Name string // required, display name
	Now  int64  // optional clock override (epoch ms)
}

// LoginOutput contains the result of the Login operation.
type LoginOutput struct {
	User vault.User `json:"user"`
}

// Login creates the local session identity. The only check is a
// non-empty name: this is a session stub for a single-user local app,
// not authentication. The avatar is derived deterministically from the
// name. Logging in replaces any previous current user.
func Login(st *store.Store, input LoginInput) (*LoginOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	id, err := newID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	user := vault.User{
		ID:        id,
		Name:      name,
		Avatar:    vault.AvatarURL(name),
		LastLogin: resolveNow(input.Now),
	}

	_, err = st.Mutate(func(state *vault.AppState) error {
		state.CurrentUser = &user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &LoginOutput{User: user}, nil
}

// LogoutOutput contains the result of the Logout operation.
type LogoutOutput struct {
	PreviousUser *vault.User `json:"previous_user,omitempty"`
}

// Logout clears the current user. Logging out when nobody is logged in
// is a no-op, not an error.
func Logout(st *store.Store) (*LogoutOutput, error) {
	var out LogoutOutput
	_, err := st.Mutate(func(state *vault.AppState) error {
		out.PreviousUser = state.CurrentUser
		state.CurrentUser = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the current session user, or nil if nobody is
// logged in.
func CurrentUser(st *store.Store) (*vault.User, error) {
	state, err := st.Load()
	if err != nil {
		return nil, err
	}
	return state.CurrentUser, nil
}
