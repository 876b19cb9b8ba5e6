package ops

import (
	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/store"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID  string // required
	Now int64  // optional clock override (epoch ms)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	CapsuleView
}

// Fetch returns one capsule with its derived fields evaluated at now.
func Fetch(st *store.Store, input FetchInput) (*FetchOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	state, err := st.Load()
	if err != nil {
		return nil, err
	}

	c, ok := state.CapsuleByID(input.ID)
	if !ok {
		return nil, errors.NewNotFound("capsule", input.ID)
	}

	now := resolveNow(input.Now)
	return &FetchOutput{CapsuleView: newCapsuleView(state, *c, now)}, nil
}
