package ops

import (
	"github.com/knelavan/skilltime/internal/store"
)

// ResetOutput contains the result of the Reset operation.
type ResetOutput struct {
	Skills   int `json:"skills"`
	Capsules int `json:"capsules"`
}

// Reset wipes the vault back to the default state: seed skill catalog,
// no capsules, no current user. This is the only way capsules are ever
// deleted.
func Reset(st *store.Store) (*ResetOutput, error) {
	state, err := st.Reset()
	if err != nil {
		return nil, err
	}
	return &ResetOutput{Skills: len(state.Skills), Capsules: len(state.Capsules)}, nil
}
