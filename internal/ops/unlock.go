package ops

import (
	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/vault"
)

// UnlockInput contains parameters for the Unlock operation.
type UnlockInput struct {
	ID  string // required
	Now int64  // optional clock override (epoch ms)
}

// UnlockOutput contains the result of the Unlock operation.
type UnlockOutput struct {
	CapsuleView
}

// Unlock opens a ready capsule: it marks the capsule as unlocked and
// persists the transition (Sealed → Ready → Opened). Readiness itself is
// still derived purely from the unlock instant; the flag only records
// that the owner has looked inside. Unlocking an already-opened capsule
// is a no-op, not an error.
func Unlock(st *store.Store, input UnlockInput) (*UnlockOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	now := resolveNow(input.Now)

	var out UnlockOutput
	_, err := st.Mutate(func(state *vault.AppState) error {
		c, ok := state.CapsuleByID(input.ID)
		if !ok {
			return errors.NewNotFound("capsule", input.ID)
		}
		if !vault.IsReady(*c, now) {
			return errors.NewStillLocked(c.ID, vault.RemainingTime(*c, now))
		}

		c.IsUnlocked = true
		out = UnlockOutput{CapsuleView: newCapsuleView(state, *c, now)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}
