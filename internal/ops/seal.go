package ops

import (
	"fmt"
	"strings"

	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/vault"
)

// SealInput contains parameters for the Seal operation.
type SealInput struct {
	SkillID         string // required, must reference an existing skill
	Content         string // required, the "past self" snapshot
	MessageToFuture string // required, the stated goal
	DurationMonths  int    // one of vault.SupportedDurations
	Now             int64  // optional clock override (epoch ms)
}

// SealOutput contains the result of the Seal operation.
type SealOutput struct {
	Capsule   vault.Capsule `json:"capsule"`
	SkillName string        `json:"skill_name"`
}

// Seal creates a new time-locked capsule and persists it. The unlock
// instant is creation time plus the duration in fixed 30-day months.
func Seal(st *store.Store, input SealInput) (*SealOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}
	if strings.TrimSpace(input.MessageToFuture) == "" {
		return nil, errors.NewInvalidRequest("message_to_future is required")
	}
	if !vault.SupportedDuration(input.DurationMonths) {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("duration_months must be one of %v", vault.SupportedDurations))
	}

	id, err := newID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := resolveNow(input.Now)

	var out SealOutput
	_, err = st.Mutate(func(state *vault.AppState) error {
		skill, ok := state.SkillByID(input.SkillID)
		if !ok {
			return errors.NewNotFound("skill", input.SkillID)
		}

		c := vault.NewCapsule(id, input.SkillID, input.Content, input.MessageToFuture, input.DurationMonths, now)
		state.Capsules = append(state.Capsules, c)

		out = SealOutput{Capsule: c, SkillName: skill.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}
