package ops

import (
	"context"
	"strings"

	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/mirror"
	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/vault"
)

// ReflectInput contains parameters for the Reflect operation.
type ReflectInput struct {
	ID             string // required, the capsule to reflect on
	PresentContent string // required, today's snapshot
	Now            int64  // optional clock override (epoch ms)
}

// ReflectOutput contains the result of the Reflect operation.
type ReflectOutput struct {
	CapsuleID string `json:"capsule_id"`
	SkillName string `json:"skill_name"`
	Narrative string `json:"narrative"`
}

// Reflect compares a ready capsule's sealed snapshot against a fresh one
// via the growth mirror and returns the narrative. The narrative is a
// transient view, not persisted state; a capsule may be reflected on any
// number of times while ready. Mirror failures never surface here — the
// narrative is always a non-empty string.
func Reflect(ctx context.Context, st *store.Store, svc *mirror.Service, input ReflectInput) (*ReflectOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if strings.TrimSpace(input.PresentContent) == "" {
		return nil, errors.NewInvalidRequest("present_content is required")
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
	if !vault.IsReady(*c, now) {
		return nil, errors.NewStillLocked(c.ID, vault.RemainingTime(*c, now))
	}

	skillName := state.SkillName(c.SkillID)
	narrative := svc.Compare(ctx, mirror.CompareInput{
		CapsuleID:      c.ID,
		SkillName:      skillName,
		PastContent:    c.Content,
		PresentContent: input.PresentContent,
		GoalMessage:    c.MessageToFuture,
	})

	return &ReflectOutput{
		CapsuleID: c.ID,
		SkillName: skillName,
		Narrative: narrative,
	}, nil
}
