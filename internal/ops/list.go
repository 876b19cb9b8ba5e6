package ops

import (
	"sort"

	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/vault"
)

// CapsuleView is a capsule with its derived, time-dependent fields
// resolved against the clock at read time. Readiness is recomputed on
// every listing; it is never cached.
type CapsuleView struct {
	vault.Capsule
	SkillName string `json:"skillName"`
	Ready     bool   `json:"ready"`
	Remaining string `json:"remaining"`
}

// ListInput contains parameters for the List operation.
type ListInput struct {
	Now int64 // optional clock override (epoch ms)
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []CapsuleView `json:"items"`
	Total int           `json:"total"`
}

// List returns all capsules newest-first with readiness and remaining
// time evaluated at now. Dangling skill references resolve to the
// unknown-skill placeholder instead of failing.
func List(st *store.Store, input ListInput) (*ListOutput, error) {
	state, err := st.Load()
	if err != nil {
		return nil, err
	}

	now := resolveNow(input.Now)

	items := make([]CapsuleView, 0, len(state.Capsules))
	for _, c := range state.Capsules {
		items = append(items, newCapsuleView(state, c, now))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})

	return &ListOutput{Items: items, Total: len(items)}, nil
}

// newCapsuleView resolves the derived fields for one capsule.
func newCapsuleView(state *vault.AppState, c vault.Capsule, now int64) CapsuleView {
	return CapsuleView{
		Capsule:   c,
		SkillName: state.SkillName(c.SkillID),
		Ready:     vault.IsReady(c, now),
		Remaining: vault.RemainingTime(c, now),
	}
}
