package ops

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/vault"
)

// AddSkillInput contains parameters for the AddSkill operation.
type AddSkillInput struct {
	Name     string // required
	Category string // optional, defaults to "custom"
	Icon     string // optional, defaults to "Rocket"
	Color    string // optional, random hex if empty
	Now      int64  // optional clock override (epoch ms)
}

// AddSkillOutput contains the result of the AddSkill operation.
type AddSkillOutput struct {
	Skill vault.Skill `json:"skill"`
}

// AddSkill appends a new skill to the catalog. Skills are immutable once
// created and there is no delete operation; a mistake lives until a reset.
func AddSkill(st *store.Store, input AddSkillInput) (*AddSkillOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	category := vault.Category(input.Category)
	if input.Category == "" {
		category = vault.CategoryCustom
	}
	if !category.Valid() {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("category must be one of %v", vault.Categories()))
	}

	icon := input.Icon
	if icon == "" {
		icon = "Rocket"
	}
	icon = vault.KnownIcon(icon)

	color := input.Color
	if color == "" {
		var err error
		color, err = randomColor()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	id, err := newID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	skill := vault.Skill{
		ID:        id,
		Name:      name,
		Category:  category,
		Icon:      icon,
		Color:     color,
		CreatedAt: resolveNow(input.Now),
	}

	_, err = st.Mutate(func(state *vault.AppState) error {
		state.Skills = append(state.Skills, skill)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &AddSkillOutput{Skill: skill}, nil
}

// ListSkillsOutput contains the result of the ListSkills operation.
type ListSkillsOutput struct {
	Items []vault.Skill `json:"items"`
	Total int           `json:"total"`
}

// ListSkills returns the skill catalog in insertion (display) order.
func ListSkills(st *store.Store) (*ListSkillsOutput, error) {
	state, err := st.Load()
	if err != nil {
		return nil, err
	}
	return &ListSkillsOutput{Items: state.Skills, Total: len(state.Skills)}, nil
}

// randomColor picks a random display color as "#rrggbb".
func randomColor() (string, error) {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("#%02x%02x%02x", b[0], b[1], b[2]), nil
}
