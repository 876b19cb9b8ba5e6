package vault

// Category classifies a skill track.
type Category string

const (
	CategoryCoding     Category = "coding"
	CategoryEnglish    Category = "english"
	CategoryMaths      Category = "maths"
	CategoryCreativity Category = "creativity"
	CategoryCustom     Category = "custom"
)

// Categories returns all valid skill categories in display order.
func Categories() []Category {
	return []Category{
		CategoryCoding,
		CategoryEnglish,
		CategoryMaths,
		CategoryCreativity,
		CategoryCustom,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCoding, CategoryEnglish, CategoryMaths, CategoryCreativity, CategoryCustom:
		return true
	}
	return false
}

// ContentType tags what kind of snapshot a capsule holds.
// The seal flow only produces text today; the other variants are
// reserved for recorded snapshots.
type ContentType string

const (
	ContentAudio     ContentType = "audio"
	ContentVideo     ContentType = "video"
	ContentText      ContentType = "text"
	ContentChallenge ContentType = "challenge"
)

// ContentTypes returns all valid capsule content types.
func ContentTypes() []ContentType {
	return []ContentType{ContentAudio, ContentVideo, ContentText, ContentChallenge}
}

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentAudio, ContentVideo, ContentText, ContentChallenge:
		return true
	}
	return false
}

// Skill represents a trackable growth domain.
// Skills are immutable after creation and are never deleted outside a
// full vault reset.
type Skill struct {
	// ID uniquely identifies the skill within the vault
	ID string `json:"id"`

	// Name is the display name
	Name string `json:"name"`

	// Category is one of the closed category set
	Category Category `json:"category"`

	// Icon is a key into the fixed icon tag set
	Icon string `json:"icon"`

	// Color is a hex display hint with no semantic meaning
	Color string `json:"color"`

	// CreatedAt is epoch milliseconds at creation
	CreatedAt int64 `json:"createdAt"`
}

// Capsule represents one sealed growth snapshot.
// All required fields are supplied at seal time; a capsule is never
// partially constructed and never mutated afterwards, except for the
// unlocked flag set by the unlock transition.
type Capsule struct {
	// ID uniquely identifies the capsule
	ID string `json:"id"`

	// SkillID references a Skill. The reference may dangle if the skill
	// catalog was replaced; display falls back to UnknownSkillName.
	SkillID string `json:"skillId"`

	// Type tags the snapshot content
	Type ContentType `json:"type"`

	// Content is the "past self" snapshot text
	Content string `json:"content"`

	// MessageToFuture is the stated goal for the future self
	MessageToFuture string `json:"messageToFuture"`

	// CreatedAt is epoch milliseconds at seal time
	CreatedAt int64 `json:"createdAt"`

	// LockDurationMonths is the chosen lock duration (1, 3, 6 or 12)
	LockDurationMonths int `json:"lockDurationMonths"`

	// UnlockAt is CreatedAt + LockDurationMonths fixed 30-day months,
	// in epoch milliseconds
	UnlockAt int64 `json:"unlockAt"`

	// IsUnlocked records that the owner opened the capsule. Readiness
	// is always derived from UnlockAt and the clock, never from this flag.
	IsUnlocked bool `json:"isUnlocked"`

	// ComparisonResult holds the last growth narrative, if any
	ComparisonResult *string `json:"comparisonResult,omitempty"`
}

// User is the local session identity. It is not authentication: the
// presence of a current user gates navigation and nothing else.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	LastLogin int64  `json:"lastLogin"`
}

// AppState is the single root aggregate persisted as one blob.
// Slice order is insertion order; creation-time-descending listings are
// derived views, not storage order.
type AppState struct {
	CurrentUser *User     `json:"currentUser,omitempty"`
	Skills      []Skill   `json:"skills"`
	Capsules    []Capsule `json:"capsules"`
}

// UnknownSkillName is the placeholder shown for capsules whose skill
// reference no longer resolves.
const UnknownSkillName = "Unknown Skill"

// SkillByID finds a skill by id.
func (s *AppState) SkillByID(id string) (Skill, bool) {
	for _, sk := range s.Skills {
		if sk.ID == id {
			return sk, true
		}
	}
	return Skill{}, false
}

// SkillName resolves a skill id to its display name, falling back to
// UnknownSkillName for dangling references.
func (s *AppState) SkillName(id string) string {
	if sk, ok := s.SkillByID(id); ok {
		return sk.Name
	}
	return UnknownSkillName
}

// CapsuleByID finds a capsule by id. The returned pointer aliases the
// state's slice so callers inside a mutation funnel can update in place.
func (s *AppState) CapsuleByID(id string) (*Capsule, bool) {
	for i := range s.Capsules {
		if s.Capsules[i].ID == id {
			return &s.Capsules[i], true
		}
	}
	return nil, false
}
