package vault

import "net/url"

// knownIcons is the fixed icon tag set the UI can render.
var knownIcons = map[string]bool{
	"Code": true, "Book": true, "Hash": true, "Palette": true,
	"Gamepad2": true, "Music": true, "PenTool": true, "Wallet": true,
	"Mic2": true, "Globe": true, "Brain": true, "Rocket": true,
	"Camera": true, "User": true,
}

// DefaultIcon is the fallback icon tag for unknown or empty tags.
const DefaultIcon = "User"

// KnownIcon returns tag if it belongs to the icon set, DefaultIcon otherwise.
func KnownIcon(tag string) string {
	if knownIcons[tag] {
		return tag
	}
	return DefaultIcon
}

// DefaultSkills returns the seed skill catalog for a fresh vault.
// The fixed ids keep seed data stable across resets.
func DefaultSkills(now int64) []Skill {
	return []Skill{
		{ID: "1", Name: "Python Basics", Category: CategoryCoding, Icon: "Code", Color: "#3b82f6", CreatedAt: now},
		{ID: "2", Name: "English Speaking", Category: CategoryEnglish, Icon: "Mic2", Color: "#8b5cf6", CreatedAt: now},
		{ID: "3", Name: "Algebra Master", Category: CategoryMaths, Icon: "Hash", Color: "#ef4444", CreatedAt: now},
		{ID: "4", Name: "Digital Art", Category: CategoryCreativity, Icon: "Palette", Color: "#ec4899", CreatedAt: now},
		{ID: "5", Name: "Game Design", Category: CategoryCoding, Icon: "Gamepad2", Color: "#f59e0b", CreatedAt: now},
		{ID: "6", Name: "Music Beats", Category: CategoryCreativity, Icon: "Music", Color: "#10b981", CreatedAt: now},
		{ID: "7", Name: "Creative Writing", Category: CategoryEnglish, Icon: "PenTool", Color: "#6366f1", CreatedAt: now},
		{ID: "8", Name: "Money Matters", Category: CategoryMaths, Icon: "Wallet", Color: "#06b6d4", CreatedAt: now},
		{ID: "9", Name: "Web Wizardry", Category: CategoryCoding, Icon: "Globe", Color: "#f43f5e", CreatedAt: now},
		{ID: "10", Name: "Mindfulness", Category: CategoryCreativity, Icon: "Brain", Color: "#84cc16", CreatedAt: now},
		{ID: "11", Name: "Launchpad", Category: CategoryCustom, Icon: "Rocket", Color: "#a855f7", CreatedAt: now},
		{ID: "12", Name: "Photography", Category: CategoryCreativity, Icon: "Camera", Color: "#d946ef", CreatedAt: now},
	}
}

// DefaultState returns the state a fresh (or reset) vault starts from:
// the seed catalog, no capsules, no current user.
func DefaultState(now int64) *AppState {
	return &AppState{
		Skills:   DefaultSkills(now),
		Capsules: []Capsule{},
	}
}

// AvatarURL derives a deterministic avatar image URL from a display name.
func AvatarURL(name string) string {
	return "https://api.dicebear.com/7.x/bottts/svg?seed=" + url.QueryEscape(name)
}
