package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions for the vault tool family.

var sealToolDef = mcp.NewTool("vault_seal",
	mcp.WithDescription("Seal a time-locked capsule: a snapshot of where a skill stands today, locked until its unlock date."),
	mcp.WithString("skill_id",
		mcp.Required(),
		mcp.Description("ID of the skill this capsule records (see vault_skills)."),
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("The skill snapshot: what the owner can do right now, in their own words."),
	),
	mcp.WithString("message_to_future",
		mcp.Required(),
		mcp.Description("A message the owner writes to their future self."),
	),
	mcp.WithNumber("duration_months",
		mcp.Required(),
		mcp.Description("Lock duration in months. One of 1, 3, 6, 12."),
	),
)

var listToolDef = mcp.NewTool("vault_list",
	mcp.WithDescription("List all capsules newest-first, with readiness and remaining time evaluated at the current instant."),
)

var fetchToolDef = mcp.NewTool("vault_fetch",
	mcp.WithDescription("Fetch one capsule by ID, with its derived readiness and remaining-time fields."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Capsule ID."),
	),
)

var unlockToolDef = mcp.NewTool("vault_unlock",
	mcp.WithDescription("Open a ready capsule. Fails with STILL_LOCKED before the unlock instant. Opening an already-opened capsule is a no-op."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Capsule ID."),
	),
)

var reflectToolDef = mcp.NewTool("vault_reflect",
	mcp.WithDescription("Compare a ready capsule's sealed snapshot against a fresh one and return an encouraging growth narrative. The narrative is always plain text, even when the mirror service is unavailable."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Capsule ID. The capsule must be past its unlock instant."),
	),
	mcp.WithString("present_content",
		mcp.Required(),
		mcp.Description("Today's snapshot of the same skill."),
	),
)

var skillsToolDef = mcp.NewTool("vault_skills",
	mcp.WithDescription("List the skill catalog in display order."),
)

var addSkillToolDef = mcp.NewTool("vault_add_skill",
	mcp.WithDescription("Add a custom skill to the catalog. Skills are immutable once created."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Skill display name."),
	),
	mcp.WithString("category",
		mcp.Description("One of coding, english, maths, creativity, custom. Defaults to custom."),
	),
	mcp.WithString("icon",
		mcp.Description("Icon name. Unknown icons fall back to the default."),
	),
	mcp.WithString("color",
		mcp.Description("Display color as #rrggbb. Random if empty."),
	),
)

var exportToolDef = mcp.NewTool("vault_export",
	mcp.WithDescription("Write the full vault state to a JSON file."),
	mcp.WithString("path",
		mcp.Description("Destination file path. Defaults to a timestamped file under the exports directory."),
	),
)
