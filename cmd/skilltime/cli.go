package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/knelavan/skilltime/internal/config"
	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/mirror"
	"github.com/knelavan/skilltime/internal/ops"
	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *store.Store, cfg *config.Config, svc *mirror.Service) *cli.App {
	app := &cli.App{
		Name:    "skilltime",
		Usage:   "Skill time capsule vault",
		Version: Version,
		Commands: []*cli.Command{
			sealCmd(st),
			listCmd(st),
			fetchCmd(st),
			unlockCmd(st),
			reflectCmd(st, svc),
			skillsCmd(st),
			addSkillCmd(st),
			loginCmd(st),
			logoutCmd(st),
			whoamiCmd(st),
			exportCmd(st),
			resetCmd(st),
			webCmd(st, cfg, svc),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// sealCmd creates the seal command.
func sealCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "seal",
		Usage: "Seal a new capsule (reads the skill snapshot from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "skill", Aliases: []string{"s"}, Required: true, Usage: "Skill ID (see 'skilltime skills')"},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Required: true, Usage: "Message to your future self"},
			&cli.IntFlag{Name: "months", Aliases: []string{"d"}, Value: 1, Usage: "Lock duration in months: 1, 3, 6, or 12"},
		},
		Action: func(c *cli.Context) error {
			// Require stdin input
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("the skill snapshot must be piped via stdin"))
			}

			content, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if content == "" {
				return outputError(errors.NewInvalidRequest("the skill snapshot is required"))
			}

			output, err := ops.Seal(st, ops.SealInput{
				SkillID:         c.String("skill"),
				Content:         content,
				MessageToFuture: c.String("message"),
				DurationMonths:  c.Int("months"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all capsules newest-first with readiness and remaining time",
		Action: func(c *cli.Context) error {
			output, err := ops.List(st, ops.ListInput{})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a capsule by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule ID is required"))
			}

			output, err := ops.Fetch(st, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// unlockCmd creates the unlock command.
func unlockCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "unlock",
		Usage:     "Open a ready capsule",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule ID is required"))
			}

			output, err := ops.Unlock(st, ops.UnlockInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// reflectCmd creates the reflect command.
func reflectCmd(st *store.Store, svc *mirror.Service) *cli.Command {
	return &cli.Command{
		Name:      "reflect",
		Usage:     "Compare a ready capsule against today's snapshot (reads the snapshot from stdin)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule ID is required"))
			}

			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("today's snapshot must be piped via stdin"))
			}
			present, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			output, err := ops.Reflect(c.Context, st, svc, ops.ReflectInput{
				ID:             c.Args().First(),
				PresentContent: present,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// skillsCmd creates the skills command.
func skillsCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "List the skill catalog",
		Action: func(c *cli.Context) error {
			output, err := ops.ListSkills(st)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// addSkillCmd creates the add-skill command.
func addSkillCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "add-skill",
		Usage: "Add a custom skill to the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Skill display name"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category: coding|english|maths|creativity|custom"},
			&cli.StringFlag{Name: "icon", Usage: "Icon name (unknown icons fall back to the default)"},
			&cli.StringFlag{Name: "color", Usage: "Display color as #rrggbb (random if empty)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.AddSkill(st, ops.AddSkillInput{
				Name:     c.String("name"),
				Category: c.String("category"),
				Icon:     c.String("icon"),
				Color:    c.String("color"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// loginCmd creates the login command.
func loginCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Set the local session identity",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("name is required"))
			}

			output, err := ops.Login(st, ops.LoginInput{Name: strings.Join(c.Args().Slice(), " ")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// logoutCmd creates the logout command.
func logoutCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the local session (capsules stay sealed in the vault)",
		Action: func(c *cli.Context) error {
			output, err := ops.Logout(st)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// whoamiCmd creates the whoami command.
func whoamiCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the current session user",
		Action: func(c *cli.Context) error {
			user, err := ops.CurrentUser(st)
			if err != nil {
				return outputError(err)
			}
			if user == nil {
				return outputJSON(map[string]any{"user": nil})
			}
			return outputJSON(map[string]any{"user": user})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the full vault state to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.skilltime/exports/skilltime-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(st, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// resetCmd creates the reset command.
func resetCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Wipe the vault back to the default state",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "confirm", Usage: "Required; resets delete every capsule with no undo"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("confirm") {
				return outputError(errors.NewInvalidRequest("pass --confirm to reset the vault"))
			}

			output, err := ops.Reset(st)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(st *store.Store, cfg *config.Config, svc *mirror.Service) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7420, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(st, cfg, svc, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if vErr, ok := err.(*errors.VaultError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", vErr.Code, vErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
