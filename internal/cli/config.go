package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/amterp/ra"
	"github.com/daangn/permalink/internal/config"
	"github.com/daangn/permalink/internal/editor"
)

func registerConfig(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("config")
	cmd.SetDescription("Manage the config file")

	// config init
	initCmd := ra.NewCmd("init")
	initCmd.SetDescription("Write a config file with default values")

	ctx.ConfigInitForce, _ = ra.NewBool("force").
		SetShort("f").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Overwrite an existing config file without asking").
		Register(initCmd)

	ctx.ConfigInitUsed, _ = cmd.RegisterCmd(initCmd)

	// config show
	showCmd := ra.NewCmd("show")
	showCmd.SetDescription("Print the effective configuration")

	ctx.ConfigShowUsed, _ = cmd.RegisterCmd(showCmd)

	// config edit
	editCmd := ra.NewCmd("edit")
	editCmd.SetDescription("Open the config file in your editor")

	ctx.ConfigEditUsed, _ = cmd.RegisterCmd(editCmd)

	ctx.ConfigUsed, _ = parent.RegisterCmd(cmd)
}

func runConfigInit(force, interactive bool) {
	// The existing file may be the reason for re-initializing, so don't load it.
	app := NewAppWithoutConfig(interactive)

	if app.Store.Exists() && !force {
		if !interactive {
			Fatal(fmt.Errorf("config file %s already exists; use --force to overwrite", app.Store.Path()))
		}

		confirmed, err := app.Prompter.Confirm(
			fmt.Sprintf("Config file %s already exists. Overwrite with defaults?", app.Store.Path()),
			false,
		)
		if err != nil {
			Fatal(err)
		}
		if !confirmed {
			PrintInfo("Cancelled")
			return
		}
		force = true
	}

	if _, err := app.Store.Init(force); err != nil {
		if errors.Is(err, config.ErrExists) {
			Fatal(fmt.Errorf("config file %s already exists; use --force to overwrite", app.Store.Path()))
		}
		Fatal(err)
	}

	PrintSuccess("Wrote %s", RenderURL(app.Store.Path()))
}

func runConfigShow(jsonOutput bool) {
	app, err := NewApp(false)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		out := ConfigOutput{Path: app.Store.Path(), Exists: app.Store.Exists(), Config: app.Config}
		if err := printJson(out); err != nil {
			Fatal(err)
		}
		return
	}

	if app.Store.Exists() {
		fmt.Println(RenderMuted("# " + app.Store.Path()))
	} else {
		fmt.Println(RenderMuted("# " + app.Store.Path() + " does not exist, showing defaults"))
	}
	if err := toml.NewEncoder(os.Stdout).Encode(app.Config); err != nil {
		Fatal(err)
	}
}

func runConfigEdit(interactive bool) {
	if !interactive {
		Fatal(errors.New("config edit needs an interactive terminal"))
	}
	app := NewAppWithoutConfig(true)

	// The file may be broken; only borrow its editor setting when it loads.
	var configured string
	if cfg, err := app.Store.Load(); err == nil {
		configured = cfg.Editor
	}

	original, err := os.ReadFile(app.Store.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			Fatal(err)
		}
		if original, err = config.Encode(config.Default()); err != nil {
			Fatal(err)
		}
	}

	ed := editor.New(configured)
	content := string(original)
	for {
		edited, err := ed.Edit(content, "permalink-config-*.toml")
		if err != nil {
			Fatal(fmt.Errorf("editor %s failed: %w", ed.Resolve(), err))
		}
		if edited == string(original) {
			PrintInfo("No changes")
			return
		}

		if _, err := app.Store.SaveRaw([]byte(edited)); err != nil {
			PrintError("%v", err)
		} else {
			PrintSuccess("Saved %s", RenderURL(app.Store.Path()))
			return
		}

		again, err := app.Prompter.Confirm("Edit again?", true)
		if err != nil {
			Fatal(err)
		}
		if !again {
			PrintInfo("Discarded changes")
			return
		}
		content = edited
	}
}
