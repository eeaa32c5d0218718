package cli

import (
	"os"

	"github.com/amterp/ra"
)

// CommandContext holds parsed values and used flags for all commands.
type CommandContext struct {
	// Global flags
	NonInteractive *bool
	JSON           *bool

	// parse command
	ParseUsed *bool
	ParseURL  *string

	// normalize command
	NormalizeUsed *bool
	NormalizeURL  *string

	// canonicalize command
	CanonicalizeUsed    *bool
	CanonicalizeURL     *string
	CanonicalizeTitle   *string
	CanonicalizeNoTitle *bool

	// slugify command
	SlugifyUsed *bool
	SlugifyText *string

	// countries command
	CountriesUsed *bool
	CountriesCode *string

	// batch command
	BatchUsed        *bool
	BatchFile        *string
	BatchConcurrency *int
	BatchWatch       *bool

	// serve command
	ServeUsed  *bool
	ServePort  *int
	ServeWatch *string

	// config command
	ConfigUsed      *bool
	ConfigInitUsed  *bool
	ConfigInitForce *bool
	ConfigShowUsed  *bool
	ConfigEditUsed  *bool

	// completion command
	CompletionUsed  *bool
	CompletionShell *string
}

// Run is the main entry point for the CLI.
func Run() {
	ctx := &CommandContext{}

	cmd := ra.NewCmd("permalink")
	cmd.SetDescription("Parse, normalize and canonicalize Karrot permalinks")

	// Global flag for non-interactive mode
	ctx.NonInteractive, _ = ra.NewBool("non-interactive").
		SetShort("I").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Fail instead of prompting for missing input").
		Register(cmd, ra.WithGlobal(true))

	ctx.JSON, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Print machine-readable JSON").
		Register(cmd, ra.WithGlobal(true))

	// Register all subcommands
	registerParse(cmd, ctx)
	registerNormalize(cmd, ctx)
	registerCanonicalize(cmd, ctx)
	registerSlugify(cmd, ctx)
	registerCountries(cmd, ctx)
	registerBatch(cmd, ctx)
	registerServe(cmd, ctx)
	registerConfig(cmd, ctx)
	registerCompletion(cmd, ctx)

	// Parse command line
	cmd.ParseOrExit(os.Args[1:])

	// Execute the appropriate command
	executeCommand(ctx, cmd)
}

func executeCommand(ctx *CommandContext, rootCmd *ra.Cmd) {
	jsonOutput := *ctx.JSON

	switch {
	case *ctx.ParseUsed:
		runParse(*ctx.ParseURL, jsonOutput)

	case *ctx.NormalizeUsed:
		runNormalize(*ctx.NormalizeURL, jsonOutput)

	case *ctx.CanonicalizeUsed:
		runCanonicalize(*ctx.CanonicalizeURL, *ctx.CanonicalizeTitle, *ctx.CanonicalizeNoTitle,
			!*ctx.NonInteractive, jsonOutput)

	case *ctx.SlugifyUsed:
		runSlugify(*ctx.SlugifyText, jsonOutput)

	case *ctx.CountriesUsed:
		runCountries(*ctx.CountriesCode, jsonOutput)

	case *ctx.BatchUsed:
		runBatch(*ctx.BatchFile, *ctx.BatchConcurrency, *ctx.BatchWatch, jsonOutput)

	case *ctx.ServeUsed:
		if jsonOutput {
			warnJsonNotSupported("serve")
		}
		runServe(*ctx.ServePort, *ctx.ServeWatch)

	case *ctx.ConfigInitUsed:
		runConfigInit(*ctx.ConfigInitForce, !*ctx.NonInteractive)

	case *ctx.ConfigShowUsed:
		runConfigShow(jsonOutput)

	case *ctx.ConfigEditUsed:
		runConfigEdit(!*ctx.NonInteractive)

	case *ctx.CompletionUsed:
		runCompletion(*ctx.CompletionShell, rootCmd)
	}
}
