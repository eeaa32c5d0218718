package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/amterp/ra"
	"github.com/daangn/permalink/country"
)

// completeCountries returns country codes matching the given prefix.
// Codes parse case-insensitively, so the prefix does too.
func completeCountries(toComplete string) ([]string, ra.CompletionDirective) {
	prefix := strings.ToLower(toComplete)

	var result []string
	for _, c := range country.All() {
		if strings.HasPrefix(c.String(), prefix) {
			result = append(result, c.String())
		}
	}
	return result, ra.CompletionDirectiveNoFileComp
}

// registerCompletion adds the "permalink completion <shell>" command.
func registerCompletion(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("completion")
	cmd.SetDescription("Output shell completion script")

	ctx.CompletionShell, _ = ra.NewString("shell").
		SetUsage("Shell type").
		SetEnumConstraint([]string{"bash", "zsh"}).
		Register(cmd)

	ctx.CompletionUsed, _ = parent.RegisterCmd(cmd)
}

// runCompletion outputs the shell completion script to stdout.
func runCompletion(shell string, rootCmd *ra.Cmd) {
	var err error
	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(os.Stdout)
	case "zsh":
		err = rootCmd.GenZshCompletion(os.Stdout)
	default:
		Fatal(fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell))
	}
	if err != nil {
		Fatal(fmt.Errorf("failed to generate completion script: %w", err))
	}
}
