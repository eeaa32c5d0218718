package cli

import (
	"fmt"

	"github.com/amterp/ra"
	"github.com/daangn/permalink"
	"github.com/daangn/permalink/internal/prompt"
	"github.com/daangn/permalink/slug"
)

func registerCanonicalize(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("canonicalize")
	cmd.SetDescription("Print the branded URL of a permalink with a title slug")

	ctx.CanonicalizeURL, _ = ra.NewString("url").
		SetUsage("Permalink URL").
		Register(cmd)

	ctx.CanonicalizeTitle, _ = ra.NewString("title").
		SetOptional(true).
		SetUsage("Title to slugify (default: the title in the URL)").
		Register(cmd)

	ctx.CanonicalizeNoTitle, _ = ra.NewBool("no-title").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Drop the title and keep only the id").
		Register(cmd)

	ctx.CanonicalizeUsed, _ = parent.RegisterCmd(cmd)
}

func runCanonicalize(rawURL, title string, noTitle, interactive, jsonOutput bool) {
	p, err := permalink.Parse(rawURL)
	if err != nil {
		Fatal(err)
	}

	if noTitle {
		title = ""
	} else if title, err = chooseTitle(p, title, prompt.New(interactive)); err != nil {
		Fatal(err)
	}

	canonical := p.Canonicalize(title)

	if jsonOutput {
		if err := printJson(CanonicalizeOutput{Input: rawURL, Title: title, Canonical: canonical}); err != nil {
			Fatal(err)
		}
		return
	}

	fmt.Println(canonical)
}

// chooseTitle picks the title for canonicalization: the given one, else the
// one decoded from the URL, else whatever the user types.
func chooseTitle(p permalink.Permalink, given string, prompter prompt.Prompter) (string, error) {
	if given != "" {
		return given, nil
	}
	if title, ok := p.Title(); ok {
		return title, nil
	}

	title, err := prompter.Input("Title", "")
	if err != nil {
		return "", fmt.Errorf("no title in %s and none given: %w", p.Normalize(), err)
	}
	if slug.Slugify(title) == "" {
		PrintWarning("title %q has no sluggable characters, using the id only", title)
	}
	return title, nil
}
