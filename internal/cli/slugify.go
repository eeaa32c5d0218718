package cli

import (
	"fmt"

	"github.com/amterp/ra"
	"github.com/daangn/permalink/slug"
)

func registerSlugify(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("slugify")
	cmd.SetDescription("Print the URL slug of a title")

	ctx.SlugifyText, _ = ra.NewString("text").
		SetUsage("Text to slugify").
		Register(cmd)

	ctx.SlugifyUsed, _ = parent.RegisterCmd(cmd)
}

func runSlugify(text string, jsonOutput bool) {
	s := slug.Slugify(text)

	if jsonOutput {
		if err := printJson(SlugifyOutput{Input: text, Slug: s}); err != nil {
			Fatal(err)
		}
		return
	}

	if s == "" {
		PrintWarning("%q has no sluggable characters", text)
		return
	}
	fmt.Println(s)
}
