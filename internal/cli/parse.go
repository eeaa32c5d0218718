package cli

import (
	"fmt"

	"github.com/amterp/ra"
	"github.com/daangn/permalink"
)

func registerParse(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("parse")
	cmd.SetDescription("Parse a permalink and print its parts")

	ctx.ParseURL, _ = ra.NewString("url").
		SetUsage("Permalink URL").
		Register(cmd)

	ctx.ParseUsed, _ = parent.RegisterCmd(cmd)
}

func registerNormalize(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("normalize")
	cmd.SetDescription("Print the country-neutral short URL of a permalink")

	ctx.NormalizeURL, _ = ra.NewString("url").
		SetUsage("Permalink URL").
		Register(cmd)

	ctx.NormalizeUsed, _ = parent.RegisterCmd(cmd)
}

func runParse(rawURL string, jsonOutput bool) {
	p, err := permalink.Parse(rawURL)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(ParseOutput{Input: rawURL, Permalink: p, Normalized: p.Normalize()}); err != nil {
			Fatal(err)
		}
		return
	}

	printPermalink(p)
}

func runNormalize(rawURL string, jsonOutput bool) {
	p, err := permalink.Parse(rawURL)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(NormalizeOutput{Input: rawURL, Normalized: p.Normalize()}); err != nil {
			Fatal(err)
		}
		return
	}

	fmt.Println(p.Normalize())
}

func printPermalink(p permalink.Permalink) {
	const labelWidth = 12

	fmt.Println(TitleBox(p.ServiceType() + "/" + p.ID()))
	fmt.Println()

	fmt.Println(LabelValue("Country", RenderCountry(p.Country().String()), labelWidth))
	fmt.Println(LabelValue("Language", p.Language().String(), labelWidth))
	fmt.Println(LabelValue("Service", p.ServiceType(), labelWidth))
	fmt.Println(LabelValue("ID", RenderID(p.ID()), labelWidth))

	if title, ok := p.Title(); ok {
		fmt.Println(LabelValue("Title", title, labelWidth))
	} else {
		fmt.Println(LabelValue("Title", RenderMuted("(none)"), labelWidth))
	}
	if data, ok := p.Data(); ok {
		fmt.Println(LabelValue("Data", data, labelWidth))
	}

	fmt.Println()
	fmt.Println(LabelValue("Normalized", RenderURL(p.Normalize()), labelWidth))
}
