package cli

import (
	"fmt"

	"github.com/amterp/ra"
	"github.com/daangn/permalink/country"
)

func registerCountries(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("countries")
	cmd.SetDescription("List supported countries and their origins")

	ctx.CountriesCode, _ = ra.NewString("code").
		SetOptional(true).
		SetUsage("Show only this country").
		SetCompletionFunc(completeCountries).
		Register(cmd)

	ctx.CountriesUsed, _ = parent.RegisterCmd(cmd)
}

func runCountries(code string, jsonOutput bool) {
	countries := country.All()
	if code != "" {
		c, err := country.Parse(code)
		if err != nil {
			Fatal(err)
		}
		countries = []country.Country{c}
	}

	if jsonOutput {
		if err := printJson(NewCountriesOutput(countries, code == "")); err != nil {
			Fatal(err)
		}
		return
	}

	for _, c := range countries {
		fmt.Printf("%s  %s  %s\n",
			RenderCountry(c.String()),
			RenderMuted(fmt.Sprintf("%-5s", c.Language().Tag())),
			RenderURL(c.Origin()),
		)
	}

	if code != "" {
		return
	}

	fmt.Println()
	fmt.Println(RenderBold("Origins"))
	for _, o := range country.WellKnownOrigins() {
		owner := RenderMuted("(neutral)")
		if o.Country.Valid() {
			owner = RenderCountry(o.Country.String())
		}
		fmt.Printf("  %s %s\n", RenderURL(o.Origin), owner)
	}
}
