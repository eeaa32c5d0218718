package cli

import (
	"encoding/json"
	"fmt"

	"github.com/daangn/permalink"
	"github.com/daangn/permalink/country"
	"github.com/daangn/permalink/internal/batch"
	"github.com/daangn/permalink/internal/config"
)

// ParseOutput is the JSON output of `permalink parse`.
type ParseOutput struct {
	Input      string              `json:"input"`
	Permalink  permalink.Permalink `json:"permalink"`
	Normalized string              `json:"normalized"`
}

// NormalizeOutput is the JSON output of `permalink normalize`.
type NormalizeOutput struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
}

// CanonicalizeOutput is the JSON output of `permalink canonicalize`.
type CanonicalizeOutput struct {
	Input     string `json:"input"`
	Title     string `json:"title"`
	Canonical string `json:"canonical"`
}

// SlugifyOutput is the JSON output of `permalink slugify`.
type SlugifyOutput struct {
	Input string `json:"input"`
	Slug  string `json:"slug"`
}

// countryJson is one registry row.
type countryJson struct {
	Code        country.Country  `json:"code"`
	Language    country.Language `json:"language"`
	LanguageTag string           `json:"language_tag"`
	Origin      string           `json:"origin"`
}

func countryToJson(c country.Country) countryJson {
	return countryJson{
		Code:        c,
		Language:    c.Language(),
		LanguageTag: c.Language().Tag().String(),
		Origin:      c.Origin(),
	}
}

// CountriesOutput wraps registry rows and the origin table for JSON output.
type CountriesOutput struct {
	Countries     []countryJson             `json:"countries"`
	Origins       []country.WellKnownOrigin `json:"origins,omitempty"`
	NeutralOrigin string                    `json:"neutral_origin"`
}

// NewCountriesOutput creates a CountriesOutput. The origin table is only
// included when withOrigins is set.
// Always returns an empty array (not null) when there are no countries.
func NewCountriesOutput(countries []country.Country, withOrigins bool) CountriesOutput {
	rows := make([]countryJson, 0, len(countries))
	for _, c := range countries {
		rows = append(rows, countryToJson(c))
	}
	out := CountriesOutput{Countries: rows, NeutralOrigin: country.NeutralOrigin}
	if withOrigins {
		out.Origins = country.WellKnownOrigins()
	}
	return out
}

// BatchOutput wraps batch results for JSON output.
type BatchOutput struct {
	File    string         `json:"file"`
	Results []batch.Result `json:"results"`
	Summary batch.Summary  `json:"summary"`
}

// NewBatchOutput creates a BatchOutput from results.
// Always returns an empty array (not null) when there are no results.
func NewBatchOutput(file string, results []batch.Result) BatchOutput {
	if results == nil {
		results = []batch.Result{}
	}
	return BatchOutput{File: file, Results: results, Summary: batch.Summarize(results)}
}

// ConfigOutput is the JSON output of `permalink config show`.
type ConfigOutput struct {
	Path   string         `json:"path"`
	Exists bool           `json:"exists"`
	Config *config.Config `json:"config"`
}

// printJson marshals the value as indented JSON and prints it to stdout.
func printJson(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

// warnJsonNotSupported prints a warning to stderr when --json is used on an unsupported command.
func warnJsonNotSupported(command string) {
	PrintWarning("--json is not supported for '%s' (flag ignored)", command)
}
