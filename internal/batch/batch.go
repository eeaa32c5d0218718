// Package batch resolves many permalinks concurrently.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/daangn/permalink"
	"github.com/daangn/permalink/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Item is one URL to resolve, with an optional title override.
type Item struct {
	Line  int    `json:"line,omitempty"`
	URL   string `json:"url" validate:"required,max=4096"`
	Title string `json:"title,omitempty" validate:"max=1024"`
}

// Result is the outcome for one Item. Exactly one of Permalink and Error
// is set.
type Result struct {
	Line       int                  `json:"line,omitempty"`
	Input      string               `json:"input"`
	Permalink  *permalink.Permalink `json:"permalink,omitempty"`
	Normalized string               `json:"normalized,omitempty"`
	Canonical  string               `json:"canonical,omitempty"`
	Error      string               `json:"error,omitempty"`
	Kind       string               `json:"kind,omitempty"`
}

// OK reports whether the item resolved.
func (r Result) OK() bool {
	return r.Error == ""
}

// Summary counts results by outcome.
type Summary struct {
	Total  int            `json:"total"`
	OK     int            `json:"ok"`
	Failed int            `json:"failed"`
	ByKind map[string]int `json:"by_kind,omitempty"`
}

// Resolve parses item.URL and canonicalizes it. The title override wins
// over the title found in the URL.
func Resolve(item Item) Result {
	res := Result{Line: item.Line, Input: item.URL}

	p, err := permalink.Parse(item.URL)
	if err != nil {
		res.Error = err.Error()
		res.Kind = permalink.ErrorKind(err)
		return res
	}

	title := item.Title
	if title == "" {
		title, _ = p.Title()
	}

	res.Permalink = &p
	res.Normalized = p.Normalize()
	res.Canonical = p.Canonicalize(title)
	return res
}

// Run resolves items with at most concurrency workers. Results keep the
// input order. Per-item failures are reported in the results; the returned
// error is non-nil only when ctx is cancelled.
func Run(ctx context.Context, items []Item, concurrency int) ([]Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	metrics.BatchRunsTotal.Inc()

	results := make([]Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Resolve(item)
			metrics.ObserveOperation("resolve", results[i].Kind)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summarize counts results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK() {
			s.OK++
			continue
		}
		s.Failed++
		if s.ByKind == nil {
			s.ByKind = make(map[string]int)
		}
		s.ByKind[r.Kind]++
	}
	return s
}

// Read parses batch input: one `url[<TAB>title]` per line. Blank lines and
// lines starting with '#' are skipped. Line numbers are 1-based.
func Read(r io.Reader) ([]Item, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var items []Item
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		rawURL, title, _ := strings.Cut(line, "\t")
		items = append(items, Item{
			Line:  lineNo,
			URL:   strings.TrimSpace(rawURL),
			Title: strings.TrimSpace(title),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading batch input at line %d: %w", lineNo+1, err)
	}
	return items, nil
}
