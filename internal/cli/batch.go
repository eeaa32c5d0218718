package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/amterp/ra"
	"github.com/daangn/permalink/internal/batch"
	"github.com/daangn/permalink/internal/watch"
)

// stdinFile makes batch read from standard input.
const stdinFile = "-"

func registerBatch(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("batch")
	cmd.SetDescription("Resolve a file of permalinks, one url[<TAB>title] per line")

	ctx.BatchFile, _ = ra.NewString("file").
		SetUsage("File to read, or - for stdin").
		Register(cmd)

	ctx.BatchConcurrency, _ = ra.NewInt("concurrency").
		SetShort("c").
		SetOptional(true).
		SetDefault(0).
		SetFlagOnly(true).
		SetUsage("Parallel workers (default: batch.concurrency from config)").
		Register(cmd)

	ctx.BatchWatch, _ = ra.NewBool("watch").
		SetShort("w").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Resolve again whenever the file changes").
		Register(cmd)

	ctx.BatchUsed, _ = parent.RegisterCmd(cmd)
}

func runBatch(file string, concurrency int, watchFile, jsonOutput bool) {
	app, err := NewApp(false)
	if err != nil {
		Fatal(err)
	}
	if concurrency <= 0 {
		concurrency = app.Config.Batch.Concurrency
	}
	if watchFile && file == stdinFile {
		Fatal(errors.New("--watch needs a file, not stdin"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := resolveBatchFile(ctx, file, concurrency)
	if err != nil {
		Fatal(err)
	}
	if err := printBatch(file, results, jsonOutput); err != nil {
		Fatal(err)
	}

	if !watchFile {
		if batch.Summarize(results).Failed > 0 {
			os.Exit(1)
		}
		return
	}

	watcher, err := watch.New(file, func(change watch.Change) {
		if change.Type == watch.Deleted {
			PrintWarning("%s was deleted, waiting for it to come back", file)
			return
		}
		results, err := resolveBatchFile(ctx, file, concurrency)
		if err != nil {
			PrintError("%v", err)
			return
		}
		if err := printBatch(file, results, jsonOutput); err != nil {
			PrintError("%v", err)
		}
	}, app.Log)
	if err != nil {
		Fatal(err)
	}
	if err := watcher.Start(); err != nil {
		Fatal(err)
	}
	defer watcher.Stop()

	if !jsonOutput {
		PrintInfo("Watching %s, press Ctrl+C to stop", RenderURL(file))
	}
	<-ctx.Done()
}

func resolveBatchFile(ctx context.Context, file string, concurrency int) ([]batch.Result, error) {
	var r io.Reader = os.Stdin
	if file != stdinFile {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	items, err := batch.Read(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return batch.Run(ctx, items, concurrency)
}

func printBatch(file string, results []batch.Result, jsonOutput bool) error {
	if jsonOutput {
		return printJson(NewBatchOutput(file, results))
	}

	for _, r := range results {
		if r.OK() {
			fmt.Printf("%s %s %s\n", RenderStatus(true), RenderMuted(fmt.Sprintf("%4d", r.Line)), RenderURL(r.Canonical))
		} else {
			fmt.Printf("%s %s %s %s\n", RenderStatus(false), RenderMuted(fmt.Sprintf("%4d", r.Line)), r.Input,
				RenderMuted(r.Kind+": "+r.Error))
		}
	}

	summary := batch.Summarize(results)
	if summary.Failed == 0 {
		PrintSuccess("%d resolved", summary.Total)
	} else {
		PrintWarning("%d of %d failed", summary.Failed, summary.Total)
	}
	return nil
}
