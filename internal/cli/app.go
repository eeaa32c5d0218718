package cli

import (
	"fmt"
	"os"

	"github.com/daangn/permalink"
	"github.com/daangn/permalink/internal/config"
	"github.com/daangn/permalink/internal/logger"
	"github.com/daangn/permalink/internal/prompt"
)

// App holds all the dependencies for the CLI.
type App struct {
	Store    *config.FileStore
	Config   *config.Config
	Log      logger.Logger
	Prompter prompt.Prompter
}

// NewApp loads the config file and builds the logger and prompter.
// If interactive is false, uses NoopPrompter that fails on prompts.
func NewApp(interactive bool) (*App, error) {
	store := config.NewStore("")

	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &App{
		Store:    store,
		Config:   cfg,
		Log:      log,
		Prompter: prompt.New(interactive),
	}, nil
}

// NewAppWithoutConfig creates a minimal App that skips loading the config
// file. Used by commands that only need defaults, and by config init when
// the existing file is unreadable.
func NewAppWithoutConfig(interactive bool) *App {
	return &App{
		Store:    config.NewStore(""),
		Config:   config.Default(),
		Log:      logger.Nop(),
		Prompter: prompt.New(interactive),
	}
}

// Fatal prints an error and exits.
func Fatal(err error) {
	if kind := permalink.ErrorKind(err); kind != permalink.KindInternal {
		PrintError("%v %s", err, RenderMuted("("+kind+")"))
	} else {
		PrintError("%v", err)
	}
	os.Exit(1)
}
