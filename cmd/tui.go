package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "./tmp/flix-tui.log"

// TUI launches the interactive terminal UI for browsing and favorites.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Log.File
	if path == "" {
		path = defaultTUILog
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(path)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := shared.SetLogLevel(fileLogger, r.config.Log.Level); err != nil {
		fileLogger.Warn("ignoring log level", "error", err)
	}
	r.SetLogger(fileLogger)

	if err := r.connect(); err != nil {
		return err
	}

	prompt := &ui.Prompt{}
	ctrl := r.favoritesController(prompt, r.config.Favorites.AutoLoad)
	ctrl.Start()
	defer ctrl.Close()

	model := ui.NewModel(ctx, r.api, ctrl)
	if err := ui.Run(ctx, model, prompt); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
