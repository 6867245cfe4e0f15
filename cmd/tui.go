package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/karaoke/internal/repositories"
	"github.com/desertthunder/karaoke/internal/shared"
	"github.com/desertthunder/karaoke/internal/tasks"
	"github.com/desertthunder/karaoke/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive next-up queue.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(config.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.ApplyLogLevel(fileLogger, config.Logging.Level)
	r.SetLogger(fileLogger)

	s, err := r.newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var loader *tasks.CatalogLoader
	if sources := r.buildSources(ctx, config); len(sources) > 0 {
		loader = tasks.NewCatalogLoader(sources, repositories.NewItemRepository(s.db), r.logger)
	}

	opts := ui.Options{
		Autoplay:        config.Player.Autoplay,
		Lead:            config.Player.Lead(),
		RefreshInterval: config.Player.Refresh(),
		Logger:          r.logger,
	}
	if cmd.Bool("qr") {
		opts.Header = ui.RenderQR(playlistLinks(config, r)...)
	}

	model := ui.NewModel(ctx, s.Session, loader, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
