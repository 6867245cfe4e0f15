package main

import (
	"context"

	"github.com/desertthunder/karaoke/internal/formatter"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/repositories"
	"github.com/urfave/cli/v3"
)

// HistoryList prints the most recent counted plays.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	plays, err := r.listPlays(ctx, cmd, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	data, err := formatter.ExportHistory(plays, format)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// HistoryExport writes every counted play to --output, or play_history.{ext}.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	plays, err := r.listPlays(ctx, cmd, 0)
	if err != nil {
		return err
	}

	data, err := formatter.ExportHistory(plays, format)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(data, cmd.String("output"), "play_history", format)
	if err != nil {
		return err
	}

	r.logger.Info("exported play history", "path", path, "plays", len(plays))
	r.writePlain("✓ %d plays exported to %s\n", len(plays), path)
	return nil
}

func (r *Runner) listPlays(ctx context.Context, cmd *cli.Command, limit int) ([]models.Play, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return repositories.NewPlayRepository(db).List(ctx, limit)
}
