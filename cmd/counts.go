package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/karaoke/internal/counts"
	"github.com/desertthunder/karaoke/internal/formatter"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/repositories"
	"github.com/desertthunder/karaoke/internal/shared"
	"github.com/urfave/cli/v3"
)

// CountsList prints every stored count joined with the cached catalog.
func (r *Runner) CountsList(ctx context.Context, cmd *cli.Command) error {
	data, _, err := r.renderCounts(ctx, cmd)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// CountsExport writes the count report to --output, or play_counts.{ext}.
func (r *Runner) CountsExport(ctx context.Context, cmd *cli.Command) error {
	data, format, err := r.renderCounts(ctx, cmd)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(data, cmd.String("output"), "play_counts", format)
	if err != nil {
		return err
	}

	r.logger.Info("exported play counts", "path", path, "format", format)
	r.writePlain("✓ Play counts exported to %s\n", path)
	return nil
}

// CountsMin prints the least-played count over the cached catalog, or over
// the stored ids when no catalog has been saved yet.
func (r *Runner) CountsMin(ctx context.Context, cmd *cli.Command) error {
	platform, err := platformFlag(cmd)
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := r.openStore(config)
	if err != nil {
		return err
	}

	ids := r.cachedCatalog(ctx, config).Filter(platform).IDs()
	if len(ids) == 0 && platform == nil {
		for id := range store.Counts() {
			ids = append(ids, id)
		}
	}

	r.writePlain("%d\n", store.MinCount(ids))
	return nil
}

// CountsReset zeroes every count. It requires --force.
func (r *Runner) CountsReset(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("force") {
		return fmt.Errorf("%w: pass --force to reset all play counts", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := r.openStore(config)
	if err != nil {
		return err
	}

	if err := store.Reset(); err != nil {
		return err
	}

	r.logger.Info("play counts reset", "path", store.Path())
	r.writePlain("✓ Play counts reset\n")
	return nil
}

func (r *Runner) renderCounts(ctx context.Context, cmd *cli.Command) ([]byte, formatter.Format, error) {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return nil, "", err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}

	store, err := r.openStore(config)
	if err != nil {
		return nil, "", err
	}

	data, err := countReport(store, r.cachedCatalog(ctx, config), format)
	return data, format, err
}

func countReport(store *counts.Store, catalog models.Catalog, format formatter.Format) ([]byte, error) {
	report := formatter.NewCountReport(catalog, store.Entries(), time.Now())
	return formatter.ExportCounts(report, format)
}

// cachedCatalog reads the last saved catalog, returning nil when there is none.
func (r *Runner) cachedCatalog(ctx context.Context, config *shared.Config) models.Catalog {
	db, err := r.openDatabase(config)
	if err != nil {
		r.logger.Debug("no catalog snapshot", "error", err)
		return nil
	}
	defer db.Close()

	catalog, _, err := repositories.NewItemRepository(db).Catalog(ctx)
	if err != nil {
		r.logger.Debug("no catalog snapshot", "error", err)
		return nil
	}
	return catalog
}
