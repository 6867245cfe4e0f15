package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/karaoke/internal/formatter"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/queue"
	"github.com/desertthunder/karaoke/internal/shared"
	"github.com/urfave/cli/v3"
)

// CatalogList prints the merged catalog with each item's play count.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
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

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := r.loadCatalog(ctx, config, db, cmd.Bool("cached"))
	if err != nil {
		return err
	}
	catalog = catalog.Filter(platform)

	rows := make([]formatter.CountRow, len(catalog))
	for i, item := range catalog {
		rows[i] = formatter.CountRow{Item: item, Count: store.Get(item.ID)}
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}

	byPlatform := catalog.Count()
	r.writePlainHeader(fmt.Sprintf("Catalog: %d tracks (YT %d, SP %d)", len(catalog), byPlatform[models.YouTube], byPlatform[models.Spotify]))
	for _, row := range rows {
		r.writePlain("%5d  %s  %s\n", row.Count, row.Item.Platform.Label(), row.Item.DisplayName())
	}
	return nil
}

// Play selects the next least-played item, opens it and counts it.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	platform, err := platformFlag(cmd)
	if err != nil {
		return err
	}

	s, err := r.newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	entry, err := s.PlayNext(ctx, platform)
	switch {
	case errors.Is(err, shared.ErrEmptyCatalog):
		r.writePlain("No tracks available\n")
		return nil
	case err != nil:
		return err
	}

	r.writePlain("♪ Now playing: %s [%s] (play #%d)\n", entry.Item.DisplayName(), entry.Item.Platform.Label(), entry.Count)
	return nil
}

// Next previews the least-played tier in a random order without counting anything.
func (r *Runner) Next(ctx context.Context, cmd *cli.Command) error {
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

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := r.loadCatalog(ctx, config, db, cmd.Bool("cached"))
	if err != nil {
		return err
	}

	q := queue.New()
	if _, err := queue.NewSelector(r.rng).Refill(q, catalog, store, platform); err != nil {
		if errors.Is(err, shared.ErrEmptyCatalog) {
			r.writePlain("No tracks available\n")
			return nil
		}
		return err
	}

	entries := q.Peek(int(cmd.Int("count")))
	r.writePlainHeader(fmt.Sprintf("Next up: %d of %d least-played tracks (played %d times)", len(entries), q.Len(), store.MinCount(catalog.Filter(platform).IDs())))
	for i, e := range entries {
		r.writePlain("%2d. %s  %s\n", i+1, e.Item.Platform.Label(), e.Item.DisplayName())
	}
	return nil
}
