package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/karaoke/internal/models"
)

// ItemRepository keeps a snapshot of the last loaded catalog.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository with the given database connection
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ReplaceCatalog swaps the stored snapshot for catalog in a single transaction.
func (r *ItemRepository) ReplaceCatalog(ctx context.Context, catalog models.Catalog, loadedAt time.Time) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_items"); err != nil {
			return fmt.Errorf("failed to clear catalog snapshot: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO catalog_items (id, position, platform, title, artist, url, uri, duration_ms, added_by, added_at, loaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, it := range catalog {
			_, err := stmt.ExecContext(ctx,
				it.ID,
				i,
				string(it.Platform),
				it.Title,
				it.Artist,
				it.URL,
				it.URI,
				it.Duration.Milliseconds(),
				it.AddedBy,
				it.AddedAt,
				loadedAt.UTC(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert catalog item %s: %w", it.ID, err)
			}
		}
		return nil
	})
}

// Catalog returns the stored snapshot in load order and when it was taken.
// An empty snapshot returns a zero time.
func (r *ItemRepository) Catalog(ctx context.Context) (models.Catalog, time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, platform, title, artist, url, uri, duration_ms, added_by, added_at, loaded_at
		FROM catalog_items
		ORDER BY position
	`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query catalog snapshot: %w", err)
	}
	defer rows.Close()

	var (
		catalog  models.Catalog
		loadedAt time.Time
	)
	for rows.Next() {
		var (
			it         models.Item
			platform   string
			durationMS int64
		)
		if err := rows.Scan(&it.ID, &platform, &it.Title, &it.Artist, &it.URL, &it.URI, &durationMS, &it.AddedBy, &it.AddedAt, &loadedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		it.Platform = models.Platform(platform)
		it.Duration = time.Duration(durationMS) * time.Millisecond
		catalog = append(catalog, it)
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("error iterating catalog snapshot: %w", err)
	}
	return catalog, loadedAt, nil
}

// Count returns the number of items in the snapshot.
func (r *ItemRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog_items").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count catalog items: %w", err)
	}
	return n, nil
}
