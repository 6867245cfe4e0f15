package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// PlayRepository stores counted playbacks.
type PlayRepository struct {
	db *sql.DB
}

// NewPlayRepository creates a new PlayRepository with the given database connection
func NewPlayRepository(db *sql.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// Record inserts play, generating an ID and timestamp when they are empty.
func (r *PlayRepository) Record(ctx context.Context, play models.Play) error {
	if play.ItemID == "" {
		return fmt.Errorf("%w: play without item id", shared.ErrInvalidInput)
	}
	if play.ID == "" {
		play.ID = shared.GenerateID()
	}
	if play.PlayedAt.IsZero() {
		play.PlayedAt = time.Now()
	}

	query := `
		INSERT INTO plays (id, item_id, platform, title, artist, play_count, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		play.ID,
		play.ItemID,
		string(play.Platform),
		play.Title,
		play.Artist,
		play.PlayCount,
		play.PlayedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}
	return nil
}

// List returns the most recent plays first. A non-positive limit returns every play.
func (r *PlayRepository) List(ctx context.Context, limit int) ([]models.Play, error) {
	query := `
		SELECT id, item_id, platform, title, artist, play_count, played_at
		FROM plays
		ORDER BY played_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	return scanPlays(rows)
}

// ListByItem returns the plays of one item, most recent first.
func (r *PlayRepository) ListByItem(ctx context.Context, itemID string) ([]models.Play, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item_id, platform, title, artist, play_count, played_at
		FROM plays
		WHERE item_id = ?
		ORDER BY played_at DESC, rowid DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	return scanPlays(rows)
}

// Count returns the number of recorded plays.
func (r *PlayRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plays").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return n, nil
}

// Clear deletes the whole history.
func (r *PlayRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM plays"); err != nil {
		return fmt.Errorf("failed to clear plays: %w", err)
	}
	return nil
}

func scanPlays(rows *sql.Rows) ([]models.Play, error) {
	var plays []models.Play
	for rows.Next() {
		var (
			p        models.Play
			platform string
		)
		if err := rows.Scan(&p.ID, &p.ItemID, &platform, &p.Title, &p.Artist, &p.PlayCount, &p.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		p.Platform = models.Platform(platform)
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}
	return plays, nil
}
