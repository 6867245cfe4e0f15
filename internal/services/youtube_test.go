package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

func TestYouTubeSource(t *testing.T) {
	logger := log.New(&bytes.Buffer{})
	const playlist = "https://www.youtube.com/playlist?list=PLtest"

	t.Run("Fetch", func(t *testing.T) {
		var gotID string
		lister := func(ctx context.Context, id string) ([]YouTubeEntry, error) {
			gotID = id
			return []YouTubeEntry{
				{VideoID: "aaa", Title: "First", Author: "Uploader", Duration: 3 * time.Minute},
				{VideoID: "", Title: "[Deleted video]"},
				{VideoID: "bbb"},
			}, nil
		}

		src := NewYouTubeSource(playlist, lister, logger)
		items, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotID != "PLtest" {
			t.Errorf("expected playlist id PLtest, got %s", gotID)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}

		first := items[0]
		if first.ID != "https://www.youtube.com/watch?v=aaa" || first.URL != first.ID {
			t.Errorf("unexpected id/url %s %s", first.ID, first.URL)
		}
		if first.Platform != models.YouTube || first.Artist != "Uploader" || first.Duration != 3*time.Minute {
			t.Errorf("unexpected item %+v", first)
		}
		if items[1].Title != "Unknown Title" {
			t.Errorf("expected fallback title, got %s", items[1].Title)
		}
	})

	t.Run("Invalid URL", func(t *testing.T) {
		called := false
		src := NewYouTubeSource("https://example.com", func(context.Context, string) ([]YouTubeEntry, error) {
			called = true
			return nil, nil
		}, logger)

		if _, err := src.Fetch(context.Background()); !errors.Is(err, shared.ErrInvalidPlaylistURL) {
			t.Errorf("expected ErrInvalidPlaylistURL, got %v", err)
		}
		if called {
			t.Error("lister should not be called for an invalid URL")
		}
	})

	t.Run("Lister Error", func(t *testing.T) {
		src := NewYouTubeSource(playlist, func(context.Context, string) ([]YouTubeEntry, error) {
			return nil, errors.New("boom")
		}, logger)

		if _, err := src.Fetch(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		src := NewYouTubeSource(playlist, func(ctx context.Context, _ string) ([]YouTubeEntry, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}, logger)
		src.SetTimeout(10 * time.Millisecond)

		if _, err := src.Fetch(context.Background()); err == nil {
			t.Error("expected timeout error")
		}
	})

	t.Run("Metadata", func(t *testing.T) {
		src := NewYouTubeSource(playlist, nil, nil)
		if src.Name() != "YouTube" || src.Platform() != models.YouTube {
			t.Errorf("unexpected metadata %s %s", src.Name(), src.Platform())
		}
	})
}
