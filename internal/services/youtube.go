package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
	"github.com/ytget/ytdlp/v2"
)

const defaultYouTubeTimeout = 2 * time.Minute

// YouTubeEntry is one video listed in a playlist.
type YouTubeEntry struct {
	VideoID  string
	Title    string
	Author   string
	Duration time.Duration
}

// PlaylistLister lists the entries of a YouTube playlist by id.
type PlaylistLister func(ctx context.Context, playlistID string) ([]YouTubeEntry, error)

// YTDLPLister lists playlist entries with ytdlp.
func YTDLPLister(ctx context.Context, playlistID string) ([]YouTubeEntry, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]YouTubeEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, YouTubeEntry{VideoID: it.VideoID, Title: it.Title})
	}
	return entries, nil
}

// YouTubeSource implements [Source] for a public YouTube playlist.
type YouTubeSource struct {
	playlistURL string
	list        PlaylistLister
	timeout     time.Duration
	logger      *log.Logger
}

// NewYouTubeSource creates a source for playlistURL. A nil lister uses [YTDLPLister].
func NewYouTubeSource(playlistURL string, lister PlaylistLister, logger *log.Logger) *YouTubeSource {
	if lister == nil {
		lister = YTDLPLister
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &YouTubeSource{
		playlistURL: playlistURL,
		list:        lister,
		timeout:     defaultYouTubeTimeout,
		logger:      logger,
	}
}

// SetTimeout bounds a single Fetch.
func (y *YouTubeSource) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// Name returns the service name.
func (y *YouTubeSource) Name() string { return "YouTube" }

// Platform returns [models.YouTube].
func (y *YouTubeSource) Platform() models.Platform { return models.YouTube }

// Fetch lists the playlist and converts each video into an item keyed by its watch URL.
// Entries without a video id (deleted or private videos) are skipped.
func (y *YouTubeSource) Fetch(ctx context.Context) ([]models.Item, error) {
	playlistID, err := YouTubePlaylistID(y.playlistURL)
	if err != nil {
		return nil, err
	}

	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	entries, err := y.list(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: youtube playlist %s: %v", shared.ErrAPIRequest, playlistID, err)
	}

	items := make([]models.Item, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		if strings.TrimSpace(e.VideoID) == "" {
			skipped++
			continue
		}

		title := e.Title
		if title == "" {
			title = "Unknown Title"
		}

		url := fmt.Sprintf(youTubeWatchURL, e.VideoID)
		items = append(items, models.NewItem(models.YouTube, title, e.Author, url, "", e.Duration))
	}

	if skipped > 0 {
		y.logger.Debug("skipped youtube entries without a video id", "playlist", playlistID, "count", skipped)
	}
	y.logger.Info("loaded youtube playlist", "playlist", playlistID, "items", len(items))
	return items, nil
}
