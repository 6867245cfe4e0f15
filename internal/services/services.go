package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// Source fetches the items of one playlist.
type Source interface {
	// Name is a human readable label used in logs and progress output.
	Name() string

	// Platform is the platform every fetched item belongs to.
	Platform() models.Platform

	// Fetch returns the playlist items in playlist order.
	Fetch(ctx context.Context) ([]models.Item, error)
}

const (
	youTubeWatchURL = "https://www.youtube.com/watch?v=%s"
	spotifyTrackURI = "spotify:track:%s"
	spotifyTrackURL = "https://open.spotify.com/track/%s"
	spotifyShareURL = "https://open.spotify.com/playlist/%s"
)

var (
	youTubeListPattern   = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
	spotifyPathPattern   = regexp.MustCompile(`playlist/([a-zA-Z0-9]+)`)
	spotifyURIPattern    = regexp.MustCompile(`playlist:([a-zA-Z0-9]+)`)
	bareIDPattern        = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	bareSpotifyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{22}$`)
)

// YouTubePlaylistID extracts the list id from a playlist or watch URL.
// A bare id starting with "PL", "UU", "OL" or "FL" is accepted as is.
func YouTubePlaylistID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if m := youTubeListPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}

	if bareIDPattern.MatchString(raw) {
		for _, prefix := range []string{"PL", "UU", "OL", "FL"} {
			if strings.HasPrefix(raw, prefix) {
				return raw, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", shared.ErrInvalidPlaylistURL, raw)
}

// SpotifyPlaylistID extracts the playlist id from an open.spotify.com URL,
// a "spotify:playlist:" URI or a bare 22 character id.
func SpotifyPlaylistID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		raw = u.Path
	}

	for _, pattern := range []*regexp.Regexp{spotifyPathPattern, spotifyURIPattern} {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}

	if bareSpotifyIDPattern.MatchString(raw) {
		return raw, nil
	}
	return "", fmt.Errorf("%w: %q", shared.ErrInvalidPlaylistURL, raw)
}

// SpotifyPlaylistURL returns the share URL for a playlist id.
func SpotifyPlaylistURL(id string) string {
	return fmt.Sprintf(spotifyShareURL, id)
}
