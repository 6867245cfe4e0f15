package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/karaoke/internal/services"
	"github.com/desertthunder/karaoke/internal/shared"
	"github.com/desertthunder/karaoke/internal/ui"
	"github.com/urfave/cli/v3"
)

// QR prints a QR code for each configured playlist.
func (r *Runner) QR(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	links := playlistLinks(config, r)
	if len(links) == 0 {
		return fmt.Errorf("%w: set %s or %s", shared.ErrMissingConfig, shared.EnvYouTubePlaylistURL, shared.EnvSpotifyPlaylistURL)
	}

	for _, link := range links {
		if err := ui.WriteQR(r.output, link); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		r.writePlain("\n")
	}
	return nil
}

// playlistLinks returns the shareable URL of each configured playlist.
// Spotify URIs and bare ids are turned into open.spotify.com links.
func playlistLinks(config *shared.Config, r *Runner) []ui.PlaylistLink {
	var links []ui.PlaylistLink

	if url := config.Playlists.YouTubeURL; url != "" {
		links = append(links, ui.PlaylistLink{Label: "YouTube", URL: url})
	}

	if url := config.Playlists.SpotifyURL; url != "" {
		if id, err := services.SpotifyPlaylistID(url); err == nil {
			url = services.SpotifyPlaylistURL(id)
		} else {
			r.logger.Warn("using spotify playlist value as-is", "error", err)
		}
		links = append(links, ui.PlaylistLink{Label: "Spotify", URL: url})
	}
	return links
}
