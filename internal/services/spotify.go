package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyPageSize       = 100
	spotifyRequestsPerSec = 5
	adderCacheSize        = 256
)

// SpotifyAPI is the subset of [spotify.Client] used to read a playlist.
type SpotifyAPI interface {
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	GetUsersPublicProfile(ctx context.Context, userID spotify.ID) (*spotify.User, error)
}

// NewSpotifyClient authenticates with the client credentials flow and returns an API client.
func NewSpotifyClient(ctx context.Context, creds shared.SpotifyConfig) (*spotify.Client, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	if _, err := config.Token(ctx); err != nil {
		return nil, fmt.Errorf("%w: spotify token: %v", shared.ErrAPIRequest, err)
	}

	return spotify.New(config.Client(ctx)), nil
}

// SpotifySource implements [Source] for a public Spotify playlist.
type SpotifySource struct {
	playlistURL string
	api         SpotifyAPI
	limiter     *rate.Limiter
	adders      *lru.Cache[string, string]
	logger      *log.Logger
}

// NewSpotifySource creates a source reading playlistURL through api.
func NewSpotifySource(playlistURL string, api SpotifyAPI, logger *log.Logger) *SpotifySource {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	adders, _ := lru.New[string, string](adderCacheSize)
	return &SpotifySource{
		playlistURL: playlistURL,
		api:         api,
		limiter:     rate.NewLimiter(rate.Limit(spotifyRequestsPerSec), 1),
		adders:      adders,
		logger:      logger,
	}
}

// SetRateLimit changes how many API requests per second Fetch may issue.
func (s *SpotifySource) SetRateLimit(perSecond float64) {
	s.limiter.SetLimit(rate.Limit(perSecond))
}

// Name returns the service name.
func (s *SpotifySource) Name() string { return "Spotify" }

// Platform returns [models.Spotify].
func (s *SpotifySource) Platform() models.Platform { return models.Spotify }

// Fetch pages through the playlist and converts every track into an item keyed by its URI.
// Episodes, local files and removed tracks are skipped.
func (s *SpotifySource) Fetch(ctx context.Context) ([]models.Item, error) {
	playlistID, err := SpotifyPlaylistID(s.playlistURL)
	if err != nil {
		return nil, err
	}
	if s.api == nil {
		return nil, fmt.Errorf("%w: spotify client not configured", shared.ErrMissingCredentials)
	}

	var items []models.Item
	for offset := 0; ; offset += spotifyPageSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := s.api.GetPlaylistItems(ctx, spotify.ID(playlistID),
			spotify.Limit(spotifyPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("%w: spotify playlist %s: %v", shared.ErrAPIRequest, playlistID, err)
		}

		for i := range page.Items {
			entry := &page.Items[i]
			track := entry.Track.Track
			if track == nil || track.ID == "" || entry.IsLocal {
				continue
			}

			item := s.toItem(track)
			item.AddedAt = entry.AddedAt
			item.AddedBy = s.adderName(ctx, entry.AddedBy)
			items = append(items, item)
		}

		if len(page.Items) < spotifyPageSize || page.Next == "" {
			break
		}
	}

	s.logger.Info("loaded spotify playlist", "playlist", playlistID, "items", len(items))
	return items, nil
}

func (s *SpotifySource) toItem(track *spotify.FullTrack) models.Item {
	names := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		names = append(names, a.Name)
	}
	artist := strings.Join(names, ", ")
	if artist == "" {
		artist = "Unknown Artist"
	}

	title := track.Name
	if title == "" {
		title = "Unknown Title"
	}

	id := string(track.ID)
	url := track.ExternalURLs["spotify"]
	if url == "" {
		url = fmt.Sprintf(spotifyTrackURL, id)
	}

	return models.NewItem(models.Spotify, title, artist, url, fmt.Sprintf(spotifyTrackURI, id), track.TimeDuration())
}

// adderName resolves the display name of the user who added a track.
// Lookups are cached; on failure the raw user id is used.
func (s *SpotifySource) adderName(ctx context.Context, user spotify.User) string {
	if user.ID == "" {
		return ""
	}
	if user.DisplayName != "" {
		s.adders.Add(user.ID, user.DisplayName)
		return user.DisplayName
	}
	if name, ok := s.adders.Get(user.ID); ok {
		return name
	}

	name := user.ID
	if err := s.limiter.Wait(ctx); err == nil {
		profile, err := s.api.GetUsersPublicProfile(ctx, spotify.ID(user.ID))
		if err != nil {
			s.logger.Debug("failed to resolve spotify user", "user", user.ID, "error", err)
		} else if profile.DisplayName != "" {
			name = profile.DisplayName
		}
	}

	s.adders.Add(user.ID, name)
	return name
}
