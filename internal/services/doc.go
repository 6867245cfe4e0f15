// Package services defines the [Source] interface for playlist providers and implements it for YouTube and Spotify.
//
// # Source Interface
//
// A source turns one public playlist into a flat list of [models.Item]. The
// catalog loader in the tasks package fans out over every configured source.
//
// # YouTube Implementation
//
// [YouTubeSource] lists playlist entries through github.com/ytget/ytdlp/v2.
// Items are keyed by their watch URL.
//
// # Spotify Implementation
//
// [SpotifySource] uses github.com/zmb3/spotify/v2 with an app token from the
// client credentials flow, so no user login is needed for public playlists.
// Paging is paced with a [rate.Limiter] and "added by" display names are
// cached in an LRU since most playlists have only a handful of contributors.
//
// # Error Handling
//
// Sources use sentinel errors from the shared package:
//   - [shared.ErrInvalidPlaylistURL] : no playlist id in the configured URL
//   - [shared.ErrMissingCredentials] : Spotify client id or secret not set
//   - [shared.ErrAPIRequest] : the provider call failed
package services
