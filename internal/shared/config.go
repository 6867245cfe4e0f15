package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override file configuration.
const (
	EnvYouTubePlaylistURL  = "YOUTUBE_PLAYLIST_URL"
	EnvSpotifyPlaylistURL  = "SPOTIFY_PLAYLIST_URL"
	EnvSpotifyClientID     = "SPOTIPY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIPY_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Playlists   PlaylistsConfig   `toml:"playlists"`
	Credentials CredentialsConfig `toml:"credentials"`
	Storage     StorageConfig     `toml:"storage"`
	Database    DatabaseConfig    `toml:"database"`
	Player      PlayerConfig      `toml:"player"`
	Logging     LoggingConfig     `toml:"logging"`
}

// PlaylistsConfig holds the two public source playlists.
type PlaylistsConfig struct {
	YouTubeURL string `toml:"youtube_url"`
	SpotifyURL string `toml:"spotify_url"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify app credentials for the client credentials flow.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Valid reports whether both client credentials are present.
func (s SpotifyConfig) Valid() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// StorageConfig locates the play-count file.
type StorageConfig struct {
	CountsPath string `toml:"counts_path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig controls playback dispatch and the next-up loop.
type PlayerConfig struct {
	Browser         string `toml:"browser"`
	Autoplay        bool   `toml:"autoplay"`
	RefreshInterval int    `toml:"refresh_interval"` // seconds
	AutoplayLead    int    `toml:"autoplay_lead"`    // seconds
}

// Refresh returns the catalog refresh interval; zero disables refreshing.
func (p PlayerConfig) Refresh() time.Duration {
	if p.RefreshInterval <= 0 {
		return 0
	}
	return time.Duration(p.RefreshInterval) * time.Second
}

// Lead returns how early autoplay advances before an item's reported end.
func (p PlayerConfig) Lead() time.Duration {
	if p.AutoplayLead <= 0 {
		return 0
	}
	return time.Duration(p.AutoplayLead) * time.Second
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// ApplyEnv overrides playlist URLs and Spotify credentials from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Playlists.YouTubeURL, EnvYouTubePlaylistURL)
	set(&c.Playlists.SpotifyURL, EnvSpotifyPlaylistURL)
	set(&c.Credentials.Spotify.ClientID, EnvSpotifyClientID)
	set(&c.Credentials.Spotify.ClientSecret, EnvSpotifyClientSecret)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
