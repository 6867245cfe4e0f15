package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/karaoke/internal/shared"
)

// Platform identifies where an [Item] is played.
type Platform string

const (
	YouTube Platform = "youtube"
	Spotify Platform = "spotify"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{YouTube, Spotify}

// ParsePlatform accepts "youtube", "yt", "y", "spotify", "sp" or "s" in any case.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "youtube", "yt", "y":
		return YouTube, nil
	case "spotify", "sp", "s":
		return Spotify, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidPlatform, s)
	}
}

// ParsePlatformFilter returns nil for an empty string, meaning any platform.
func ParsePlatformFilter(s string) (*Platform, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	p, err := ParsePlatform(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (p Platform) String() string { return string(p) }

// Label is the short tag shown next to queued items.
func (p Platform) Label() string {
	switch p {
	case YouTube:
		return "YT"
	case Spotify:
		return "SP"
	default:
		return "??"
	}
}

// Item is a playable unit from a source playlist.
type Item struct {
	ID       string        `json:"id"`
	Platform Platform      `json:"platform"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist,omitempty"`
	URL      string        `json:"url,omitempty"`
	URI      string        `json:"uri,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	AddedBy  string        `json:"added_by,omitempty"`
	AddedAt  string        `json:"added_at,omitempty"`
}

// ItemKey derives the stable identifier of an item.
//
// A Spotify URI wins over a URL, and both win over the title/artist fallback.
func ItemKey(platform Platform, uri, url, title, artist string) string {
	switch {
	case uri != "":
		return uri
	case url != "":
		return url
	default:
		return fmt.Sprintf("%s:%s - %s", platform, title, artist)
	}
}

// NewItem builds an [Item] and derives its ID.
func NewItem(platform Platform, title, artist, url, uri string, duration time.Duration) Item {
	return Item{
		ID:       ItemKey(platform, uri, url, title, artist),
		Platform: platform,
		Title:    title,
		Artist:   artist,
		URL:      url,
		URI:      uri,
		Duration: duration,
	}
}

// DisplayName renders "Title - Artist", or just the title when no artist is known.
func (i Item) DisplayName() string {
	if i.Artist == "" {
		return i.Title
	}
	return i.Title + " - " + i.Artist
}

// PlayTarget returns what should be handed to the OS opener, preferring the URI.
func (i Item) PlayTarget() string {
	if i.URI != "" {
		return i.URI
	}
	return i.URL
}

// PlayCountEntry pairs an item id with its persisted play count.
type PlayCountEntry struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// Play is one counted playback.
type Play struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Platform  Platform  `json:"platform"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist,omitempty"`
	PlayCount int       `json:"play_count"`
	PlayedAt  time.Time `json:"played_at"`
}

// Catalog is an ordered, de-duplicated list of items.
type Catalog []Item

// NewCatalog concatenates the given item lists, keeping the first occurrence of each ID.
func NewCatalog(lists ...[]Item) Catalog {
	seen := make(map[string]struct{})
	var c Catalog
	for _, list := range lists {
		for _, it := range list {
			if it.ID == "" {
				continue
			}
			if _, ok := seen[it.ID]; ok {
				continue
			}
			seen[it.ID] = struct{}{}
			c = append(c, it)
		}
	}
	return c
}

// Filter returns the items on platform; a nil platform returns a copy of the catalog.
func (c Catalog) Filter(platform *Platform) Catalog {
	out := make(Catalog, 0, len(c))
	for _, it := range c {
		if platform == nil || it.Platform == *platform {
			out = append(out, it)
		}
	}
	return out
}

// IDs returns the item identifiers in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, it := range c {
		ids[i] = it.ID
	}
	return ids
}

// Index maps item IDs to items.
func (c Catalog) Index() map[string]Item {
	m := make(map[string]Item, len(c))
	for _, it := range c {
		m[it.ID] = it
	}
	return m
}

// Lookup finds an item by ID.
func (c Catalog) Lookup(id string) (Item, bool) {
	for _, it := range c {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Count returns the number of items per platform.
func (c Catalog) Count() map[Platform]int {
	m := make(map[Platform]int, len(Platforms))
	for _, it := range c {
		m[it.Platform]++
	}
	return m
}
