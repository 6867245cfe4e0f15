package playback

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// Dispatcher starts playback of an item. A nil error means playback was initiated.
type Dispatcher interface {
	Dispatch(ctx context.Context, item models.Item) error
}

// Opener hands target to a browser command, or to the OS default handler when browser is empty.
type Opener func(browser, target string) error

// SystemDispatcher plays YouTube items in the browser and Spotify items through the spotify: URI scheme.
type SystemDispatcher struct {
	browser string
	open    Opener
	logger  *log.Logger
}

// NewSystemDispatcher creates a dispatcher that uses browser (empty for the OS default) for web URLs.
func NewSystemDispatcher(browser string, logger *log.Logger) *SystemDispatcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SystemDispatcher{browser: browser, open: shared.OpenBrowser, logger: logger}
}

// WithOpener replaces the function used to launch targets.
func (d *SystemDispatcher) WithOpener(open Opener) *SystemDispatcher {
	d.open = open
	return d
}

// Dispatch opens item on its platform.
//
// Spotify URIs go to the OS handler so the desktop app picks them up; when
// that fails the web player URL is opened instead.
func (d *SystemDispatcher) Dispatch(ctx context.Context, item models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch item.Platform {
	case models.Spotify:
		if item.URI != "" {
			err := d.open("", item.URI)
			if err == nil {
				d.logger.Info("opened spotify uri", "uri", item.URI, "title", item.Title)
				return nil
			}
			d.logger.Warn("failed to open spotify uri, falling back to web", "uri", item.URI, "error", err)
		}
		return d.openURL(item)
	case models.YouTube:
		return d.openURL(item)
	default:
		return fmt.Errorf("%w: unknown platform %q for %s", shared.ErrDispatchFailed, item.Platform, item.ID)
	}
}

func (d *SystemDispatcher) openURL(item models.Item) error {
	if item.URL == "" {
		return fmt.Errorf("%w: %s has no URL", shared.ErrDispatchFailed, item.ID)
	}

	if err := d.open(d.browser, item.URL); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDispatchFailed, err)
	}

	d.logger.Info("opened url", "url", item.URL, "title", item.Title)
	return nil
}

// DryRunDispatcher logs the item instead of opening it.
type DryRunDispatcher struct {
	logger *log.Logger
}

// NewDryRunDispatcher creates a dispatcher that only logs.
func NewDryRunDispatcher(logger *log.Logger) *DryRunDispatcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DryRunDispatcher{logger: logger}
}

func (d *DryRunDispatcher) Dispatch(ctx context.Context, item models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Info("dry run: would play", "platform", item.Platform, "target", item.PlayTarget(), "title", item.DisplayName())
	return nil
}
