package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/services"
	"github.com/desertthunder/karaoke/internal/shared"
	"golang.org/x/sync/errgroup"
)

// CatalogCache stores the most recent catalog.
type CatalogCache interface {
	ReplaceCatalog(ctx context.Context, catalog models.Catalog, loadedAt time.Time) error
}

// SourceResult is the outcome of fetching one source.
type SourceResult struct {
	Name     string
	Platform models.Platform
	Items    int
	Elapsed  time.Duration
	Err      error
}

// LoadResult contains the merged catalog and per-source outcomes.
type LoadResult struct {
	Catalog    models.Catalog
	Sources    []SourceResult
	Duplicates int
	LoadedAt   time.Time
}

// Failed returns the sources that returned an error.
func (r *LoadResult) Failed() []SourceResult {
	var failed []SourceResult
	for _, s := range r.Sources {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// CatalogLoader fetches every source and merges the results.
type CatalogLoader struct {
	sources []services.Source
	cache   CatalogCache
	logger  *log.Logger
	now     func() time.Time
}

// NewCatalogLoader creates a loader over sources. cache may be nil.
func NewCatalogLoader(sources []services.Source, cache CatalogCache, logger *log.Logger) *CatalogLoader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CatalogLoader{sources: sources, cache: cache, logger: logger, now: time.Now}
}

// sendProgress sends a progress update through the channel without blocking.
func (l *CatalogLoader) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load fetches all sources concurrently and builds a fresh catalog.
//
// It fails only when every source fails or ctx is cancelled; partial
// failures are reported in [LoadResult.Sources].
func (l *CatalogLoader) Load(ctx context.Context, progress chan<- ProgressUpdate) (*LoadResult, error) {
	if len(l.sources) == 0 {
		return nil, fmt.Errorf("%w: no playlists configured", shared.ErrMissingConfig)
	}

	total := len(l.sources)
	results := make([]SourceResult, total)
	fetched := make([][]models.Item, total)

	var (
		mu   sync.Mutex
		done int
		g    errgroup.Group
	)

	for i, src := range l.sources {
		l.sendProgress(progress, fetchingSourceUpdate(i+1, total, src.Name()))

		g.Go(func() error {
			start := l.now()
			items, err := src.Fetch(ctx)

			res := SourceResult{Name: src.Name(), Platform: src.Platform(), Items: len(items), Elapsed: time.Since(start), Err: err}
			results[i] = res
			if err == nil {
				fetched[i] = items
			}

			mu.Lock()
			done++
			step := done
			mu.Unlock()

			if err != nil {
				l.logger.Warn("failed to load playlist", "source", src.Name(), "error", err)
				l.sendProgress(progress, sourceFailedUpdate(step, total, src.Name(), err))
				return nil
			}

			l.logger.Debug("loaded source", "source", src.Name(), "items", len(items), "elapsed", res.Elapsed)
			l.sendProgress(progress, fetchedSourceUpdate(step, total, src.Name(), len(items)))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &LoadResult{Sources: results, LoadedAt: l.now()}

	var errs []error
	raw := 0
	for i, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
			continue
		}
		raw += len(fetched[i])
	}
	if len(errs) == total {
		return result, errors.Join(errs...)
	}

	result.Catalog = models.NewCatalog(fetched...)
	result.Duplicates = raw - len(result.Catalog)
	l.sendProgress(progress, mergedCatalogUpdate(result.Catalog, result.Duplicates))
	l.logger.Info("catalog loaded", "items", len(result.Catalog), "duplicates", result.Duplicates, "failed_sources", len(errs))

	if l.cache != nil {
		if err := l.cache.ReplaceCatalog(ctx, result.Catalog, result.LoadedAt); err != nil {
			l.logger.Warn("failed to save catalog snapshot", "error", err)
		} else {
			l.sendProgress(progress, snapshotUpdate(len(result.Catalog)))
		}
	}

	return result, nil
}
