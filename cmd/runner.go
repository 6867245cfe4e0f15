package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/counts"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/playback"
	"github.com/desertthunder/karaoke/internal/queue"
	"github.com/desertthunder/karaoke/internal/repositories"
	"github.com/desertthunder/karaoke/internal/services"
	"github.com/desertthunder/karaoke/internal/shared"
	"github.com/desertthunder/karaoke/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	lookupEnv  func(string) (string, bool)
	sources    []services.Source
	dispatcher playback.Dispatcher
	rng        *rand.Rand
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Sources, Dispatcher and Rand replace the configured playlists, the system
// opener and the random source when set.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	LookupEnv  func(string) (string, bool)
	Sources    []services.Source
	Dispatcher playback.Dispatcher
	Rand       *rand.Rand
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		lookupEnv:  opts.LookupEnv,
		sources:    opts.Sources,
		dispatcher: opts.Dispatcher,
		rng:        opts.Rand,
	}
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, catalogCommand, playCommand, nextCommand, countsCommand, historyCommand, qrCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the file named by --config once, applies environment
// overrides and the configured log level.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}

	config, err := shared.LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(r.lookupEnv)
	shared.ApplyLogLevel(r.logger, config.Logging.Level)

	r.config = config
	r.configPath = path
	return config, nil
}

// openStore opens the play-count file. A corrupt file has already been
// backed up by the store, so the warning is reported and the fresh store used.
func (r *Runner) openStore(config *shared.Config) (*counts.Store, error) {
	store, err := counts.Open(config.Storage.CountsPath, r.logger)
	if errors.Is(err, shared.ErrCorruptState) {
		r.writePlain("Warning: %v. Starting with fresh play counts.\n", err)
		return store, nil
	}
	return store, err
}

func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// buildSources creates one source per configured playlist. Playlists that
// cannot be read are skipped with a warning.
func (r *Runner) buildSources(ctx context.Context, config *shared.Config) []services.Source {
	if r.sources != nil {
		return r.sources
	}

	var sources []services.Source
	if url := config.Playlists.YouTubeURL; url != "" {
		sources = append(sources, services.NewYouTubeSource(url, services.YTDLPLister, shared.WithLogger(r.logger, "source", "youtube")))
	}

	if url := config.Playlists.SpotifyURL; url != "" {
		client, err := services.NewSpotifyClient(ctx, config.Credentials.Spotify)
		if err != nil {
			r.logger.Warn("skipping spotify playlist", "error", err)
		} else {
			sources = append(sources, services.NewSpotifySource(url, client, shared.WithLogger(r.logger, "source", "spotify")))
		}
	}

	if len(sources) == 0 {
		r.logger.Warn("no playlists configured", "env", []string{shared.EnvYouTubePlaylistURL, shared.EnvSpotifyPlaylistURL})
	}
	r.sources = sources
	return sources
}

// loadCatalog fetches the playlists, or reads the last snapshot when cached
// is set. A failed fetch falls back to the snapshot if there is one.
func (r *Runner) loadCatalog(ctx context.Context, config *shared.Config, db *sql.DB, cached bool) (models.Catalog, error) {
	items := repositories.NewItemRepository(db)
	if cached {
		catalog, loadedAt, err := items.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("using cached catalog", "items", len(catalog), "loaded_at", loadedAt)
		return catalog, nil
	}

	loader := tasks.NewCatalogLoader(r.buildSources(ctx, config), items, r.logger)
	result, err := r.runLoader(ctx, loader)
	if err == nil {
		return result.Catalog, nil
	}

	catalog, loadedAt, cacheErr := items.Catalog(ctx)
	if cacheErr != nil || len(catalog) == 0 {
		return nil, err
	}
	r.logger.Warn("playlist fetch failed, using cached catalog", "error", err, "loaded_at", loadedAt)
	return catalog, nil
}

// runLoader runs loader and logs its progress updates.
func (r *Runner) runLoader(ctx context.Context, loader *tasks.CatalogLoader) (*tasks.LoadResult, error) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := loader.Load(ctx, progress)
	close(progress)
	<-done
	return result, err
}

// session bundles what a command needs to select and play.
type session struct {
	*playback.Session
	store *counts.Store
	db    *sql.DB
}

func (s *session) Close() error {
	return s.db.Close()
}

// newSession loads the catalog and wires the store, history and dispatcher.
func (r *Runner) newSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	store, err := r.openStore(config)
	if err != nil {
		return nil, err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return nil, err
	}

	catalog, err := r.loadCatalog(ctx, config, db, cmd.Bool("cached"))
	if err != nil {
		db.Close()
		return nil, err
	}

	s, err := playback.NewSession(playback.SessionOpts{
		Catalog:    catalog,
		Store:      store,
		Selector:   queue.NewSelector(r.rng),
		Dispatcher: r.newDispatcher(config, cmd.Bool("dry-run")),
		History:    repositories.NewPlayRepository(db),
		Logger:     r.logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &session{Session: s, store: store, db: db}, nil
}

func (r *Runner) newDispatcher(config *shared.Config, dryRun bool) playback.Dispatcher {
	switch {
	case dryRun:
		return playback.NewDryRunDispatcher(r.logger)
	case r.dispatcher != nil:
		return r.dispatcher
	default:
		return playback.NewSystemDispatcher(config.Player.Browser, r.logger)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// platformFlag parses --platform into an optional filter.
func platformFlag(cmd *cli.Command) (*models.Platform, error) {
	return models.ParsePlatformFilter(cmd.String("platform"))
}
