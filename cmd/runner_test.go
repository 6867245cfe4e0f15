package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/counts"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/services"
	"github.com/desertthunder/karaoke/internal/shared"
	tu "github.com/desertthunder/karaoke/internal/testing"
	"github.com/urfave/cli/v3"
)

// harness runs CLI commands against a temp config with fake sources and dispatcher.
type harness struct {
	configPath string
	config     *shared.Config
	output     *bytes.Buffer
	dispatcher *tu.MockDispatcher
	sources    []services.Source
}

func newHarness(t *testing.T, sources ...services.Source) *harness {
	t.Helper()
	dir := t.TempDir()

	config := shared.DefaultConfig()
	config.Storage.CountsPath = filepath.Join(dir, "play_counts.json")
	config.Database.Path = filepath.Join(dir, "karaoke.db")
	config.Logging.File = filepath.Join(dir, "karaoke.log")

	configPath := filepath.Join(dir, "config.toml")
	if err := shared.SaveConfig(configPath, config); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if sources == nil {
		sources = []services.Source{}
	}
	return &harness{
		configPath: configPath,
		config:     config,
		output:     &bytes.Buffer{},
		dispatcher: &tu.MockDispatcher{},
		sources:    sources,
	}
}

func (h *harness) run(args ...string) error {
	runner := NewRunner(RunnerOpts{
		Logger:     log.New(&bytes.Buffer{}),
		Output:     h.output,
		LookupEnv:  func(string) (string, bool) { return "", false },
		Sources:    h.sources,
		Dispatcher: h.dispatcher,
		Rand:       rand.New(rand.NewPCG(3, 4)),
	})

	app := &cli.Command{
		Name:      "karaoke",
		Writer:    &bytes.Buffer{},
		ErrWriter: &bytes.Buffer{},
		Commands:  runner.register(),
	}

	argv := append([]string{"karaoke"}, args...)
	argv = append(argv, "--config", h.configPath)
	return app.Run(context.Background(), argv)
}

func (h *harness) counts(t *testing.T) map[string]int {
	t.Helper()
	store, err := counts.Open(h.config.Storage.CountsPath, log.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	return store.Counts()
}

func ytSource(n int) *tu.MockSource {
	return &tu.MockSource{SourceName: "YouTube", On: models.YouTube, Items: tu.Items(models.YouTube, n)}
}

func spSource(n int) *tu.MockSource {
	return &tu.MockSource{SourceName: "Spotify", On: models.Spotify, Items: tu.Items(models.Spotify, n)}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			dispatcher := &tu.MockDispatcher{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				Dispatcher: dispatcher,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.dispatcher != dispatcher {
				t.Error("expected dispatcher to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("dry run overrides the dispatcher", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Dispatcher: &tu.MockDispatcher{}})
			if _, ok := runner.newDispatcher(shared.DefaultConfig(), true).(*tu.MockDispatcher); ok {
				t.Error("expected dry-run dispatcher")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "catalog", "play", "next", "counts", "history", "qr", "tui"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("loadConfig applies env overrides", func(t *testing.T) {
		h := newHarness(t)
		runner := NewRunner(RunnerOpts{
			Logger: log.New(&bytes.Buffer{}),
			LookupEnv: func(key string) (string, bool) {
				if key == shared.EnvYouTubePlaylistURL {
					return "https://www.youtube.com/playlist?list=PLenv", true
				}
				return "", false
			},
		})

		var config *shared.Config
		cmd := &cli.Command{
			Name:  "probe",
			Flags: []cli.Flag{configFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				var err error
				config, err = runner.loadConfig(cmd)
				return err
			},
		}
		if err := cmd.Run(context.Background(), []string{"probe", "--config", h.configPath}); err != nil {
			t.Fatal(err)
		}
		if config.Playlists.YouTubeURL != "https://www.youtube.com/playlist?list=PLenv" {
			t.Errorf("expected env playlist, got %s", config.Playlists.YouTubeURL)
		}
		if config.Storage.CountsPath != h.config.Storage.CountsPath {
			t.Errorf("expected counts path from file, got %s", config.Storage.CountsPath)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("play counts once per dispatch", func(t *testing.T) {
		h := newHarness(t, ytSource(2), spSource(1))

		for range 3 {
			if err := h.run("play"); err != nil {
				t.Fatalf("play failed: %v", err)
			}
		}

		if len(h.dispatcher.Dispatched) != 3 {
			t.Fatalf("expected 3 dispatches, got %d", len(h.dispatcher.Dispatched))
		}
		got := h.counts(t)
		for _, id := range []string{"youtube-0", "youtube-1", "spotify-0"} {
			if got[id] != 1 {
				t.Errorf("expected %s played once, got %v", id, got)
			}
		}
		if !strings.Contains(h.output.String(), "Now playing") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("play with platform", func(t *testing.T) {
		h := newHarness(t, ytSource(2), spSource(2))

		if err := h.run("play", "--platform", "sp"); err != nil {
			t.Fatal(err)
		}
		if h.dispatcher.Dispatched[0].Platform != models.Spotify {
			t.Errorf("expected spotify, got %s", h.dispatcher.Dispatched[0].Platform)
		}
	})

	t.Run("play with invalid platform", func(t *testing.T) {
		h := newHarness(t, ytSource(1))
		if err := h.run("play", "--platform", "vinyl"); !errors.Is(err, shared.ErrInvalidPlatform) {
			t.Errorf("expected ErrInvalidPlatform, got %v", err)
		}
	})

	t.Run("play with empty playlist", func(t *testing.T) {
		h := newHarness(t, ytSource(0))
		if err := h.run("play"); err != nil {
			t.Fatalf("empty catalog should not fail, got %v", err)
		}
		if !strings.Contains(h.output.String(), "No tracks available") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("play dispatch failure is not counted", func(t *testing.T) {
		h := newHarness(t, ytSource(1))
		h.dispatcher.Err = errors.New("no browser")

		if err := h.run("play"); !errors.Is(err, shared.ErrDispatchFailed) {
			t.Errorf("expected ErrDispatchFailed, got %v", err)
		}
		if len(h.counts(t)) != 0 {
			t.Errorf("expected no counts, got %v", h.counts(t))
		}
	})

	t.Run("play falls back to the saved catalog", func(t *testing.T) {
		h := newHarness(t, ytSource(2))
		if err := h.run("play"); err != nil {
			t.Fatal(err)
		}

		h.sources = []services.Source{&tu.MockSource{SourceName: "YouTube", On: models.YouTube, Err: shared.ErrAPIRequest}}
		if err := h.run("play"); err != nil {
			t.Fatalf("expected cached catalog to be used, got %v", err)
		}
		if len(h.dispatcher.Dispatched) != 2 {
			t.Errorf("expected 2 dispatches, got %d", len(h.dispatcher.Dispatched))
		}
	})

	t.Run("corrupt counts file", func(t *testing.T) {
		h := newHarness(t, ytSource(1))
		if err := os.WriteFile(h.config.Storage.CountsPath, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := h.run("play"); err != nil {
			t.Fatalf("corrupt counts should not be fatal, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Starting with fresh play counts") {
			t.Errorf("expected warning, got %q", h.output.String())
		}
		if h.counts(t)["youtube-0"] != 1 {
			t.Error("expected fresh count of 1")
		}

		backups, _ := filepath.Glob(h.config.Storage.CountsPath + ".corrupt-*")
		if len(backups) != 1 {
			t.Errorf("expected one backup, got %v", backups)
		}
	})

	t.Run("next previews without counting", func(t *testing.T) {
		h := newHarness(t, ytSource(3))

		if err := h.run("next", "--count", "2"); err != nil {
			t.Fatal(err)
		}
		if len(h.dispatcher.Dispatched) != 0 || len(h.counts(t)) != 0 {
			t.Error("preview must not play or count")
		}

		out := h.output.String()
		if !strings.Contains(out, "Next up: 2 of 3") || !strings.Contains(out, " 2. YT") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("catalog list json", func(t *testing.T) {
		h := newHarness(t, ytSource(1), spSource(2))

		if err := h.run("catalog", "list", "--json", "--platform", "spotify"); err != nil {
			t.Fatal(err)
		}

		var rows []struct {
			Item  models.Item `json:"item"`
			Count int         `json:"count"`
		}
		if err := json.Unmarshal(h.output.Bytes(), &rows); err != nil {
			t.Fatalf("invalid JSON %q: %v", h.output.String(), err)
		}
		if len(rows) != 2 || rows[0].Item.Platform != models.Spotify {
			t.Errorf("expected 2 spotify rows, got %+v", rows)
		}
	})

	t.Run("counts list and export", func(t *testing.T) {
		h := newHarness(t, ytSource(2))
		if err := h.run("play"); err != nil {
			t.Fatal(err)
		}
		h.output.Reset()

		if err := h.run("counts", "list"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(h.output.String(), "Least played: 0") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}

		out := filepath.Join(t.TempDir(), "counts.csv")
		if err := h.run("counts", "export", "--format", "csv", "--output", out); err != nil {
			t.Fatal(err)
		}
		content := tu.MustReadFile(t, out)
		if !strings.HasPrefix(content, "ID,Platform,Title,Artist,Plays") {
			t.Errorf("unexpected CSV:\n%s", content)
		}
	})

	t.Run("counts min", func(t *testing.T) {
		h := newHarness(t, ytSource(1))
		if err := h.run("play"); err != nil {
			t.Fatal(err)
		}
		h.output.Reset()

		if err := h.run("counts", "min"); err != nil {
			t.Fatal(err)
		}
		if h.output.String() != "1\n" {
			t.Errorf("expected 1, got %q", h.output.String())
		}
	})

	t.Run("counts reset", func(t *testing.T) {
		h := newHarness(t, ytSource(1))
		if err := h.run("play"); err != nil {
			t.Fatal(err)
		}

		if err := h.run("counts", "reset"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument without --force, got %v", err)
		}
		if err := h.run("counts", "reset", "--force"); err != nil {
			t.Fatal(err)
		}
		if len(h.counts(t)) != 0 {
			t.Errorf("expected empty counts, got %v", h.counts(t))
		}
	})

	t.Run("history", func(t *testing.T) {
		h := newHarness(t, ytSource(2))
		for range 2 {
			if err := h.run("play"); err != nil {
				t.Fatal(err)
			}
		}
		h.output.Reset()

		if err := h.run("history", "list", "--limit", "1"); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(h.output.String(), "Plays: 1") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}

		out := filepath.Join(t.TempDir(), "history.md")
		if err := h.run("history", "export", "--format", "md", "--output", out); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(tu.MustReadFile(t, out), "**Plays**: 2") {
			t.Error("expected both plays exported")
		}
	})

	t.Run("setup", func(t *testing.T) {
		h := newHarness(t)

		if err := h.run("setup", "database"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(h.output.String(), "2 migrations applied") {
			t.Errorf("unexpected output %q", h.output.String())
		}

		if err := h.run("setup", "config"); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("qr", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("qr"); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}

		h.config.Playlists.SpotifyURL = "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M"
		if err := shared.SaveConfig(h.configPath, h.config); err != nil {
			t.Fatal(err)
		}
		if err := h.run("qr"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(h.output.String(), "Spotify: https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M") {
			t.Errorf("expected share link, got %q", h.output.String())
		}
	})
}
