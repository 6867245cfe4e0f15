// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/karaoke/internal/models"
)

// MockSource is a test double for [services.Source]
type MockSource struct {
	SourceName string
	On         models.Platform
	Items      []models.Item
	Err        error

	mu    sync.Mutex
	calls int
}

func (m *MockSource) Name() string {
	if m.SourceName == "" {
		return "mock"
	}
	return m.SourceName
}

func (m *MockSource) Platform() models.Platform { return m.On }

func (m *MockSource) Fetch(ctx context.Context) ([]models.Item, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.Item, len(m.Items))
	copy(out, m.Items)
	return out, nil
}

// Calls returns how many times Fetch ran.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockDispatcher records dispatched items and fails while Err is set.
type MockDispatcher struct {
	Err        error
	Dispatched []models.Item
}

func (m *MockDispatcher) Dispatch(ctx context.Context, item models.Item) error {
	if m.Err != nil {
		return m.Err
	}
	m.Dispatched = append(m.Dispatched, item)
	return nil
}

// MockHistory is an in-memory play history recorder.
type MockHistory struct {
	Err   error
	Plays []models.Play
}

func (m *MockHistory) Record(ctx context.Context, play models.Play) error {
	if m.Err != nil {
		return m.Err
	}
	m.Plays = append(m.Plays, play)
	return nil
}

// Items builds n items on platform with ids "<platform>-<i>".
func Items(platform models.Platform, n int) []models.Item {
	items := make([]models.Item, n)
	for i := range n {
		items[i] = models.Item{
			ID:       fmt.Sprintf("%s-%d", platform, i),
			Platform: platform,
			Title:    fmt.Sprintf("Song %d", i),
			Artist:   "Artist",
		}
	}
	return items
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
