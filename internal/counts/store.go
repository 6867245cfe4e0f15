package counts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// Store is a persisted item id to play count mapping.
type Store struct {
	mu     sync.Mutex
	path   string
	counts map[string]int
	logger *log.Logger

	// set when a corrupt file could not be backed up; writes are refused so it is not overwritten
	unsaved string

	// swapped out in tests
	writeFile func(path string, data []byte) error
	rename    func(oldpath, newpath string) error
	now       func() time.Time
}

// Open loads the store at path.
//
// A missing file yields an empty store. A corrupt file is moved aside to
// "<path>.corrupt-<unix>" and an empty store is returned together with an
// error wrapping [shared.ErrCorruptState]; the store is usable in that case.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Store{
		path:      path,
		counts:    map[string]int{},
		logger:    logger,
		writeFile: atomicWrite,
		rename:    os.Rename,
		now:       time.Now,
	}

	if _, err := s.Load(); err != nil {
		return s, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

// Load re-reads the backing file and replaces the in-memory counts with it.
//
// It returns a copy of the loaded mapping.
func (s *Store) Load() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := readCounts(s.path)
	switch {
	case err == nil:
		s.counts = counts
		s.unsaved = ""
	case errors.Is(err, shared.ErrCorruptState):
		s.counts = map[string]int{}
		backup, berr := s.backup()
		if berr != nil {
			s.unsaved = s.path
			s.logger.Error("failed to back up corrupt counts file, counts will not be saved", "path", s.path, "error", berr)
			return map[string]int{}, fmt.Errorf("%w (backup failed: %v)", err, berr)
		}
		s.unsaved = ""
		s.logger.Warn("counts file was corrupt, starting fresh", "path", s.path, "backup", backup)
		return map[string]int{}, fmt.Errorf("%w: moved to %s", err, backup)
	default:
		return map[string]int{}, err
	}

	return copyCounts(s.counts), nil
}

// Get returns the count for id, 0 when unseen.
func (s *Store) Get(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[id]
}

// Increment adds one to id's count and persists the store before updating memory.
//
// On a write failure the count is left unchanged and the error wraps [shared.ErrPersist].
func (s *Store) Increment(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyCounts(s.counts)
	next[id]++

	if err := s.persist(next); err != nil {
		return s.counts[id], err
	}

	s.counts = next
	s.logger.Debug("incremented play count", "item", id, "count", next[id])
	return next[id], nil
}

// MinCount returns the smallest count among ids, treating unseen ids as 0.
// An empty ids slice returns 0.
func (s *Store) MinCount(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		return 0
	}

	lowest := s.counts[ids[0]]
	for _, id := range ids[1:] {
		if c := s.counts[id]; c < lowest {
			lowest = c
		}
	}
	return lowest
}

// Counts returns a copy of the in-memory mapping.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounts(s.counts)
}

// Entries lists every stored count, highest first and then by id.
func (s *Store) Entries() []models.PlayCountEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]models.PlayCountEntry, 0, len(s.counts))
	for id, c := range s.counts {
		entries = append(entries, models.PlayCountEntry{ItemID: id, Count: c})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].ItemID < entries[j].ItemID
	})
	return entries
}

// Reset clears every count and persists the empty store.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := map[string]int{}
	if err := s.persist(empty); err != nil {
		return err
	}
	s.counts = empty
	s.logger.Info("play counts reset", "path", s.path)
	return nil
}

func (s *Store) persist(counts map[string]int) error {
	if s.unsaved != "" {
		return fmt.Errorf("%w: corrupt file %s was not backed up", shared.ErrPersist, s.unsaved)
	}

	data, err := encodeCounts(counts)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersist, err)
	}

	if err := s.writeFile(s.path, data); err != nil {
		s.logger.Error("failed to persist play counts", "path", s.path, "error", err)
		return fmt.Errorf("%w: %v", shared.ErrPersist, err)
	}
	return nil
}

func (s *Store) backup() (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if err := s.rename(s.path, target); err != nil {
		return "", err
	}
	return target, nil
}

func readCounts(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read counts file: %w", err)
	}

	return decodeCounts(data)
}

// decodeCounts accepts only a JSON object of non-negative integer literals.
func decodeCounts(data []byte) (map[string]int, error) {
	var raw map[string]json.RawMessage

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCorruptState, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not a JSON object", shared.ErrCorruptState)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", shared.ErrCorruptState)
	}

	counts := make(map[string]int, len(raw))
	for id, value := range raw {
		v, err := strconv.ParseInt(string(bytes.TrimSpace(value)), 10, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: invalid count %s for %s", shared.ErrCorruptState, value, id)
		}
		counts[id] = int(v)
	}
	return counts, nil
}

func encodeCounts(counts map[string]int) ([]byte, error) {
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// atomicWrite writes data to a temp file next to path, syncs it and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	syncDir(dir)
	return nil
}

// syncDir flushes the rename to disk where the platform allows opening directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
