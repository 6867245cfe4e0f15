package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/queue"
	"github.com/desertthunder/karaoke/internal/shared"
)

// Store is the play-count store as seen by a session.
type Store interface {
	queue.Counter
	Increment(id string) (int, error)
}

// HistoryRecorder stores counted plays.
type HistoryRecorder interface {
	Record(ctx context.Context, play models.Play) error
}

// SessionOpts configures a [Session]. Store and Dispatcher are required.
type SessionOpts struct {
	Catalog    models.Catalog
	Store      Store
	Selector   *queue.Selector
	Dispatcher Dispatcher
	History    HistoryRecorder
	Logger     *log.Logger
}

// Session runs the select, dispatch, count loop over one catalog.
type Session struct {
	mu         sync.Mutex
	catalog    models.Catalog
	store      Store
	selector   *queue.Selector
	queue      *queue.Queue
	dispatcher Dispatcher
	history    HistoryRecorder
	logger     *log.Logger
	now        func() time.Time

	current *queue.Entry // last counted entry
	pending *queue.Entry // entry left in Selected or Dispatched by a failure
}

// NewSession creates a session and fills the queue from the least-played tier.
func NewSession(opts SessionOpts) (*Session, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: session needs a play-count store", shared.ErrMissingArgument)
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("%w: session needs a dispatcher", shared.ErrMissingArgument)
	}
	if opts.Selector == nil {
		opts.Selector = queue.NewSelector(nil)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	s := &Session{
		catalog:    opts.Catalog,
		store:      opts.Store,
		selector:   opts.Selector,
		queue:      queue.New(),
		dispatcher: opts.Dispatcher,
		history:    opts.History,
		logger:     opts.Logger,
		now:        time.Now,
	}
	s.ensureQueued()
	return s, nil
}

// Catalog returns the current catalog.
func (s *Session) Catalog() models.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// SetCatalog replaces the catalog and reconciles the queue with it.
func (s *Session) SetCatalog(catalog models.Catalog) (added, removed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.catalog
	s.catalog = catalog
	added, removed = s.queue.Sync(previous, catalog)

	if s.pending != nil {
		if _, ok := catalog.Lookup(s.pending.Item.ID); !ok {
			s.pending = nil
		}
	}

	s.ensureQueued()
	if added > 0 || removed > 0 {
		s.logger.Info("catalog updated", "items", len(catalog), "queued", added, "dropped", removed)
	}
	return added, removed
}

// Next selects the next entry: the first queued entry on platform that is
// still in the least-played tier. Queued entries on platform that fell out
// of the tier are dropped. When none qualifies the queue is refilled from
// the tier. The entry is Selected but not yet dispatched.
func (s *Session) Next(platform *models.Platform) (*queue.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next(platform)
}

func (s *Session) next(platform *models.Platform) (*queue.Entry, error) {
	s.requeuePending()

	tier, err := s.selector.Tier(s.catalog, s.store, platform)
	if err != nil {
		return nil, err
	}

	inTier := make(map[string]struct{}, len(tier))
	for _, it := range tier {
		inTier[it.ID] = struct{}{}
	}

	onPlatform := func(e *queue.Entry) bool {
		return platform == nil || e.Item.Platform == *platform
	}

	if dropped := s.queue.Prune(func(e *queue.Entry) bool {
		if !onPlatform(e) {
			return true
		}
		_, ok := inTier[e.Item.ID]
		return ok
	}); dropped > 0 {
		s.logger.Debug("dropped queued entries above the least-played tier", "count", dropped)
	}

	idx := s.firstOn(onPlatform)
	if idx < 0 {
		if _, err := s.selector.Refill(s.queue, s.catalog, s.store, platform); err != nil {
			return nil, err
		}
		if idx = s.firstOn(onPlatform); idx < 0 {
			return nil, shared.ErrEmptyCatalog
		}
	}

	entry, err := s.queue.Pop(idx)
	if err != nil {
		return nil, err
	}
	if err := entry.Select(); err != nil {
		return nil, err
	}

	s.pending = entry
	s.logger.Debug("selected", "item", entry.Item.ID, "count", s.store.Get(entry.Item.ID))
	return entry, nil
}

// Take removes the queued entry at i and selects it, regardless of its count.
// This is the explicit "play this one" choice from the queue view.
func (s *Session) Take(i int) (*queue.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.queue.Pop(i)
	if err != nil {
		return nil, err
	}
	s.requeuePending()
	if err := entry.Select(); err != nil {
		return nil, err
	}
	s.pending = entry
	return entry, nil
}

// Play dispatches a Selected entry and counts it once dispatch succeeds.
//
// A dispatch failure leaves the entry Selected and wraps [shared.ErrDispatchFailed].
// A persist failure leaves it Dispatched and wraps [shared.ErrPersist]. In both
// cases the entry can be retried. A Dispatched entry is only counted.
func (s *Session) Play(ctx context.Context, entry *queue.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.play(ctx, entry)
}

func (s *Session) play(ctx context.Context, entry *queue.Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: no entry", shared.ErrMissingArgument)
	}

	switch entry.State {
	case queue.Selected:
		if err := s.dispatcher.Dispatch(ctx, entry.Item); err != nil {
			s.pending = entry
			s.logger.Warn("playback dispatch failed", "item", entry.Item.ID, "error", err)
			if errors.Is(err, shared.ErrDispatchFailed) {
				return err
			}
			return fmt.Errorf("%w: %v", shared.ErrDispatchFailed, err)
		}
		if err := entry.Dispatch(); err != nil {
			return err
		}
	case queue.Dispatched:
	default:
		return fmt.Errorf("%w: cannot play %s entry %s", shared.ErrInvalidTransition, entry.State, entry.Item.ID)
	}

	count, err := s.store.Increment(entry.Item.ID)
	if err != nil {
		s.pending = entry
		s.logger.Error("play count not saved", "item", entry.Item.ID, "error", err)
		return err
	}
	if err := entry.MarkCounted(count); err != nil {
		return err
	}

	s.current = entry
	if s.pending == entry {
		s.pending = nil
	}
	s.recordHistory(ctx, entry)
	s.logger.Info("now playing", "title", entry.Item.DisplayName(), "platform", entry.Item.Platform, "count", count)

	s.ensureQueued()
	return nil
}

// PlayNext selects and plays the next entry on platform.
func (s *Session) PlayNext(ctx context.Context, platform *models.Platform) (*queue.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.next(platform)
	if err != nil {
		return nil, err
	}
	return entry, s.play(ctx, entry)
}

// PlayAt takes the queued entry at i and plays it.
func (s *Session) PlayAt(ctx context.Context, i int) (*queue.Entry, error) {
	entry, err := s.Take(i)
	if err != nil {
		return nil, err
	}
	return entry, s.Play(ctx, entry)
}

// Retry plays the entry left behind by the last failed dispatch or persist.
func (s *Session) Retry(ctx context.Context) (*queue.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, shared.ErrNothingToRetry
	}
	entry := s.pending
	return entry, s.play(ctx, entry)
}

// Discard drops the pending entry so the next pick starts fresh. The count is untouched.
func (s *Session) Discard() *queue.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.pending
	s.pending = nil
	return entry
}

// Current returns the last counted entry, or nil.
func (s *Session) Current() *queue.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pending returns the entry awaiting a retry, or nil.
func (s *Session) Pending() *queue.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Upcoming returns up to n queued entries; n < 0 returns all of them.
func (s *Session) Upcoming(n int) []*queue.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureQueued()
	return s.queue.Peek(n)
}

// Shuffle randomizes the queue order. Counts are not touched.
func (s *Session) Shuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.Shuffle(s.queue)
}

// Move relocates a queued entry.
func (s *Session) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Move(from, to)
}

// MoveToFront moves the queued entry at i to the head.
func (s *Session) MoveToFront(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.MoveToFront(i)
}

// Count returns the stored play count of id.
func (s *Session) Count(id string) int {
	return s.store.Get(id)
}

// ensureQueued refills an empty queue from the overall tier.
func (s *Session) ensureQueued() {
	if s.queue.Len() > 0 || len(s.catalog) == 0 {
		return
	}
	if _, err := s.selector.Refill(s.queue, s.catalog, s.store, nil); err != nil {
		s.logger.Debug("could not fill queue", "error", err)
	}
}

// requeuePending returns an entry abandoned after a failed dispatch or persist
// to the tail of the queue as a fresh pick, so it is neither lost nor counted.
func (s *Session) requeuePending() {
	entry := s.pending
	if entry == nil {
		return
	}
	s.pending = nil

	if _, ok := s.catalog.Lookup(entry.Item.ID); !ok {
		s.logger.Warn("discarded pending entry no longer in catalog", "item", entry.Item.ID, "state", entry.State)
		return
	}
	s.queue.Push(entry.Item)
	s.logger.Warn("pending entry returned to the queue", "item", entry.Item.ID, "state", entry.State)
}

func (s *Session) firstOn(match func(*queue.Entry) bool) int {
	for i, e := range s.queue.Entries() {
		if match(e) {
			return i
		}
	}
	return -1
}

func (s *Session) recordHistory(ctx context.Context, entry *queue.Entry) {
	if s.history == nil {
		return
	}

	play := models.Play{
		ID:        shared.GenerateID(),
		ItemID:    entry.Item.ID,
		Platform:  entry.Item.Platform,
		Title:     entry.Item.Title,
		Artist:    entry.Item.Artist,
		PlayCount: entry.Count,
		PlayedAt:  s.now(),
	}
	if err := s.history.Record(ctx, play); err != nil {
		s.logger.Warn("failed to record play history", "item", entry.Item.ID, "error", err)
	}
}
