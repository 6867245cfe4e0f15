package queue

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// memCounter is an in-memory Counter.
type memCounter map[string]int

func (m memCounter) Get(id string) int { return m[id] }

func (m memCounter) MinCount(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	lowest := m[ids[0]]
	for _, id := range ids[1:] {
		lowest = min(lowest, m[id])
	}
	return lowest
}

func seeded(seed uint64) *Selector {
	return NewSelector(rand.New(rand.NewPCG(seed, seed+1)))
}

func catalogOf(n int, platform models.Platform) models.Catalog {
	c := make(models.Catalog, n)
	for i := range n {
		c[i] = models.Item{ID: fmt.Sprintf("%s-%d", platform, i), Platform: platform, Title: fmt.Sprintf("Song %d", i)}
	}
	return c
}

func ids(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Item.ID
	}
	return out
}

func TestSelectNext(t *testing.T) {
	t.Run("always from the minimum tier", func(t *testing.T) {
		catalog := catalogOf(10, models.YouTube)
		counts := memCounter{}
		for i, it := range catalog {
			counts[it.ID] = i % 3
		}
		s := seeded(1)

		for range 200 {
			it, err := s.SelectNext(catalog, counts, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if counts[it.ID] != 0 {
				t.Fatalf("selected %s with count %d, minimum is 0", it.ID, counts[it.ID])
			}
		}
	})

	t.Run("selection does not increment", func(t *testing.T) {
		catalog := catalogOf(3, models.YouTube)
		counts := memCounter{}
		s := seeded(2)
		for range 10 {
			if _, err := s.SelectNext(catalog, counts, nil); err != nil {
				t.Fatal(err)
			}
		}
		if len(counts) != 0 {
			t.Errorf("counts changed: %v", counts)
		}
	})

	t.Run("round robin over N items", func(t *testing.T) {
		for _, n := range []int{1, 2, 3, 7, 25} {
			t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
				catalog := catalogOf(n, models.Spotify)
				counts := memCounter{}
				s := seeded(uint64(n))

				for round := range 3 {
					seen := map[string]bool{}
					for range n {
						it, err := s.SelectNext(catalog, counts, nil)
						if err != nil {
							t.Fatal(err)
						}
						if seen[it.ID] {
							t.Fatalf("round %d: %s repeated before every item played", round, it.ID)
						}
						seen[it.ID] = true
						counts[it.ID]++
					}
					if len(seen) != n {
						t.Fatalf("round %d: expected %d distinct items, got %d", round, n, len(seen))
					}
				}
			})
		}
	})

	t.Run("platform filter", func(t *testing.T) {
		catalog := models.NewCatalog(catalogOf(3, models.YouTube), catalogOf(3, models.Spotify))
		counts := memCounter{"spotify-0": 0, "youtube-0": 5, "youtube-1": 5, "youtube-2": 4}
		s := seeded(3)
		yt := models.YouTube

		for range 20 {
			it, err := s.SelectNext(catalog, counts, &yt)
			if err != nil {
				t.Fatal(err)
			}
			if it.ID != "youtube-2" {
				t.Fatalf("expected youtube-2, got %s", it.ID)
			}
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		s := seeded(4)
		if _, err := s.SelectNext(nil, memCounter{}, nil); !errors.Is(err, shared.ErrEmptyCatalog) {
			t.Errorf("expected ErrEmptyCatalog, got %v", err)
		}

		sp := models.Spotify
		if _, err := s.SelectNext(catalogOf(2, models.YouTube), memCounter{}, &sp); !errors.Is(err, shared.ErrEmptyCatalog) {
			t.Errorf("expected ErrEmptyCatalog for excluded platform, got %v", err)
		}
	})

	t.Run("stale ids tolerated", func(t *testing.T) {
		counts := memCounter{"gone": 0, "youtube-0": 1, "youtube-1": 1}
		tier, err := seeded(5).Tier(catalogOf(2, models.YouTube), counts, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(tier) != 2 {
			t.Errorf("stale entry should not affect the tier, got %v", tier.IDs())
		}
	})

	t.Run("uniform within tier", func(t *testing.T) {
		catalog := catalogOf(4, models.YouTube)
		counts := memCounter{}
		s := seeded(6)
		hits := map[string]int{}
		const draws = 4000
		for range draws {
			it, _ := s.SelectNext(catalog, counts, nil)
			hits[it.ID]++
		}
		for _, it := range catalog {
			if h := hits[it.ID]; h < draws/4-200 || h > draws/4+200 {
				t.Errorf("%s drawn %d times, expected about %d", it.ID, h, draws/4)
			}
		}
	})
}

func TestShuffle(t *testing.T) {
	t.Run("permutation", func(t *testing.T) {
		q := New()
		q.Fill(catalogOf(12, models.YouTube))
		counts := memCounter{"youtube-3": 2}
		before := ids(q.Entries())

		seeded(7).Shuffle(q)

		after := ids(q.Entries())
		if len(after) != len(before) {
			t.Fatalf("length changed: %d -> %d", len(before), len(after))
		}
		sortedBefore, sortedAfter := slices.Clone(before), slices.Clone(after)
		slices.Sort(sortedBefore)
		slices.Sort(sortedAfter)
		if !slices.Equal(sortedBefore, sortedAfter) {
			t.Errorf("shuffle is not a permutation: %v vs %v", before, after)
		}
		if slices.Equal(before, after) {
			t.Error("12 entries came back in the same order")
		}
		if len(counts) != 1 || counts["youtube-3"] != 2 {
			t.Errorf("counts changed: %v", counts)
		}
	})

	t.Run("empty queue", func(t *testing.T) {
		q := New()
		seeded(8).Shuffle(q)
		if q.Len() != 0 {
			t.Error("empty queue should stay empty")
		}
	})
}

func TestQueue(t *testing.T) {
	newQueue := func() *Queue {
		q := New()
		q.Fill(catalogOf(4, models.YouTube))
		return q
	}

	t.Run("Move", func(t *testing.T) {
		tests := []struct {
			name     string
			from, to int
			want     []string
		}{
			{"down", 0, 2, []string{"youtube-1", "youtube-2", "youtube-0", "youtube-3"}},
			{"up", 3, 1, []string{"youtube-0", "youtube-3", "youtube-1", "youtube-2"}},
			{"same", 2, 2, []string{"youtube-0", "youtube-1", "youtube-2", "youtube-3"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				q := newQueue()
				if err := q.Move(tt.from, tt.to); err != nil {
					t.Fatal(err)
				}
				if got := ids(q.Entries()); !slices.Equal(got, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}
	})

	t.Run("Move out of range", func(t *testing.T) {
		for _, idx := range [][2]int{{-1, 0}, {0, 4}, {4, 0}, {0, -1}} {
			q := newQueue()
			before := ids(q.Entries())
			if err := q.Move(idx[0], idx[1]); !errors.Is(err, shared.ErrIndexOutOfRange) {
				t.Errorf("Move(%d, %d): expected ErrIndexOutOfRange, got %v", idx[0], idx[1], err)
			}
			if !slices.Equal(before, ids(q.Entries())) {
				t.Error("failed move should not change the queue")
			}
		}

		if err := New().Move(0, 0); !errors.Is(err, shared.ErrIndexOutOfRange) {
			t.Errorf("expected ErrIndexOutOfRange on empty queue, got %v", err)
		}
	})

	t.Run("MoveToFront", func(t *testing.T) {
		q := newQueue()
		if err := q.MoveToFront(2); err != nil {
			t.Fatal(err)
		}
		if q.Peek(1)[0].Item.ID != "youtube-2" {
			t.Errorf("expected youtube-2 at front, got %v", ids(q.Entries()))
		}
	})

	t.Run("Fill skips duplicates", func(t *testing.T) {
		q := newQueue()
		added := q.Fill(append(catalogOf(2, models.YouTube), catalogOf(1, models.Spotify)...))
		if added != 1 || q.Len() != 5 {
			t.Errorf("expected one added and len 5, got %d and %d", added, q.Len())
		}
	})

	t.Run("Pop and Remove", func(t *testing.T) {
		q := newQueue()
		e, err := q.Pop(1)
		if err != nil || e.Item.ID != "youtube-1" {
			t.Fatalf("unexpected pop result %v, %v", e, err)
		}
		if _, err := q.Pop(10); !errors.Is(err, shared.ErrIndexOutOfRange) {
			t.Errorf("expected ErrIndexOutOfRange, got %v", err)
		}
		if !q.Remove("youtube-3") || q.Remove("youtube-3") {
			t.Error("remove should succeed once")
		}
		if q.Len() != 2 {
			t.Errorf("expected 2 entries, got %d", q.Len())
		}
	})

	t.Run("Sync", func(t *testing.T) {
		previous := catalogOf(4, models.YouTube)
		q := New()
		q.Fill(previous[:3])

		current := models.NewCatalog(previous[1:], catalogOf(2, models.Spotify))
		added, removed := q.Sync(previous, current)
		if removed != 1 {
			t.Errorf("expected 1 removed, got %d", removed)
		}
		if added != 2 {
			t.Errorf("expected 2 added, got %d", added)
		}
		want := []string{"youtube-1", "youtube-2", "spotify-0", "spotify-1"}
		if got := ids(q.Entries()); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		q := newQueue()
		dropped := q.Prune(func(e *Entry) bool { return e.Item.ID != "youtube-0" })
		if dropped != 1 || q.Contains("youtube-0") {
			t.Errorf("expected youtube-0 pruned, got %v", ids(q.Entries()))
		}
	})
}

func TestRefill(t *testing.T) {
	catalog := models.NewCatalog(catalogOf(3, models.YouTube), catalogOf(2, models.Spotify))
	counts := memCounter{"youtube-0": 1}
	q := New()
	s := seeded(9)

	added, err := s.Refill(q, catalog, counts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if added != 4 || q.Contains("youtube-0") {
		t.Errorf("expected the four zero-count items, got %v", ids(q.Entries()))
	}

	added, err = s.Refill(q, catalog, counts, nil)
	if err != nil || added != 0 {
		t.Errorf("refilling a full tier should add nothing, got %d, %v", added, err)
	}

	if _, err := s.Refill(q, nil, counts, nil); !errors.Is(err, shared.ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestEntryTransitions(t *testing.T) {
	e := NewEntry(models.Item{ID: "a"})

	if err := e.Dispatch(); !errors.Is(err, shared.ErrInvalidTransition) {
		t.Errorf("pending entry cannot be dispatched, got %v", err)
	}
	if err := e.Select(); err != nil {
		t.Fatal(err)
	}
	if err := e.MarkCounted(1); !errors.Is(err, shared.ErrInvalidTransition) {
		t.Errorf("selected entry cannot be counted, got %v", err)
	}
	if err := e.Dispatch(); err != nil {
		t.Fatal(err)
	}
	if err := e.MarkCounted(3); err != nil {
		t.Fatal(err)
	}
	if e.State != Counted || e.Count != 3 {
		t.Errorf("unexpected entry %+v", e)
	}
	if err := e.Select(); !errors.Is(err, shared.ErrInvalidTransition) {
		t.Errorf("counted entry cannot be selected again, got %v", err)
	}
	if Counted.String() != "counted" || State(9).String() != "state(9)" {
		t.Error("unexpected state names")
	}
}
