package queue

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// Counter is the read side of the play-count store.
type Counter interface {
	Get(id string) int
	MinCount(ids []string) int
}

// Selector draws items from the least-played tier.
type Selector struct {
	rng *rand.Rand
}

// NewSelector returns a Selector using rng, or a time-seeded source when rng is nil.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Selector{rng: rng}
}

// Tier returns the candidates on platform whose count equals the minimum
// count among them. A nil platform considers every item.
//
// It fails with [shared.ErrEmptyCatalog] when no candidate exists.
func (s *Selector) Tier(catalog models.Catalog, counts Counter, platform *models.Platform) (models.Catalog, error) {
	candidates := catalog.Filter(platform)
	if len(candidates) == 0 {
		if platform != nil {
			return nil, fmt.Errorf("%w on %s", shared.ErrEmptyCatalog, platform)
		}
		return nil, shared.ErrEmptyCatalog
	}

	m := counts.MinCount(candidates.IDs())
	tier := make(models.Catalog, 0, len(candidates))
	for _, it := range candidates {
		if counts.Get(it.ID) == m {
			tier = append(tier, it)
		}
	}
	return tier, nil
}

// SelectNext picks uniformly among the least-played tier. It does not change any count.
func (s *Selector) SelectNext(catalog models.Catalog, counts Counter, platform *models.Platform) (models.Item, error) {
	tier, err := s.Tier(catalog, counts, platform)
	if err != nil {
		return models.Item{}, err
	}
	return tier[s.rng.IntN(len(tier))], nil
}

// Shuffle permutes q uniformly. An empty queue is left alone.
func (s *Selector) Shuffle(q *Queue) {
	if q.Len() < 2 {
		return
	}
	s.rng.Shuffle(len(q.entries), func(i, j int) {
		q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	})
}

// Refill appends the tier in random order, skipping items already queued.
// It returns the number of entries added.
func (s *Selector) Refill(q *Queue, catalog models.Catalog, counts Counter, platform *models.Platform) (int, error) {
	tier, err := s.Tier(catalog, counts, platform)
	if err != nil {
		return 0, err
	}

	shuffled := make([]models.Item, len(tier))
	copy(shuffled, tier)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return q.Fill(shuffled), nil
}
