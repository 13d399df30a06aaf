package match

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

const MaxIterations = 1 << 24

// DefaultRange is the iteration range used when none is given.
var DefaultRange = IterRange{Min: 200, Max: 500}

// IterRange bounds the number of turns in a match, both ends inclusive.
type IterRange struct {
	Min int `toml:"min" json:"min"`
	Max int `toml:"max" json:"max"`
}

func (r IterRange) Validate() error {
	if r.Min < 1 || r.Max > MaxIterations || r.Min > r.Max {
		return fmt.Errorf("%w: [%d, %d] must satisfy 1 <= min <= max <= %d",
			ErrInvalidRange, r.Min, r.Max, MaxIterations)
	}
	return nil
}

// Scheduler draws iteration counts. It is safe for concurrent use.
type Scheduler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewScheduler returns a scheduler seeded with seed. A zero seed picks a
// random one.
func NewScheduler(seed uint64) *Scheduler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Scheduler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Draw returns a count uniformly distributed over r. r must be valid.
func (s *Scheduler) Draw(r IterRange) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.Min + s.rng.IntN(r.Max-r.Min+1)
}
