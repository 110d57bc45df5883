package testutil

import (
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64n returns a pseudo-random number in [0,n).
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uint64nLocked(n)
}

func (r *RNG) uint64nLocked(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return r.rand.Uint64() % n
}

// Bool returns a pseudo-random bool.
func (r *RNG) Bool() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(2) == 1
}

// Occupancy returns a sorted set of distinct indices in [0, limit), each
// index included independently with probability density.
// Locks only once per call.
func (r *RNG) Occupancy(limit uint64, density float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []uint64
	for i := uint64(0); i < limit; i++ {
		if r.rand.Float64() < density {
			out = append(out, i)
		}
	}
	return out
}

// Runs returns the sorted, distinct indices covered by count runs of
// consecutive bits in [0, limit), each run between 1 and maxLen bits long.
// Runs may overlap or touch.
func (r *RNG) Runs(limit uint64, count int, maxLen uint64) []uint64 {
	if limit == 0 || maxLen == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uint64]struct{})
	for c := 0; c < count; c++ {
		start := r.uint64nLocked(limit)
		length := 1 + r.uint64nLocked(maxLen)
		for i := start; i < start+length && i < limit; i++ {
			seen[i] = struct{}{}
		}
	}

	out := make([]uint64, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}
