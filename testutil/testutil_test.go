package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupancy(t *testing.T) {
	rng := NewRNG(4711)

	used := rng.Occupancy(10000, 0.25)

	assert.True(t, slices.IsSorted(used))
	assert.InDelta(t, 2500, len(used), 300)
	for i := 1; i < len(used); i++ {
		require.Less(t, used[i-1], used[i])
	}
	assert.Less(t, used[len(used)-1], uint64(10000))

	assert.Empty(t, rng.Occupancy(100, 0))
	assert.Len(t, rng.Occupancy(100, 1), 100)
}

func TestRuns(t *testing.T) {
	rng := NewRNG(4711)

	covered := rng.Runs(640, 8, 16)

	assert.NotEmpty(t, covered)
	assert.LessOrEqual(t, len(covered), 8*16)
	assert.True(t, slices.IsSorted(covered))
	assert.Less(t, covered[len(covered)-1], uint64(640))

	assert.Nil(t, rng.Runs(0, 8, 16))
	assert.Nil(t, rng.Runs(640, 8, 0))
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(42)

	first := rng.Occupancy(256, 0.5)
	rng.Reset()
	second := rng.Occupancy(256, 0.5)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(42), rng.Seed())
}

func TestUint64n(t *testing.T) {
	rng := NewRNG(7)

	for i := 0; i < 1000; i++ {
		assert.Less(t, rng.Uint64n(10), uint64(10))
	}
	assert.Equal(t, uint64(0), rng.Uint64n(0))
}
