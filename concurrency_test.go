package famalloc

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/famalloc/atomics"
)

func TestConcurrent_ReserveSameBitHasOneWinner(t *testing.T) {
	bm := newTestBitmap(t, 8)

	const racers = 4

	for n := uint64(0); n < bm.Len(); n++ {
		var (
			wins      atomic.Int32
			conflicts atomic.Int32
			start     = make(chan struct{})
			g         errgroup.Group
		)

		for i := 0; i < racers; i++ {
			g.Go(func() error {
				<-start
				err := bm.Reserve(false, n)
				switch {
				case err == nil:
					wins.Add(1)
				case errors.Is(err, ErrConflict):
					conflicts.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		close(start)
		require.NoError(t, g.Wait())

		require.Equal(t, int32(1), wins.Load(), "bit %d", n)
		require.Equal(t, int32(racers-1), conflicts.Load(), "bit %d", n)
		require.True(t, mustGet(t, bm, n))
	}
}

func TestConcurrent_NeighboursNeverConflict(t *testing.T) {
	bm := newTestBitmap(t, 16)

	// Every goroutine owns one bit position and reserves it in every word, so
	// all swaps land on shared words but never on a shared bit.
	const owners = 8

	var g errgroup.Group
	for pos := uint64(0); pos < owners; pos++ {
		g.Go(func() error {
			for round := 0; round < 50; round++ {
				for w := uint64(0); w < bm.Len()/WordBits; w++ {
					n := w*WordBits + pos
					if err := bm.Reserve(false, n); err != nil {
						return err
					}
					if err := bm.Reserve(true, n); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, uint64(0), bm.Count())
}

func TestConcurrent_FindAndReserveExclusive(t *testing.T) {
	bm := newTestBitmap(t, 1)

	const (
		free    = 10
		callers = 32
	)

	for n := uint64(free); n < bm.Len(); n++ {
		require.NoError(t, bm.Set(n))
	}

	var (
		mu      sync.Mutex
		got     = roaring64.New()
		winners int
		misses  int
		start   = make(chan struct{})
		g       errgroup.Group
	)

	for i := 0; i < callers; i++ {
		g.Go(func() error {
			<-start
			idx, ok := bm.FindAndReserve(false, 0)

			mu.Lock()
			defer mu.Unlock()
			if !ok {
				misses++
				return nil
			}
			if !got.CheckedAdd(idx) {
				return errors.New("index handed out twice")
			}
			winners++
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	assert.Equal(t, free, winners)
	assert.Equal(t, callers-free, misses)
	assert.Equal(t, bm.Len(), bm.Count())
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got.ToArray())
}

func TestConcurrent_TwoWorkersHundredReservations(t *testing.T) {
	mc := &BasicMetricsCollector{}
	bm := newTestBitmap(t, 10, WithMetricsCollector(mc))

	const (
		workers = 2
		each    = 100
	)

	results := make([][]uint64, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < each; i++ {
				idx, ok := bm.FindAndReserve(false, 0)
				if !ok {
					return errors.New("bitmap unexpectedly full")
				}
				results[w] = append(results[w], idx)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := roaring64.New()
	for _, r := range results {
		require.Len(t, r, each)
		for _, idx := range r {
			require.True(t, seen.CheckedAdd(idx), "bit %d returned twice", idx)
		}
	}

	assert.Equal(t, uint64(workers*each), seen.GetCardinality())
	assert.Equal(t, uint64(workers*each), bm.Count())
	assert.True(t, seen.Equals(bm.Snapshot()))

	// Every successful claim was one reservation; the rest were conflicts.
	stats := mc.GetStats()
	assert.Equal(t, int64(workers*each), stats.ReserveCount-stats.ReserveConflicts)
}

func TestConcurrent_SetResetMixedWithReserve(t *testing.T) {
	bm := newTestBitmap(t, 1)

	// Goroutines hammering bits 32..63 must not disturb reservations of 0..31.
	stop := make(chan struct{})
	var noise errgroup.Group
	for i := 0; i < 4; i++ {
		noise.Go(func() error {
			n := uint64(32 + i)
			for {
				select {
				case <-stop:
					return nil
				default:
				}
				if err := bm.Set(n); err != nil {
					return err
				}
				if err := bm.Reset(n); err != nil {
					return err
				}
			}
		})
	}

	for n := uint64(0); n < 32; n++ {
		require.NoError(t, bm.Reserve(false, n))
	}
	close(stop)
	require.NoError(t, noise.Wait())

	for n := uint64(0); n < 32; n++ {
		assert.True(t, mustGet(t, bm, n))
	}
}

func TestShared_TwoMappingsOneBitmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.bitmap")

	// Two independent mappings and providers stand in for two processes.
	sa, err := OpenShared(path, 256)
	require.NoError(t, err)
	defer sa.Close()

	sb, err := OpenShared(path, 256)
	require.NoError(t, err)
	defer sb.Close()

	a, err := New(atomics.NewLocal(), sa.Bytes(), WithFd(sa.Fd()))
	require.NoError(t, err)
	defer a.Teardown()

	b, err := Attach(atomics.NewLocal(), sb.Bytes(), WithFd(sb.Fd()))
	require.NoError(t, err)
	defer b.Teardown()

	assert.Equal(t, uint64(256), b.Len())

	require.NoError(t, a.Set(7))
	assert.True(t, mustGet(t, b, 7))

	assert.ErrorIs(t, b.Reserve(false, 7), ErrConflict)

	var g errgroup.Group
	claimed := make([][]uint64, 2)
	for i, bm := range []*Bitmap{a, b} {
		g.Go(func() error {
			for {
				idx, ok := bm.FindAndReserve(false, 0)
				if !ok {
					return nil
				}
				claimed[i] = append(claimed[i], idx)
			}
		})
	}
	require.NoError(t, g.Wait())

	all := roaring64.New()
	all.Add(7)
	for _, c := range claimed {
		for _, idx := range c {
			require.True(t, all.CheckedAdd(idx), "bit %d claimed through both mappings", idx)
		}
	}
	assert.Equal(t, uint64(256), all.GetCardinality())
	assert.Equal(t, uint64(256), a.Count())

	require.NoError(t, sa.Sync())
}

func TestOpenShared_RoundsUpToWords(t *testing.T) {
	sb, err := OpenShared(filepath.Join(t.TempDir(), "tiny.bitmap"), 1)
	require.NoError(t, err)
	defer sb.Close()

	assert.Len(t, sb.Bytes(), WordBytes)

	bm, err := New(atomics.NewLocal(), sb.Bytes(), WithFd(sb.Fd()))
	require.NoError(t, err)
	defer bm.Teardown()

	assert.Equal(t, uint64(WordBits), bm.Len())
}
