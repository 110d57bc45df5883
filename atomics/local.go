package atomics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Local is a Provider for buffers addressable from the current process.
//
// Atomicity comes from sync/atomic, so two processes that map the same file
// with MAP_SHARED and register it with their own Local operate on the same
// words. A buffer may only be registered once per Local at a time.
type Local struct {
	mu      sync.Mutex
	regions map[uintptr]*localRegion
}

// NewLocal creates an empty Local provider.
func NewLocal() *Local {
	return &Local{
		regions: make(map[uintptr]*localRegion),
	}
}

// RegisterRegion implements Provider.
func (l *Local) RegisterRegion(buf []byte, fd int, flags Flags) (Region, error) {
	if flags != 0 {
		return nil, fmt.Errorf("%w: %#x", ErrUnsupportedFlags, uint64(flags))
	}
	if len(buf) == 0 {
		return nil, ErrEmpty
	}
	if len(buf)%WordBytes != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(buf))
	}

	ptr := unsafe.Pointer(unsafe.SliceData(buf)) //nolint:gosec // address is only inspected and reinterpreted as words
	base := uintptr(ptr)
	if base%WordBytes != 0 {
		return nil, fmt.Errorf("%w: address %#x", ErrUnaligned, base)
	}
	end := base + uintptr(len(buf))

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range l.regions {
		if base < r.end && r.base < end {
			return nil, fmt.Errorf("%w: [%#x, %#x)", ErrAlreadyRegistered, r.base, r.end)
		}
	}

	r := &localRegion{
		owner: l,
		base:  base,
		end:   end,
		fd:    fd,
		words: unsafe.Slice((*uint64)(ptr), len(buf)/WordBytes), //nolint:gosec // alignment checked above
	}
	r.registered.Store(true)
	l.regions[base] = r

	return r, nil
}

// Registered returns the number of currently registered regions.
func (l *Local) Registered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.regions)
}

func (l *Local) unregister(r *localRegion) error {
	if !r.registered.Swap(false) {
		return ErrNotRegistered
	}

	l.mu.Lock()
	delete(l.regions, r.base)
	l.mu.Unlock()

	return nil
}

type localRegion struct {
	owner      *Local
	base       uintptr
	end        uintptr
	fd         int
	words      []uint64
	registered atomic.Bool
}

func (r *localRegion) Words() uint64 {
	return uint64(len(r.words))
}

func (r *localRegion) ReadWord(i uint64) uint64 {
	return atomic.LoadUint64(&r.words[i])
}

func (r *localRegion) WriteWord(i uint64, v uint64) {
	atomic.StoreUint64(&r.words[i], v)
}

func (r *localRegion) CompareAndSwapWord(i uint64, expected, desired uint64) uint64 {
	addr := &r.words[i]
	for {
		if atomic.CompareAndSwapUint64(addr, expected, desired) {
			return expected
		}
		// The swap failed, so the word differed from expected at that moment.
		// A load that sees expected again means it changed back in between;
		// report only a value that genuinely differs.
		if observed := atomic.LoadUint64(addr); observed != expected {
			return observed
		}
	}
}

func (r *localRegion) Unregister() error {
	return r.owner.unregister(r)
}
