// Package idalloc hands out small integer IDs (region IDs, pool IDs) from a
// famalloc.Bitmap shared by every process that creates regions.
//
// The lowest IDs are reserved for system use and never handed out; the bits
// that back them are simply skipped by the scan.
package idalloc

import (
	"errors"
	"fmt"

	"github.com/hupe1980/famalloc"
)

// DefaultReserved is the number of low IDs kept out of circulation.
const DefaultReserved = 21

var (
	// ErrExhausted is returned by Acquire when every ID is in use.
	ErrExhausted = errors.New("idalloc: no free id")
	// ErrNotAcquired is returned when releasing an ID that is not in use.
	ErrNotAcquired = errors.New("idalloc: id is not acquired")
	// ErrReservedID is returned when releasing an ID from the reserved range.
	ErrReservedID = errors.New("idalloc: id is reserved")
	// ErrNoCapacity is returned when the reserved range covers the whole bitmap.
	ErrNoCapacity = errors.New("idalloc: reserved range leaves no ids")
)

// Pool allocates IDs from a bitmap. It holds no state of its own beyond the
// configuration, so any number of Pools in any number of processes can share
// one bitmap.
type Pool struct {
	bm       *famalloc.Bitmap
	reserved uint64
}

// Option configures a Pool.
type Option func(*Pool)

// WithReserved sets the number of low IDs that are never handed out.
func WithReserved(n uint64) Option {
	return func(p *Pool) {
		p.reserved = n
	}
}

// New creates a Pool over bm.
func New(bm *famalloc.Bitmap, opts ...Option) (*Pool, error) {
	p := &Pool{
		bm:       bm,
		reserved: DefaultReserved,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.reserved >= bm.Len() {
		return nil, fmt.Errorf("%w: %d reserved of %d", ErrNoCapacity, p.reserved, bm.Len())
	}

	return p, nil
}

// Acquire claims the lowest free ID.
func (p *Pool) Acquire() (uint64, error) {
	id, ok := p.bm.FindAndReserve(false, p.reserved)
	if !ok {
		return 0, ErrExhausted
	}
	return id, nil
}

// Release returns id to the pool. Releasing an ID twice fails with
// ErrNotAcquired; only one of two concurrent releases of the same ID succeeds.
func (p *Pool) Release(id uint64) error {
	if id < p.reserved {
		return fmt.Errorf("%w: %d", ErrReservedID, id)
	}

	err := p.bm.Reserve(true, id)
	if errors.Is(err, famalloc.ErrConflict) {
		return fmt.Errorf("%w: %d: %w", ErrNotAcquired, id, err)
	}
	return err
}

// InUse returns the number of acquired IDs.
func (p *Pool) InUse() uint64 {
	used := p.bm.Snapshot()
	used.RemoveRange(0, p.reserved)
	return used.GetCardinality()
}

// Capacity returns the number of IDs the pool can hand out.
func (p *Pool) Capacity() uint64 {
	return p.bm.Len() - p.reserved
}
