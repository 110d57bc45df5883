package famalloc

import (
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Find returns the smallest index >= start whose bit equals value.
//
// The result is only a hint: the bit may change before the caller acts on it.
// Use Reserve, or FindAndReserve, to claim it.
func (b *Bitmap) Find(value bool, start uint64) (uint64, bool) {
	if !b.active.Load() {
		return 0, false
	}

	idx, ok := b.next(value, start)
	b.metrics.RecordScan(b.examined(start, idx, ok), ok)

	return idx, ok
}

// FindAndReserve scans forward from start like Find and reserves the first
// candidate it can flip from value to !value. A candidate lost to another
// caller is skipped, not retried. The returned index is owned by the caller.
func (b *Bitmap) FindAndReserve(value bool, start uint64) (uint64, bool) {
	if !b.active.Load() {
		return 0, false
	}

	from := start
	for {
		idx, ok := b.next(value, from)
		if !ok {
			break
		}
		if b.reserve(value, idx) == nil {
			b.metrics.RecordScan(b.examined(start, idx, true), true)
			return idx, true
		}
		from = idx + 1
	}

	b.metrics.RecordScan(b.examined(start, 0, false), false)

	return 0, false
}

// next returns the first index >= from whose bit equals value. Each word is
// read atomically once; bits within a word are examined from that read.
func (b *Bitmap) next(value bool, from uint64) (uint64, bool) {
	words := b.region.Words()
	first := from / WordBits

	for w := first; w < words; w++ {
		word := b.region.ReadWord(w)
		if !value {
			word = ^word
		}
		if w == first {
			word &^= uint64(1)<<(from%WordBits) - 1
		}
		if word != 0 {
			return w*WordBits + uint64(bits.TrailingZeros64(word)), true
		}
	}

	return 0, false
}

func (b *Bitmap) examined(start, idx uint64, found bool) uint64 {
	switch {
	case found:
		return idx - start + 1
	case start < b.bits:
		return b.bits - start
	default:
		return 0
	}
}

// Count returns the number of set bits. Words are read one at a time, so
// under concurrent mutation the result is not a point-in-time value.
func (b *Bitmap) Count() uint64 {
	if !b.active.Load() {
		return 0
	}

	var n uint64
	for w := uint64(0); w < b.region.Words(); w++ {
		n += uint64(bits.OnesCount64(b.region.ReadWord(w)))
	}
	return n
}

// Snapshot returns the indices of all set bits. Like Count, it is assembled
// word by word and is not isolated from concurrent mutation.
func (b *Bitmap) Snapshot() *roaring64.Bitmap {
	rb := roaring64.New()
	if !b.active.Load() {
		return rb
	}

	for w := uint64(0); w < b.region.Words(); w++ {
		word := b.region.ReadWord(w)
		for word != 0 {
			pos := uint64(bits.TrailingZeros64(word))
			rb.Add(w*WordBits + pos)
			word &= word - 1
		}
	}
	return rb
}
