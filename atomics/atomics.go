package atomics

import (
	"errors"
	"unsafe"
)

// WordBytes is the width of one atomic word in bytes.
const WordBytes = 8

// Flags are provider-specific registration flags.
type Flags uint64

// Provider makes byte buffers eligible for atomic word access.
type Provider interface {
	// RegisterRegion registers buf for atomic access. fd is the descriptor
	// backing buf, or -1 for anonymous memory.
	RegisterRegion(buf []byte, fd int, flags Flags) (Region, error)
}

// Region is a registered buffer viewed as an array of 64-bit words.
//
// Word indices must be below Words(). Implementations are not required to
// check this.
type Region interface {
	// Words returns the number of words in the region.
	Words() uint64

	// ReadWord atomically reads word i.
	ReadWord(i uint64) uint64

	// WriteWord atomically writes v to word i.
	WriteWord(i uint64, v uint64)

	// CompareAndSwapWord atomically installs desired at word i iff the word
	// currently holds expected. It returns the value observed at the time of
	// the attempt: expected on success, the conflicting value on failure.
	CompareAndSwapWord(i uint64, expected, desired uint64) uint64

	// Unregister releases the registration. The region must not be used
	// afterwards.
	Unregister() error
}

var (
	// ErrEmpty is returned when registering a zero-length buffer.
	ErrEmpty = errors.New("atomics: empty buffer")
	// ErrInvalidLength is returned when the buffer length is not a multiple of WordBytes.
	ErrInvalidLength = errors.New("atomics: buffer length is not a multiple of the word size")
	// ErrUnaligned is returned when the buffer does not start on a word boundary.
	ErrUnaligned = errors.New("atomics: buffer is not word aligned")
	// ErrAlreadyRegistered is returned when the buffer overlaps a registered region.
	ErrAlreadyRegistered = errors.New("atomics: buffer overlaps a registered region")
	// ErrNotRegistered is returned when unregistering a region twice.
	ErrNotRegistered = errors.New("atomics: region is not registered")
	// ErrUnsupportedFlags is returned for flags the provider does not understand.
	ErrUnsupportedFlags = errors.New("atomics: unsupported registration flags")
)

// NewBuffer allocates a zeroed, word-aligned buffer of the given number of
// words. The returned slice is backed by a []uint64, so its alignment does not
// depend on the allocator's size classes.
func NewBuffer(words int) []byte {
	if words <= 0 {
		return nil
	}
	backing := make([]uint64, words)
	return unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), words*WordBytes) //nolint:gosec // reinterpreting an owned []uint64
}
