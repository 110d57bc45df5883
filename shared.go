package famalloc

import (
	"fmt"
	"math"

	"github.com/hupe1980/famalloc/internal/mmap"
)

// SharedBuffer is a bitmap buffer backed by a MAP_SHARED file mapping.
// Every process that opens the same path sees the same words, which makes it
// usable with atomics.Local from several processes at once.
//
// The caller owns the buffer: tear down every Bitmap built on it before
// calling Close.
type SharedBuffer struct {
	m *mmap.Mapping
}

// OpenShared opens (creating if needed) the file at path and maps enough of it
// to hold bits bits, rounded up to whole words.
//
// Typical use:
//
//	sb, _ := famalloc.OpenShared("/dev/shm/regions.bitmap", 1<<16)
//	defer sb.Close()
//	bm, _ := famalloc.Attach(atomics.NewLocal(), sb.Bytes(), famalloc.WithFd(sb.Fd()))
func OpenShared(path string, bits uint64) (*SharedBuffer, error) {
	words := (bits + WordBits - 1) / WordBits
	if words == 0 {
		words = 1
	}
	if words > math.MaxInt/WordBytes {
		return nil, fmt.Errorf("%w: %d bits", mmap.ErrInvalidSize, bits)
	}

	m, err := mmap.OpenShared(path, int(words*WordBytes))
	if err != nil {
		return nil, err
	}
	// Bits are claimed at unpredictable positions.
	_ = m.Advise(mmap.AccessRandom)

	return &SharedBuffer{m: m}, nil
}

// Bytes returns the mapped buffer. It is nil after Close.
func (s *SharedBuffer) Bytes() []byte {
	return s.m.Bytes()
}

// Fd returns the descriptor of the backing file.
func (s *SharedBuffer) Fd() int {
	return s.m.Fd()
}

// Sync flushes the buffer to its backing file.
func (s *SharedBuffer) Sync() error {
	return s.m.Sync()
}

// Close unmaps the buffer and closes the file. It is idempotent.
func (s *SharedBuffer) Close() error {
	return s.m.Close()
}
