package mmap

import (
	"os"
	"sync/atomic"
)

// Mapping represents a shared, writable memory mapping.
// It owns the underlying byte slice and, for file mappings, the open file.
type Mapping struct {
	data   []byte
	size   int
	f      *os.File
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// OpenShared maps the file at path read-write with shared semantics.
// The file is created if it does not exist and grown to size bytes if it is
// smaller; existing contents are preserved.
func OpenShared(path string, size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, err
		}
	}

	// Platform-specific mapping
	data, unmapFunc, err := osMapShared(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		f:     f,
		unmap: unmapFunc,
	}, nil
}

// MapAnonShared creates an anonymous read-write mapping that is shared with
// child processes.
func MapAnonShared(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMapAnonShared(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		unmap: unmapFunc,
	}, nil
}

// Close unmaps the memory and closes the backing file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}

	var err error
	if m.unmap != nil && m.data != nil {
		err = m.unmap(m.data)
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// Bytes returns the mapped memory.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Fd returns the descriptor of the backing file, or -1 for anonymous mappings.
func (m *Mapping) Fd() int {
	if m.f == nil {
		return -1
	}
	return int(m.f.Fd())
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.data, pattern)
}

// Sync flushes the mapping to its backing file.
func (m *Mapping) Sync() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.f == nil {
		return nil
	}
	return osSync(m.data)
}
