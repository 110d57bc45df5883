// Package mmap provides shared, writable memory mappings for bitmap buffers.
//
// # Overview
//
// A bitmap that several processes allocate from has to live in memory they
// can all reach. OpenShared maps a file with MAP_SHARED so that every process
// mapping the same path sees the same bytes; MapAnonShared does the same for
// memory inherited across fork.
//
// # Usage
//
//	m, err := mmap.OpenShared("/dev/shm/pool.bitmap", 4096)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // page aligned, len 4096
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2) and madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile, FlushViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// no goroutine touches Bytes() after Close returns.
package mmap
