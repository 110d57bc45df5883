// Package atomics defines the word-atomics interface that famalloc bitmaps
// are built on, together with Local, an in-process implementation.
//
// # Model
//
// A Provider registers a byte buffer for atomic access and hands back a
// Region. All further access to the buffer goes through the Region, which
// addresses the buffer as an array of 64-bit words:
//
//	region, err := atomics.NewLocal().RegisterRegion(buf, -1, 0)
//	if err != nil { ... }
//	defer region.Unregister()
//
//	old := region.ReadWord(3)
//	observed := region.CompareAndSwapWord(3, old, old|1)
//	if observed != old {
//		// someone else changed word 3 first; observed is its value
//	}
//
// CompareAndSwapWord returns the value it observed instead of a bool. That is
// what lets callers retry a failed swap without issuing a second read.
//
// # Providers
//
// Local serves buffers in the caller's address space using sync/atomic. The
// buffer may be ordinary Go memory or a MAP_SHARED file mapping, in which case
// every process that maps the file and registers it with its own Local sees
// the same words. Fabric providers that reach remote memory implement the
// same two interfaces.
package atomics
