// Package famalloc provides a lock-free free/used bitmap for allocating units
// of fabric-attached memory.
//
// A Bitmap tracks allocation units inside a buffer that several independent
// processes may map and mutate at the same time. There is no shared lock:
// every bit transition is a compare-and-swap on the 64-bit word holding the
// bit, issued through an atomics.Provider, and a reservation that loses a race
// for its bit fails instead of retrying.
//
// # Quick Start
//
//	provider := atomics.NewLocal()
//	buf := atomics.NewBuffer(16) // 16 words = 1024 allocation units
//
//	bm, err := famalloc.New(provider, buf)
//	if err != nil { ... }
//	defer bm.Teardown()
//
//	// Claim the next free unit.
//	unit, ok := bm.FindAndReserve(false, 0)
//	if !ok {
//	    // bitmap is full
//	}
//
//	// Give it back.
//	_ = bm.Reserve(true, unit)
//
// # Reservations
//
// Reserve(expected, n) flips bit n from expected to !expected. If bit n holds
// anything else, either before the swap or in the word observed by a failed
// swap, Reserve returns ErrConflict: another caller won that bit. Swaps that
// fail only because a different bit of the same word changed are retried, so
// neighbours never cause each other to fail.
//
// Set and Reset drive a bit to 1 or 0 unconditionally and cannot conflict.
//
// # Scans
//
// Find returns a candidate without claiming it; the bit may be taken before
// the caller acts. FindAndReserve combines the scan with Reserve and moves on
// to the next candidate whenever a reservation conflicts.
//
// # Sharing Between Processes
//
// The buffer layout is an array of native-endian 64-bit words, bit 0 being the
// least significant bit of word 0. OpenShared maps a file with MAP_SHARED;
// one process initializes it with New and the others join with Attach.
//
// # Lifecycle
//
// New registers the buffer with the provider and clears it; Teardown
// unregisters it. The buffer itself always belongs to the caller.
package famalloc
