package famalloc

import (
	"sync/atomic"
)

// MetricsCollector defines an interface for collecting allocator metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Collectors are called on the hot path of every reservation and scan, so
// implementations should not block.
type MetricsCollector interface {
	// RecordReserve is called after each Reserve attempt, including the
	// per-candidate attempts made by FindAndReserve.
	RecordReserve(conflict bool)

	// RecordCASRetry is called each time a compare-and-swap on a bitmap word
	// fails because a different bit of the same word changed.
	RecordCASRetry()

	// RecordScan is called after each Find or FindAndReserve.
	// examined is the number of bit positions the scan moved across.
	RecordScan(examined uint64, found bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordReserve(bool)       {}
func (NoopMetricsCollector) RecordCASRetry()          {}
func (NoopMetricsCollector) RecordScan(uint64, bool) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReserveCount     atomic.Int64
	ReserveConflicts atomic.Int64
	CASRetries       atomic.Int64
	ScanCount        atomic.Int64
	ScanMisses       atomic.Int64
	ScanExamined     atomic.Uint64
}

// RecordReserve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReserve(conflict bool) {
	b.ReserveCount.Add(1)
	if conflict {
		b.ReserveConflicts.Add(1)
	}
}

// RecordCASRetry implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCASRetry() {
	b.CASRetries.Add(1)
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(examined uint64, found bool) {
	b.ScanCount.Add(1)
	b.ScanExamined.Add(examined)
	if !found {
		b.ScanMisses.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReserveCount:     b.ReserveCount.Load(),
		ReserveConflicts: b.ReserveConflicts.Load(),
		CASRetries:       b.CASRetries.Load(),
		ScanCount:        b.ScanCount.Load(),
		ScanMisses:       b.ScanMisses.Load(),
		ScanExamined:     b.ScanExamined.Load(),
	}
}

// BasicMetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	ReserveCount     int64
	ReserveConflicts int64
	CASRetries       int64
	ScanCount        int64
	ScanMisses       int64
	ScanExamined     uint64
}

// ConflictRate returns the fraction of reservations that hit a conflict.
func (s BasicMetricsStats) ConflictRate() float64 {
	if s.ReserveCount == 0 {
		return 0
	}
	return float64(s.ReserveConflicts) / float64(s.ReserveCount)
}
