// Package vmstats exposes process runtime statistics to the reporter.
//
// The statistics provider is an explicitly constructed dependency rather
// than a hidden singleton: callers build one (usually NewRuntime) and
// hand it to the reporter, so tests can substitute a stub.
package vmstats

import "time"

// GCStats summarizes one garbage collector: cumulative pause time and the
// number of collections since process start.
type GCStats struct {
	Time time.Duration
	Runs int64
}

// Provider supplies the runtime statistics a report cycle turns into
// "jvm.*" data points. The metric names predate this implementation and
// are kept for dashboard continuity.
type Provider interface {
	// HeapUsage returns heap memory in use as a fraction of heap memory
	// obtained from the OS, in [0, 1].
	HeapUsage() float64

	// NonHeapUsage returns off-heap runtime memory (stacks, runtime
	// structures) in use as a fraction of what is reserved for it.
	NonHeapUsage() float64

	// ThreadCount returns the number of live goroutines.
	ThreadCount() int64

	// DaemonThreadCount returns the number of OS threads created by the
	// process.
	DaemonThreadCount() int64

	// ThreadStates returns per-state counts. The state set is owned by
	// the provider; each entry becomes one jvm.thread-states.<state>
	// data point.
	ThreadStates() map[string]float64

	// GarbageCollectors returns statistics per collector. Each entry
	// becomes a jvm.gc.<name>.time and a jvm.gc.<name>.runs point.
	GarbageCollectors() map[string]GCStats
}
