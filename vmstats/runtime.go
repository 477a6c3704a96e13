package vmstats

import (
	"runtime"
	"runtime/pprof"
	"time"
)

// runtimeProvider reads the Go runtime's memory and scheduler statistics.
type runtimeProvider struct{}

// NewRuntime creates a Provider backed by the Go runtime. The provider is
// stateless; sharing one instance per process is conventional but not
// required.
func NewRuntime() Provider {
	return runtimeProvider{}
}

func (runtimeProvider) HeapUsage() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return ratio(m.HeapInuse, m.HeapSys)
}

func (runtimeProvider) NonHeapUsage() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	inuse := m.StackInuse + m.MSpanInuse + m.MCacheInuse
	sys := m.StackSys + m.MSpanSys + m.MCacheSys
	return ratio(inuse, sys)
}

func (runtimeProvider) ThreadCount() int64 {
	return int64(runtime.NumGoroutine())
}

func (runtimeProvider) DaemonThreadCount() int64 {
	if p := pprof.Lookup("threadcreate"); p != nil {
		return int64(p.Count())
	}
	return 0
}

// ThreadStates reports goroutine counts. The Go scheduler does not expose
// per-state counts cheaply, so a single "live" bucket is reported.
func (p runtimeProvider) ThreadStates() map[string]float64 {
	return map[string]float64{
		"live": float64(runtime.NumGoroutine()),
	}
}

func (runtimeProvider) GarbageCollectors() map[string]GCStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return map[string]GCStats{
		"gc": {
			Time: time.Duration(m.PauseTotalNs),
			Runs: int64(m.NumGC),
		},
	}
}

func ratio(inuse, sys uint64) float64 {
	if sys == 0 {
		return 0
	}
	return float64(inuse) / float64(sys)
}
