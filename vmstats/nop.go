package vmstats

// NopProvider reports zero for everything. Useful as a placeholder when
// runtime statistics are disabled and as a base for test stubs.
type NopProvider struct{}

func (NopProvider) HeapUsage() float64                    { return 0 }
func (NopProvider) NonHeapUsage() float64                 { return 0 }
func (NopProvider) ThreadCount() int64                    { return 0 }
func (NopProvider) DaemonThreadCount() int64              { return 0 }
func (NopProvider) ThreadStates() map[string]float64      { return nil }
func (NopProvider) GarbageCollectors() map[string]GCStats { return nil }
