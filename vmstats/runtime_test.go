package vmstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeUsageRatiosAreFractions(t *testing.T) {
	p := NewRuntime()

	heap := p.HeapUsage()
	assert.GreaterOrEqual(t, heap, 0.0)
	assert.LessOrEqual(t, heap, 1.0)

	nonHeap := p.NonHeapUsage()
	assert.GreaterOrEqual(t, nonHeap, 0.0)
	assert.LessOrEqual(t, nonHeap, 1.0)
}

func TestRuntimeThreadCounts(t *testing.T) {
	p := NewRuntime()

	assert.Greater(t, p.ThreadCount(), int64(0))
	assert.GreaterOrEqual(t, p.DaemonThreadCount(), int64(0))

	states := p.ThreadStates()
	require.Contains(t, states, "live")
	assert.Greater(t, states["live"], 0.0)
}

func TestRuntimeGarbageCollectors(t *testing.T) {
	p := NewRuntime()

	gcs := p.GarbageCollectors()
	require.Contains(t, gcs, "gc")
	assert.GreaterOrEqual(t, gcs["gc"].Runs, int64(0))
	assert.GreaterOrEqual(t, gcs["gc"].Time, time.Duration(0))
}

func TestNopProviderIsAllZero(t *testing.T) {
	p := NopProvider{}

	assert.Zero(t, p.HeapUsage())
	assert.Zero(t, p.NonHeapUsage())
	assert.Zero(t, p.ThreadCount())
	assert.Zero(t, p.DaemonThreadCount())
	assert.Empty(t, p.ThreadStates())
	assert.Empty(t, p.GarbageCollectors())
}
