// Package reporting batches application metrics into CloudWatch data
// points: it snapshots a go-metrics registry, shapes each metric kind
// into its configured derived statistics, clamps values into the
// ingestion API's accepted domain and submits them in batches of at most
// twenty.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rcrowley/go-metrics"

	"github.com/omnifone/metrics-cloudwatch/dimension"
	"github.com/omnifone/metrics-cloudwatch/log"
	"github.com/omnifone/metrics-cloudwatch/vmstats"
)

// maxDimensions is the ingestion API's per-datum dimension ceiling.
const maxDimensions = 10

// Reporter translates one registry snapshot per cycle into data points
// and submits them. Build one through an Enabler; its configuration is
// frozen at build time. Cycles are serialized internally, so a Reporter
// is safe to trigger from any goroutine.
type Reporter struct {
	mu sync.Mutex

	registry metrics.Registry
	filter   MetricFilter

	namespace string

	percentiles       []float64
	sendOneMinute     bool
	sendFiveMinute    bool
	sendFifteenMinute bool
	sendMeterSummary  bool
	sendTimerLifetime bool
	sendHistoLifetime bool
	sendJVMMemory     bool
	sendJVMThreads    bool
	sendJVMGC         bool

	durationUnit types.StandardUnit
	durationDur  time.Duration
	rateUnit     types.StandardUnit

	vm    vmstats.Provider
	dims  []dimension.Provider
	stats *selfStats
	batch *accumulator
	san   sanitizer

	// unsendable latches the warn-once per non-numeric registry entry.
	unsendable map[string]bool
	dimsWarned bool

	started bool
	stopCh  chan struct{}
}

// families is the per-cycle snapshot of the registry, partitioned by
// metric kind.
type families struct {
	gauges     map[string]gaugeSample
	counters   map[string]int64
	histograms map[string]metrics.Histogram
	meters     map[string]metrics.Meter
	timers     map[string]metrics.Timer
}

// Report runs one full report cycle: runtime statistics first, then the
// five metric families in fixed order, each in ascending name order, then
// a final flush. A failed cycle is logged and the error returned; the
// batch is discarded either way, so the next cycle starts clean.
func (r *Reporter) Report() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()
	ts := time.Now()
	fams := r.collect()

	err := r.runCycle(ctx, ts, fams)
	r.batch.reset()
	if err != nil {
		log.Warn().Err(err).Msg("report cycle failed; this cycle's remaining datapoints were dropped")
	}
	return err
}

// Start triggers a report cycle every period until Stop is called.
func (r *Reporter) Start(period time.Duration) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = r.Report()
			case <-stopCh:
				return
			}
		}
	}()
}

// Stop halts the periodic reporting started by Start.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	r.started = false
	close(r.stopCh)
}

// collect snapshots the registry into the five families. Snapshots are
// taken once, at the start of the cycle.
func (r *Reporter) collect() *families {
	f := &families{
		gauges:     make(map[string]gaugeSample),
		counters:   make(map[string]int64),
		histograms: make(map[string]metrics.Histogram),
		meters:     make(map[string]metrics.Meter),
		timers:     make(map[string]metrics.Timer),
	}
	r.registry.Each(func(name string, i interface{}) {
		if r.filter != nil && !r.filter(name) {
			return
		}
		switch m := i.(type) {
		case metrics.Gauge:
			f.gauges[name] = gaugeSample{value: float64(m.Snapshot().Value()), numeric: true}
		case metrics.GaugeFloat64:
			f.gauges[name] = gaugeSample{value: m.Snapshot().Value(), numeric: true}
		case metrics.Counter:
			f.counters[name] = m.Snapshot().Count()
		case metrics.Histogram:
			f.histograms[name] = m.Snapshot()
		case metrics.Meter:
			f.meters[name] = m.Snapshot()
		case metrics.Timer:
			f.timers[name] = m.Snapshot()
		default:
			f.gauges[name] = gaugeSample{numeric: false, typeName: fmt.Sprintf("%T", i)}
		}
	})
	return f
}

// runCycle performs steps 2-4 of a cycle. Only batch submission errors
// propagate; per-metric failures are absorbed by guard, and a panic
// anywhere in the cycle is converted to an error here.
func (r *Reporter) runCycle(ctx context.Context, ts time.Time, fams *families) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("report cycle panicked: %v", rec)
		}
	}()

	if err := r.sendVMStats(ctx, ts); err != nil {
		return err
	}

	for _, name := range sortedNames(fams.gauges) {
		g := fams.gauges[name]
		if err := r.guard(name, func() error { return r.processGauge(ctx, ts, name, g) }); err != nil {
			return err
		}
	}
	for _, name := range sortedNames(fams.counters) {
		count := fams.counters[name]
		if err := r.guard(name, func() error { return r.processCounter(ctx, ts, name, count) }); err != nil {
			return err
		}
	}
	for _, name := range sortedNames(fams.histograms) {
		h := fams.histograms[name]
		if err := r.guard(name, func() error { return r.processHistogram(ctx, ts, name, h) }); err != nil {
			return err
		}
	}
	for _, name := range sortedNames(fams.meters) {
		m := fams.meters[name]
		if err := r.guard(name, func() error { return r.processMeter(ctx, ts, name, m) }); err != nil {
			return err
		}
	}
	for _, name := range sortedNames(fams.timers) {
		t := fams.timers[name]
		if err := r.guard(name, func() error { return r.processTimer(ctx, ts, name, t) }); err != nil {
			return err
		}
	}

	return r.batch.flush(ctx)
}

// guard runs the translation of one metric. A panic is logged and the
// metric contributes zero points this cycle; a returned error (batch
// submission failure) propagates and aborts the cycle.
func (r *Reporter) guard(name string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("metric", name).Any("panic", rec).
				Msg("error translating metric; it contributes no datapoints this cycle")
			err = nil
		}
	}()
	return fn()
}

func (r *Reporter) processHistogram(ctx context.Context, ts time.Time, name string, h metrics.Histogram) error {
	return r.processDistribution(ctx, ts, name, distValues{
		min:        float64(h.Min()),
		max:        float64(h.Max()),
		mean:       h.Mean(),
		stddev:     h.StdDev(),
		percentile: h.Percentile,
	}, types.StandardUnitNone, identity, r.sendHistoLifetime, r.dimensionsFor(name))
}

func (r *Reporter) processMeter(ctx context.Context, ts time.Time, name string, m metrics.Meter) error {
	return r.processMetered(ctx, ts, name, meteredValues{
		count:    m.Count(),
		rate1:    m.Rate1(),
		rate5:    m.Rate5(),
		rate15:   m.Rate15(),
		rateMean: m.RateMean(),
	}, r.dimensionsFor(name))
}

// processTimer applies the metered rules first, then the histogram rules
// with every duration converted into the configured duration unit.
func (r *Reporter) processTimer(ctx context.Context, ts time.Time, name string, t metrics.Timer) error {
	if err := r.processMetered(ctx, ts, name, meteredValues{
		count:    t.Count(),
		rate1:    t.Rate1(),
		rate5:    t.Rate5(),
		rate15:   t.Rate15(),
		rateMean: t.RateMean(),
	}, r.dimensionsFor(name)); err != nil {
		return err
	}

	return r.processDistribution(ctx, ts, name, distValues{
		min:        float64(t.Min()),
		max:        float64(t.Max()),
		mean:       t.Mean(),
		stddev:     t.StdDev(),
		percentile: t.Percentile,
	}, r.durationUnit, r.toDuration, r.sendTimerLifetime, r.dimensionsFor(name))
}

// sendVMStats emits the runtime statistic points enabled by
// configuration. Global dimensions are computed once per cycle, which
// also drives the lazy providers' resolution attempts.
func (r *Reporter) sendVMStats(ctx context.Context, ts time.Time) error {
	dims := r.globalDimensions()

	if r.sendJVMMemory {
		if err := r.sendValue(ctx, ts, "jvm.memory.heap_usage", r.vm.HeapUsage(), types.StandardUnitPercent, dims); err != nil {
			return err
		}
		if err := r.sendValue(ctx, ts, "jvm.memory.non_heap_usage", r.vm.NonHeapUsage(), types.StandardUnitPercent, dims); err != nil {
			return err
		}
	}

	if r.sendJVMThreads {
		if err := r.sendValue(ctx, ts, "jvm.thread_count", float64(r.vm.ThreadCount()), types.StandardUnitCount, dims); err != nil {
			return err
		}
		if err := r.sendValue(ctx, ts, "jvm.daemon_thread_count", float64(r.vm.DaemonThreadCount()), types.StandardUnitCount, dims); err != nil {
			return err
		}
		states := r.vm.ThreadStates()
		for _, state := range sortedNames(states) {
			if err := r.sendValue(ctx, ts, "jvm.thread-states."+state, states[state], types.StandardUnitCount, dims); err != nil {
				return err
			}
		}
	}

	if r.sendJVMGC {
		collectors := r.vm.GarbageCollectors()
		for _, name := range sortedNames(collectors) {
			gc := collectors[name]
			elapsed := convertDuration(float64(gc.Time.Milliseconds()), time.Millisecond, r.durationDur)
			if err := r.sendValue(ctx, ts, "jvm.gc."+name+".time", elapsed, r.durationUnit, dims); err != nil {
				return err
			}
			if err := r.sendValue(ctx, ts, "jvm.gc."+name+".runs", float64(gc.Runs), types.StandardUnitCount, dims); err != nil {
				return err
			}
		}
	}

	return nil
}

// dimensionsFor collects the dimensions for one named metric from every
// provider, in registration order. The slice is freshly allocated per
// call since translation may extend it.
func (r *Reporter) dimensionsFor(name string) []types.Dimension {
	var out []types.Dimension
	for _, p := range r.dims {
		out = append(out, p.Dimensions(name)...)
	}
	return out
}

// globalDimensions collects the dimensions for runtime statistic points.
func (r *Reporter) globalDimensions() []types.Dimension {
	var out []types.Dimension
	for _, p := range r.dims {
		out = append(out, p.GlobalDimensions()...)
	}
	return out
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
