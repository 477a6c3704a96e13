package reporting

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rcrowley/go-metrics"
	"go.uber.org/ratelimit"

	"github.com/omnifone/metrics-cloudwatch/dimension"
	"github.com/omnifone/metrics-cloudwatch/log"
	"github.com/omnifone/metrics-cloudwatch/vmstats"
)

// Enabler builds reporters. The ingestion API charges per unique metric,
// so the defaults are parsimonious: median/95th/99th percentiles and the
// one-minute rate only, plus the process memory gauges. Every additional
// statistic is opt-in.
//
// Configuration is frozen at Build; an Enabler may be reused to build
// further reporters.
type Enabler struct {
	namespace string
	putter    MetricPutter

	registry metrics.Registry
	filter   MetricFilter
	vm       vmstats.Provider
	dims     []dimension.Provider
	promReg  prometheus.Registerer

	period time.Duration
	export bool

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
	rateUnit     types.StandardUnit

	submitsPerSecond int
}

// NewEnabler creates an Enabler sending values in the given namespace
// through the given client.
func NewEnabler(namespace string, putter MetricPutter) *Enabler {
	return &Enabler{
		namespace:     namespace,
		putter:        putter,
		registry:      metrics.DefaultRegistry,
		period:        time.Minute,
		export:        true,
		percentiles:   []float64{.5, .95, .99},
		sendOneMinute: true,
		sendJVMMemory: true,
		durationUnit:  types.StandardUnitMilliseconds,
		rateUnit:      types.StandardUnitSeconds,
	}
}

// WithPercentiles replaces the histogram and timer percentiles to send.
// 0.5 is reported as ".median".
func (e *Enabler) WithPercentiles(percentiles ...float64) *Enabler {
	e.percentiles = percentiles
	return e
}

// WithOneMinuteRate toggles the one-minute rate for meters and timers.
// Enabled by default.
func (e *Enabler) WithOneMinuteRate(enabled bool) *Enabler {
	e.sendOneMinute = enabled
	return e
}

// WithFiveMinuteRate toggles the five-minute rate for meters and timers.
// Disabled by default.
func (e *Enabler) WithFiveMinuteRate(enabled bool) *Enabler {
	e.sendFiveMinute = enabled
	return e
}

// WithFifteenMinuteRate toggles the fifteen-minute rate for meters and
// timers. Disabled by default.
func (e *Enabler) WithFifteenMinuteRate(enabled bool) *Enabler {
	e.sendFifteenMinute = enabled
	return e
}

// WithMeterSummary toggles the lifetime count and mean rate for meters
// and timers. Disabled by default.
func (e *Enabler) WithMeterSummary(enabled bool) *Enabler {
	e.sendMeterSummary = enabled
	return e
}

// WithTimerSummary toggles the lifetime min/max/mean/stddev for timers.
// Disabled by default.
func (e *Enabler) WithTimerSummary(enabled bool) *Enabler {
	e.sendTimerLifetime = enabled
	return e
}

// WithHistogramSummary toggles the lifetime min/max/mean/stddev for
// histograms. Disabled by default.
func (e *Enabler) WithHistogramSummary(enabled bool) *Enabler {
	e.sendHistoLifetime = enabled
	return e
}

// WithJVMMemory toggles the heap and non-heap usage points. Enabled by
// default.
func (e *Enabler) WithJVMMemory(enabled bool) *Enabler {
	e.sendJVMMemory = enabled
	return e
}

// WithJVMThreadState toggles the thread count and state points. Disabled
// by default.
func (e *Enabler) WithJVMThreadState(enabled bool) *Enabler {
	e.sendJVMThreads = enabled
	return e
}

// WithJVMGC toggles the garbage collection points. Disabled by default.
func (e *Enabler) WithJVMGC(enabled bool) *Enabler {
	e.sendJVMGC = enabled
	return e
}

// WithRegistry selects the registry metrics are pulled from. Defaults to
// metrics.DefaultRegistry.
func (e *Enabler) WithRegistry(registry metrics.Registry) *Enabler {
	e.registry = registry
	return e
}

// WithFilter restricts reporting to metrics matching the filter.
func (e *Enabler) WithFilter(filter MetricFilter) *Enabler {
	e.filter = filter
	return e
}

// WithDelay sets the period used by Enable. Defaults to one minute.
func (e *Enabler) WithDelay(period time.Duration) *Enabler {
	e.period = period
	return e
}

// WithVMStats selects the runtime statistics provider. Defaults to the
// Go-runtime-backed provider.
func (e *Enabler) WithVMStats(provider vmstats.Provider) *Enabler {
	e.vm = provider
	return e
}

// WithEC2InstanceIDDimension adds an InstanceId dimension to every
// metric, resolved lazily from the EC2 metadata service. Outside EC2 the
// value "unknown" is sent; use WithInstanceIDDimension there instead.
func (e *Enabler) WithEC2InstanceIDDimension() *Enabler {
	return e.WithDimensionProvider(dimension.NewInstanceID(nil))
}

// WithInstanceIDDimension adds an InstanceId dimension with a fixed
// value to every metric, bypassing the metadata lookup.
func (e *Enabler) WithInstanceIDDimension(instanceID string) *Enabler {
	return e.WithDimensionProvider(dimension.NewFixedInstanceID(instanceID, nil))
}

// WithDimensionProvider runs the given provider on every sent metric.
// A datapoint carries at most ten dimensions across all providers.
func (e *Enabler) WithDimensionProvider(provider dimension.Provider) *Enabler {
	e.dims = append(e.dims, provider)
	return e
}

// WithCloudWatchEnabled toggles actual submission. When disabled the
// points that would be sent are logged instead, which is useful to
// verify output before incurring the ingestion charges.
func (e *Enabler) WithCloudWatchEnabled(enabled bool) *Enabler {
	e.export = enabled
	return e
}

// WithDurationUnit sets the unit timer durations are converted to before
// sending. Defaults to milliseconds.
func (e *Enabler) WithDurationUnit(unit types.StandardUnit) *Enabler {
	e.durationUnit = unit
	return e
}

// WithRateUnit sets the advertised rate time base. Defaults to seconds.
func (e *Enabler) WithRateUnit(unit types.StandardUnit) *Enabler {
	e.rateUnit = unit
	return e
}

// WithSubmitRatePerSecond paces batch submissions to at most n per
// second. Zero (the default) disables pacing.
func (e *Enabler) WithSubmitRatePerSecond(n int) *Enabler {
	e.submitsPerSecond = n
	return e
}

// WithPrometheusRegisterer selects where the reporter registers its own
// operational counters. Defaults to a private registry.
func (e *Enabler) WithPrometheusRegisterer(reg prometheus.Registerer) *Enabler {
	e.promReg = reg
	return e
}

// WithConfig applies a loaded ReporterCfg onto the enabler. Options
// absent from the configuration keep their current values; dimension
// provider sections are instantiated through the factory registry.
func (e *Enabler) WithConfig(cfg *ReporterCfg) (*Enabler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Namespace != "" {
		e.namespace = cfg.Namespace
	}
	if cfg.PeriodSeconds > 0 {
		e.period = time.Duration(cfg.PeriodSeconds) * time.Second
	}
	if len(cfg.Percentiles) > 0 {
		e.percentiles = cfg.Percentiles
	}
	e.sendOneMinute = cfg.SendOneMinuteRate
	e.sendFiveMinute = cfg.SendFiveMinuteRate
	e.sendFifteenMinute = cfg.SendFifteenMinuteRate
	e.sendMeterSummary = cfg.SendMeterSummary
	e.sendTimerLifetime = cfg.SendTimerLifetimeSummary
	e.sendHistoLifetime = cfg.SendHistogramLifetimeSummary
	e.sendJVMMemory = cfg.SendJVMMemory
	e.sendJVMThreads = cfg.SendJVMThreadState
	e.sendJVMGC = cfg.SendJVMGarbageCollection
	e.export = !cfg.DryRun
	e.submitsPerSecond = cfg.SubmitsPerSecond

	if cfg.DurationUnit != "" {
		unit, err := parseStandardUnit(cfg.DurationUnit)
		if err != nil {
			return nil, fmt.Errorf("durationUnit: %w", err)
		}
		e.durationUnit = unit
	}
	if cfg.RateUnit != "" {
		unit, err := parseStandardUnit(cfg.RateUnit)
		if err != nil {
			return nil, fmt.Errorf("rateUnit: %w", err)
		}
		e.rateUnit = unit
	}

	for _, dc := range cfg.Dimensions {
		provider, err := dimension.NewProvider(dc.Type, dc.Options)
		if err != nil {
			return nil, fmt.Errorf("dimension provider %q: %w", dc.Type, err)
		}
		e.dims = append(e.dims, provider)
	}

	return e, nil
}

// Build creates an immutable reporter with the settings currently
// configured on this enabler.
func (e *Enabler) Build() (*Reporter, error) {
	if e.namespace == "" {
		return nil, fmt.Errorf("namespace must be non-empty")
	}
	if e.putter == nil && e.export {
		return nil, fmt.Errorf("an ingestion client is required unless export is disabled")
	}
	durationDur, ok := standardUnitDuration(e.durationUnit)
	if !ok {
		return nil, fmt.Errorf("duration unit %q is not a time unit", e.durationUnit)
	}
	for _, p := range e.percentiles {
		if p <= 0 || p >= 1 {
			return nil, fmt.Errorf("percentile %v is outside (0, 1)", p)
		}
	}

	vm := e.vm
	if vm == nil {
		vm = vmstats.NewRuntime()
	}
	promReg := e.promReg
	if promReg == nil {
		promReg = prometheus.NewRegistry()
	}
	var limiter ratelimit.Limiter
	if e.submitsPerSecond > 0 {
		limiter = ratelimit.New(e.submitsPerSecond)
	}

	stats := newSelfStats(promReg)
	r := &Reporter{
		registry:          e.registry,
		filter:            e.filter,
		namespace:         e.namespace,
		percentiles:       append([]float64(nil), e.percentiles...),
		sendOneMinute:     e.sendOneMinute,
		sendFiveMinute:    e.sendFiveMinute,
		sendFifteenMinute: e.sendFifteenMinute,
		sendMeterSummary:  e.sendMeterSummary,
		sendTimerLifetime: e.sendTimerLifetime,
		sendHistoLifetime: e.sendHistoLifetime,
		sendJVMMemory:     e.sendJVMMemory,
		sendJVMThreads:    e.sendJVMThreads,
		sendJVMGC:         e.sendJVMGC,
		durationUnit:      e.durationUnit,
		durationDur:       durationDur,
		rateUnit:          e.rateUnit,
		vm:                vm,
		dims:              append([]dimension.Provider(nil), e.dims...),
		stats:             stats,
		batch:             newAccumulator(e.namespace, e.putter, e.export, limiter, stats),
		unsendable:        make(map[string]bool),
	}
	return r, nil
}

// Enable builds a reporter and starts it at the configured period.
// Errors are logged rather than returned, so a metrics misconfiguration
// never prevents application startup.
func (e *Enabler) Enable() {
	r, err := e.Build()
	if err != nil {
		log.Error().Err(err).Msg("error creating/starting the cloudwatch reporter")
		return
	}
	r.Start(e.period)
}
