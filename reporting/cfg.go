package reporting

import (
	"fmt"

	"github.com/omnifone/metrics-cloudwatch/config"
)

var _ config.Config = (*ReporterCfg)(nil)

// DimensionCfg selects a registered dimension provider factory by name.
// Options are passed to the factory as-is.
type DimensionCfg struct {
	Type    string         `mapstructure:"type"`
	Options map[string]any `mapstructure:"options"`
}

// ReporterCfg is the file-backed reporter configuration. It mirrors the
// Enabler options so reporters can be driven from YAML instead of code.
type ReporterCfg struct {
	Namespace     string    `mapstructure:"namespace"`
	PeriodSeconds int       `mapstructure:"periodSeconds"`
	Percentiles   []float64 `mapstructure:"percentiles"`

	SendOneMinuteRate            bool `mapstructure:"sendOneMinuteRate"`
	SendFiveMinuteRate           bool `mapstructure:"sendFiveMinuteRate"`
	SendFifteenMinuteRate        bool `mapstructure:"sendFifteenMinuteRate"`
	SendMeterSummary             bool `mapstructure:"sendMeterSummary"`
	SendTimerLifetimeSummary     bool `mapstructure:"sendTimerLifetimeSummary"`
	SendHistogramLifetimeSummary bool `mapstructure:"sendHistogramLifetimeSummary"`
	SendJVMMemory                bool `mapstructure:"sendJVMMemory"`
	SendJVMThreadState           bool `mapstructure:"sendJVMThreadState"`
	SendJVMGarbageCollection     bool `mapstructure:"sendJVMGarbageCollection"`

	// DryRun disables submission and logs datapoints instead.
	DryRun bool `mapstructure:"dryRun"`

	DurationUnit string `mapstructure:"durationUnit"`
	RateUnit     string `mapstructure:"rateUnit"`

	SubmitsPerSecond int `mapstructure:"submitsPerSecond"`

	Dimensions []DimensionCfg `mapstructure:"dimensions"`
}

// DefaultReporterCfg returns a configuration matching the Enabler
// defaults.
func DefaultReporterCfg() *ReporterCfg {
	return &ReporterCfg{
		PeriodSeconds:     60,
		Percentiles:       []float64{.5, .95, .99},
		SendOneMinuteRate: true,
		SendJVMMemory:     true,
		DurationUnit:      "Milliseconds",
		RateUnit:          "Seconds",
	}
}

// GetName implements config.Config.
func (c *ReporterCfg) GetName() string {
	return "reporter"
}

// Validate implements config.Config.
func (c *ReporterCfg) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("reporter config: namespace must be non-empty")
	}
	if c.PeriodSeconds < 0 {
		return fmt.Errorf("reporter config: periodSeconds must not be negative")
	}
	for _, p := range c.Percentiles {
		if p <= 0 || p >= 1 {
			return fmt.Errorf("reporter config: percentile %v is outside (0, 1)", p)
		}
	}
	if c.SubmitsPerSecond < 0 {
		return fmt.Errorf("reporter config: submitsPerSecond must not be negative")
	}
	for i, d := range c.Dimensions {
		if d.Type == "" {
			return fmt.Errorf("reporter config: dimensions[%d]: type must be non-empty", i)
		}
	}
	return nil
}
