package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/omnifone/metrics-cloudwatch/log"
)

// The wire format has no native rate unit, so rates are exported with
// unit None and the semantics carried in an extra meterUnit dimension.
// The event type and time base are fixed.
const meterUnitValue = "calls/second"

// gaugeSample is a registry entry collected into the gauge family.
// Entries of unknown type are carried with numeric=false so the warn-once
// bookkeeping happens during translation, in name order.
type gaugeSample struct {
	value    float64
	numeric  bool
	typeName string
}

// meteredValues is the rate portion of a meter or timer snapshot.
type meteredValues struct {
	count                          int64
	rate1, rate5, rate15, rateMean float64
}

// distValues is the statistical portion of a histogram or timer
// snapshot.
type distValues struct {
	min, max, mean, stddev float64
	percentile             func(p float64) float64
}

func (r *Reporter) processGauge(ctx context.Context, ts time.Time, name string, g gaugeSample) error {
	if !g.numeric {
		if !r.unsendable[name] {
			r.unsendable[name] = true
			log.Warn().Str("metric", name).Str("type", g.typeName).
				Msg("registry entry is not a numeric metric and will not be reported")
		}
		return nil
	}
	return r.sendValue(ctx, ts, name, g.value, types.StandardUnitNone, r.dimensionsFor(name))
}

func (r *Reporter) processCounter(ctx context.Context, ts time.Time, name string, count int64) error {
	return r.sendValue(ctx, ts, name, float64(count), types.StandardUnitCount, r.dimensionsFor(name))
}

// processMetered emits the configured rate points. The raw count is not
// itself a rate, so it is emitted before the meterUnit dimension is
// attached.
func (r *Reporter) processMetered(ctx context.Context, ts time.Time, name string, m meteredValues, dims []types.Dimension) error {
	if r.sendMeterSummary {
		if err := r.sendValue(ctx, ts, name+".count", float64(m.count), types.StandardUnitCount, dims); err != nil {
			return err
		}
	}

	rateDims := make([]types.Dimension, 0, len(dims)+1)
	rateDims = append(rateDims, dims...)
	rateDims = append(rateDims, types.Dimension{
		Name:  aws.String("meterUnit"),
		Value: aws.String(meterUnitValue),
	})

	if r.sendOneMinute {
		if err := r.sendValue(ctx, ts, name+".1MinuteRate", m.rate1, types.StandardUnitNone, rateDims); err != nil {
			return err
		}
	}
	if r.sendFiveMinute {
		if err := r.sendValue(ctx, ts, name+".5MinuteRate", m.rate5, types.StandardUnitNone, rateDims); err != nil {
			return err
		}
	}
	if r.sendFifteenMinute {
		if err := r.sendValue(ctx, ts, name+".15MinuteRate", m.rate15, types.StandardUnitNone, rateDims); err != nil {
			return err
		}
	}
	if r.sendMeterSummary {
		if err := r.sendValue(ctx, ts, name+".meanRate", m.rateMean, types.StandardUnitNone, rateDims); err != nil {
			return err
		}
	}
	return nil
}

// processDistribution emits the configured percentile points and, when
// lifetime is set, the min/max/mean/stddev summary. conv converts each
// raw snapshot value into the target unit.
func (r *Reporter) processDistribution(ctx context.Context, ts time.Time, name string, d distValues, unit types.StandardUnit, conv func(float64) float64, lifetime bool, dims []types.Dimension) error {
	for _, p := range r.percentiles {
		pointName := name + ".median"
		if p != 0.5 {
			pointName = fmt.Sprintf("%s_percentile_%v", name, p)
		}
		if err := r.sendValue(ctx, ts, pointName, conv(d.percentile(p)), unit, dims); err != nil {
			return err
		}
	}
	if !lifetime {
		return nil
	}
	if err := r.sendValue(ctx, ts, name+".min", conv(d.min), unit, dims); err != nil {
		return err
	}
	if err := r.sendValue(ctx, ts, name+".max", conv(d.max), unit, dims); err != nil {
		return err
	}
	if err := r.sendValue(ctx, ts, name+".mean", conv(d.mean), unit, dims); err != nil {
		return err
	}
	return r.sendValue(ctx, ts, name+".stddev", conv(d.stddev), unit, dims)
}

func identity(v float64) float64 { return v }

// toDuration converts a raw timer value (recorded in nanoseconds) into
// the configured duration unit.
func (r *Reporter) toDuration(v float64) float64 {
	return convertDuration(v, timerRecordingUnit, r.durationDur)
}

// sendValue sanitizes one value, caps its dimensions and hands the
// resulting data point to the accumulator.
func (r *Reporter) sendValue(ctx context.Context, ts time.Time, name string, value float64, unit types.StandardUnit, dims []types.Dimension) error {
	sanitized := r.san.sanitize(name, value)
	if sanitized != value {
		r.stats.valuesClamped.Inc()
	}

	if len(dims) > maxDimensions {
		if !r.dimsWarned {
			r.dimsWarned = true
			log.Warn().Str("metric", name).Int("dimensions", len(dims)).
				Msgf("a datapoint may carry at most %d dimensions; extra dimensions are dropped", maxDimensions)
		}
		dims = dims[:maxDimensions]
	}

	return r.batch.add(ctx, DataPoint{
		Name:       name,
		Timestamp:  ts,
		Value:      sanitized,
		Unit:       unit,
		Dimensions: dims,
	})
}
