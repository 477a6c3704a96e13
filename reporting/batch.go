package reporting

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/ratelimit"

	"github.com/omnifone/metrics-cloudwatch/log"
)

// maxBatchSize is the ingestion API's per-request datum ceiling.
const maxBatchSize = 20

// MetricPutter is the submit seam to the ingestion API. The AWS SDK's
// *cloudwatch.Client satisfies it.
type MetricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// accumulator buffers data points for one report cycle and flushes them
// in batches of at most maxBatchSize. It is cycle-scoped state guarded by
// the reporter's cycle lock.
type accumulator struct {
	namespace string
	putter    MetricPutter
	export    bool
	limiter   ratelimit.Limiter
	stats     *selfStats
	points    []DataPoint
}

func newAccumulator(namespace string, putter MetricPutter, export bool, limiter ratelimit.Limiter, stats *selfStats) *accumulator {
	return &accumulator{
		namespace: namespace,
		putter:    putter,
		export:    export,
		limiter:   limiter,
		stats:     stats,
		points:    make([]DataPoint, 0, maxBatchSize),
	}
}

// add appends a point and flushes immediately once the batch is full.
func (b *accumulator) add(ctx context.Context, p DataPoint) error {
	b.points = append(b.points, p)
	if len(b.points) >= maxBatchSize {
		return b.flush(ctx)
	}
	return nil
}

// flush submits the buffered points. The buffer is reset whether the
// submission succeeds or fails: a rejected batch indicates bad data and
// is never retried. In dry-run mode the points are logged instead.
func (b *accumulator) flush(ctx context.Context) error {
	if len(b.points) == 0 {
		return nil
	}
	defer b.reset()

	if !b.export {
		for _, p := range b.points {
			log.Info().Str("metric", p.Name).Float64("value", p.Value).
				Str("unit", string(p.Unit)).Int("dimensions", len(p.Dimensions)).
				Msg("export disabled, not sending")
		}
		return nil
	}

	if b.limiter != nil {
		b.limiter.Take()
	}

	data := make([]types.MetricDatum, len(b.points))
	for i, p := range b.points {
		data[i] = p.datum()
	}
	_, err := b.putter.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(b.namespace),
		MetricData: data,
	})
	if err != nil {
		b.stats.batchFailures.Inc()
		for _, p := range b.points {
			log.Warn().Str("metric", p.Name).Float64("value", p.Value).
				Str("unit", string(p.Unit)).Msg("datapoint in failed batch")
		}
		return fmt.Errorf("put metric data (%d points): %w", len(data), err)
	}

	b.stats.batchesFlushed.Inc()
	b.stats.datapointsSent.Add(float64(len(data)))
	return nil
}

// reset discards any buffered points.
func (b *accumulator) reset() {
	b.points = b.points[:0]
}
