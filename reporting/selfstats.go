package reporting

import "github.com/prometheus/client_golang/prometheus"

// selfStats tracks the reporter's own operation. By default each reporter
// registers on a private registry; pass prometheus.DefaultRegisterer to
// the enabler to expose these alongside application metrics.
type selfStats struct {
	datapointsSent prometheus.Counter
	batchesFlushed prometheus.Counter
	batchFailures  prometheus.Counter
	valuesClamped  prometheus.Counter
}

func newSelfStats(reg prometheus.Registerer) *selfStats {
	return &selfStats{
		datapointsSent: registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cloudwatch_reporter",
			Name:      "datapoints_sent_total",
			Help:      "Data points accepted by the ingestion API.",
		})),
		batchesFlushed: registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cloudwatch_reporter",
			Name:      "batches_flushed_total",
			Help:      "Batches submitted successfully.",
		})),
		batchFailures: registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cloudwatch_reporter",
			Name:      "batch_failures_total",
			Help:      "Batch submissions rejected by the ingestion API.",
		})),
		valuesClamped: registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cloudwatch_reporter",
			Name:      "values_clamped_total",
			Help:      "Values clamped into the sendable domain.",
		})),
	}
}

// registerCounter registers c on reg, reusing an already registered
// collector with the same description instead of failing.
func registerCounter(reg prometheus.Registerer, c prometheus.Counter) prometheus.Counter {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}
