// Package dimension supplies the key/value tags attached to exported
// data points: fixed tags, the EC2 instance id, or Consul node identity.
package dimension

import (
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Filter restricts a provider to metrics whose name it accepts.
type Filter func(metricName string) bool

// FilterAll accepts every metric name.
func FilterAll(string) bool { return true }

// Provider contributes dimensions to data points. Implementations must
// never block a report cycle beyond one bounded network timeout and must
// absorb their own failures (substituting sentinel values) rather than
// returning errors to the reporter.
type Provider interface {
	// Dimensions returns the dimensions for one named metric. Providers
	// with a filter return nil for non-matching names.
	Dimensions(metricName string) []types.Dimension

	// GlobalDimensions returns the dimensions attached to process-wide
	// (runtime statistics) data points, which have no metric name.
	GlobalDimensions() []types.Dimension
}
