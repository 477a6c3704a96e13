package reporting

import (
	"math"

	"github.com/omnifone/metrics-cloudwatch/log"
)

// The ingestion API documents wider acceptance bounds than it enforces;
// these values were derived empirically against CloudWatch. They are
// variables, not constants: a different ingestion backend can re-point
// them before building a reporter.
var (
	// SmallestSendable is the smallest non-zero magnitude the ingestion
	// API accepts. Smaller magnitudes are clamped up to it.
	SmallestSendable = 1e-108

	// LargestSendable is the largest magnitude the ingestion API
	// accepts. Larger magnitudes are clamped down to it.
	LargestSendable = 1e108
)

// sanitizer clamps values into the sendable domain. Each clamp direction
// logs once per sanitizer lifetime; the latches never reset.
type sanitizer struct {
	loggedTooSmall bool
	loggedTooLarge bool
}

// sanitize returns value clamped into the sendable domain, preserving
// sign. Exact zero passes through untouched.
func (s *sanitizer) sanitize(name string, value float64) float64 {
	absValue := math.Abs(value)
	if absValue == 0 {
		return value
	}
	if absValue < SmallestSendable {
		value = math.Copysign(SmallestSendable, value)
		if !s.loggedTooSmall {
			s.loggedTooSmall = true
			log.Debug().Str("metric", name).Float64("clampedTo", value).
				Msg("value is smaller than the ingestion API supports; trimming. Further small values won't be logged")
		}
	} else if absValue > LargestSendable {
		value = math.Copysign(LargestSendable, value)
		if !s.loggedTooLarge {
			s.loggedTooLarge = true
			log.Debug().Str("metric", name).Float64("clampedTo", value).
				Msg("value is larger than the ingestion API supports; trimming. Further large values won't be logged")
		}
	}
	return value
}
