package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// timerRecordingUnit is the unit timers record durations in.
const timerRecordingUnit = time.Nanosecond

// standardUnitDuration maps a CloudWatch time unit to its duration.
func standardUnitDuration(u types.StandardUnit) (time.Duration, bool) {
	switch u {
	case types.StandardUnitMicroseconds:
		return time.Microsecond, true
	case types.StandardUnitMilliseconds:
		return time.Millisecond, true
	case types.StandardUnitSeconds:
		return time.Second, true
	}
	return 0, false
}

// parseStandardUnit resolves a configuration string ("Seconds",
// "Milliseconds", "Microseconds", case-insensitive) to its unit enum.
func parseStandardUnit(s string) (types.StandardUnit, error) {
	switch strings.ToLower(s) {
	case "microseconds":
		return types.StandardUnitMicroseconds, nil
	case "milliseconds":
		return types.StandardUnitMilliseconds, nil
	case "seconds":
		return types.StandardUnitSeconds, nil
	}
	return "", fmt.Errorf("unsupported time unit %q", s)
}

// convertDuration converts value from one time unit to another with the
// truncating integer semantics of whole-unit arithmetic: the value is
// truncated to an integer count of the recording unit, then scaled by the
// exact whole-unit ratio. 5940.7e9 ns to seconds is 5940, not 5940.7.
func convertDuration(value float64, from, to time.Duration) float64 {
	if from == to {
		return value
	}
	v := int64(value)
	if from > to {
		return float64(v * int64(from/to))
	}
	return float64(v / int64(to/from))
}
