package reporting

import "strings"

// MetricFilter selects which registry metrics are reported. Only metrics
// whose name it accepts are translated.
type MetricFilter func(name string) bool

// FilterAll accepts every metric.
func FilterAll(string) bool { return true }

// FilterPrefix accepts metrics whose name starts with prefix.
func FilterPrefix(prefix string) MetricFilter {
	return func(name string) bool {
		return strings.HasPrefix(name, prefix)
	}
}
