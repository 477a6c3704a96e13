package reporting

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertDurationSameUnitIsIdentity(t *testing.T) {
	assert.Equal(t, 1234.9, convertDuration(1234.9, time.Nanosecond, time.Nanosecond))
}

func TestConvertDurationTruncatesToWholeUnits(t *testing.T) {
	// 99 minutes recorded in nanoseconds comes out as exactly 5940 seconds.
	ns := float64((99 * time.Minute).Nanoseconds())
	assert.Equal(t, 5940.0, convertDuration(ns, time.Nanosecond, time.Second))

	// Sub-unit remainders are dropped, not rounded.
	assert.Equal(t, 2.0, convertDuration(2999, time.Microsecond, time.Millisecond))

	// Truncation happens before scaling up as well: 1.9 ms is 1 whole
	// millisecond, i.e. 1000 microseconds.
	assert.Equal(t, 1000.0, convertDuration(1.9, time.Millisecond, time.Microsecond))
}

func TestStandardUnitDuration(t *testing.T) {
	d, ok := standardUnitDuration(types.StandardUnitMilliseconds)
	require.True(t, ok)
	assert.Equal(t, time.Millisecond, d)

	_, ok = standardUnitDuration(types.StandardUnitBytes)
	assert.False(t, ok)
}

func TestParseStandardUnit(t *testing.T) {
	for in, want := range map[string]types.StandardUnit{
		"seconds":      types.StandardUnitSeconds,
		"Milliseconds": types.StandardUnitMilliseconds,
		"MICROSECONDS": types.StandardUnitMicroseconds,
	} {
		got, err := parseStandardUnit(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := parseStandardUnit("fortnights")
	assert.Error(t, err)
}
