package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePassesRegularValues(t *testing.T) {
	var s sanitizer
	for _, v := range []float64{1, -1, 0.5, 1e-108, 1e108, 1234.5678, -9.25e42} {
		assert.Equal(t, v, s.sanitize("m", v))
	}
}

func TestSanitizeZeroPassesThrough(t *testing.T) {
	var s sanitizer
	assert.Equal(t, 0.0, s.sanitize("m", 0.0))
	// Values at the boundary stay put; only smaller magnitudes move.
	assert.Equal(t, SmallestSendable, s.sanitize("m", SmallestSendable))
}

func TestSanitizeClampsTinyMagnitudes(t *testing.T) {
	var s sanitizer
	assert.Equal(t, SmallestSendable, s.sanitize("m", 1e-120))
	assert.Equal(t, -SmallestSendable, s.sanitize("m", -1e-120))
}

func TestSanitizeClampsHugeMagnitudes(t *testing.T) {
	var s sanitizer
	assert.Equal(t, LargestSendable, s.sanitize("m", 1e120))
	assert.Equal(t, -LargestSendable, s.sanitize("m", -1e120))
}

func TestSanitizeLatchesLogOncePerDirection(t *testing.T) {
	var s sanitizer
	s.sanitize("m", 1e-120)
	assert.True(t, s.loggedTooSmall)
	assert.False(t, s.loggedTooLarge)

	s.sanitize("m", 1e120)
	assert.True(t, s.loggedTooLarge)

	// Latches never reset, further clamps still happen.
	assert.Equal(t, SmallestSendable, s.sanitize("m", 2e-200))
	assert.Equal(t, LargestSendable, s.sanitize("m", 2e200))
}
