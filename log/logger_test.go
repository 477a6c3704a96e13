package log

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryAppender captures written lines for inspection.
type memoryAppender struct {
	mu    sync.Mutex
	lines []string
}

func (a *memoryAppender) Write(line []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines = append(a.lines, string(line))
}

func (a *memoryAppender) Refresh() {}

func (a *memoryAppender) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.lines...)
}

func newMemoryLogger(level string) (*TextLogger, *memoryAppender) {
	logger := NewLogger(&LogCfg{Level: level})
	app := &memoryAppender{}
	logger.AddAppender(app)
	return logger, app
}

func TestLoggerWritesFields(t *testing.T) {
	logger, app := newMemoryLogger("debug")

	logger.Info().Str("metric", "requests").Int("count", 3).Msg("sent")

	lines := app.all()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "level=info")
	assert.Contains(t, lines[0], "metric=requests")
	assert.Contains(t, lines[0], "count=3")
	assert.Contains(t, lines[0], "sent")
	assert.True(t, strings.HasSuffix(lines[0], "\n"))
}

func TestLoggerQuotesValuesWithSpaces(t *testing.T) {
	logger, app := newMemoryLogger("debug")

	logger.Warn().Str("reason", "access denied").Msg("failed")

	lines := app.all()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `reason="access denied"`)
}

func TestLoggerErrField(t *testing.T) {
	logger, app := newMemoryLogger("debug")

	logger.Error().Err(errors.New("boom")).Msg("failed")

	lines := app.all()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "error=boom")
}

func TestDisabledLevelProducesNothing(t *testing.T) {
	logger, app := newMemoryLogger("warn")

	logger.Debug().Str("k", "v").Msg("dropped")
	logger.Info().Msg("dropped too")
	logger.Warn().Msg("kept")

	lines := app.all()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "kept")
}

func TestSetLevelAtRuntime(t *testing.T) {
	logger, app := newMemoryLogger("error")

	logger.Info().Msg("dropped")
	logger.SetLevel(InfoLevel)
	logger.Info().Msg("kept")

	require.Len(t, app.all(), 1)
}

func TestNilEventChainIsSafe(t *testing.T) {
	logger, _ := newMemoryLogger("error")

	// Disabled levels return a nil event; the whole chain must not panic.
	logger.Debug().Str("k", "v").Int("n", 1).Err(nil).Msgf("x %d", 1)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, InfoLevel, ParseLevel("junk"))
}

func TestFatalPanics(t *testing.T) {
	logger, _ := newMemoryLogger("debug")

	assert.Panics(t, func() {
		logger.Fatal().Msg("unrecoverable")
	})
}
