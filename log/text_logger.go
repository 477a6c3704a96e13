package log

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// TextLogger is a thread-safe logger producing key=value text lines.
// It pools LogEvent instances to keep the hot path allocation-free and
// supports runtime level changes for hot-reload.
type TextLogger struct {
	appenders         []LogAppender
	minLevel          atomic.Uint32
	callerSkip        int
	enabledCallerInfo bool
	eventPool         *sync.Pool
	callerCache       sync.Map
}

// NewLogger creates a TextLogger from cfg. A nil cfg uses the package
// defaults (debug level, console appender only).
func NewLogger(cfg *LogCfg) *TextLogger {
	if cfg == nil {
		cfg = getDefaultCfg()
	}

	logger := &TextLogger{
		callerSkip:        cfg.CallerSkip,
		enabledCallerInfo: cfg.EnabledCallerInfo,
	}
	logger.minLevel.Store(uint32(ParseLevel(cfg.Level)))

	logger.eventPool = &sync.Pool{
		New: func() any {
			return newEvent(logger)
		},
	}

	if cfg.FileAppender {
		logger.AddAppender(NewFileAppender(cfg))
	}
	if cfg.ConsoleAppender {
		logger.AddAppender(NewConsoleAppender())
	}

	return logger
}

// SetLevel changes the minimum level at runtime.
func (x *TextLogger) SetLevel(level Level) {
	x.minLevel.Store(uint32(level))
}

func (x *TextLogger) checkLevel(level Level) bool {
	return Level(x.minLevel.Load()) <= level
}

// AddAppender registers an additional output destination. Not safe to
// call concurrently with logging; wire appenders up during setup.
func (x *TextLogger) AddAppender(appender LogAppender) {
	x.appenders = append(x.appenders, appender)
}

// GetAppender returns the registered appenders.
func (x *TextLogger) GetAppender() []LogAppender {
	return x.appenders
}

// Refresh triggers a refresh on every appender, reopening files after
// external rotation.
func (x *TextLogger) Refresh() {
	for _, appender := range x.appenders {
		appender.Refresh()
	}
}

// OnEventEnd writes the finished event to every appender and returns it
// to the pool. Fatal events panic after the write.
func (x *TextLogger) OnEventEnd(e *LogEvent) {
	for _, appender := range x.appenders {
		appender.Write(e.buf.Bytes())
	}
	level := e.level
	x.eventPool.Put(e)
	if level == FatalLevel {
		panic("fatal log event")
	}
}

// Debug creates a debug-level event, or nil if debug is disabled.
func (x *TextLogger) Debug() *LogEvent { return x.log(DebugLevel) }

// Info creates an info-level event, or nil if info is disabled.
func (x *TextLogger) Info() *LogEvent { return x.log(InfoLevel) }

// Warn creates a warn-level event, or nil if warn is disabled.
func (x *TextLogger) Warn() *LogEvent { return x.log(WarnLevel) }

// Error creates an error-level event, or nil if error is disabled.
func (x *TextLogger) Error() *LogEvent { return x.log(ErrorLevel) }

// Fatal creates a fatal-level event. Finishing it with Msg panics.
func (x *TextLogger) Fatal() *LogEvent { return x.log(FatalLevel) }

func (x *TextLogger) log(level Level) *LogEvent {
	if !x.checkLevel(level) {
		return nil
	}

	e := x.eventPool.Get().(*LogEvent)
	e.Reset()
	e.level = level

	t := time.Now()
	e.Time("time", &t)
	e.Str("level", level.String())

	if x.enabledCallerInfo {
		e.Str("caller", x.caller())
	}

	return e
}

// caller resolves file:line of the logging call site, caching per program
// counter since call sites repeat heavily.
func (x *TextLogger) caller() string {
	pc, file, line, ok := runtime.Caller(3 + x.callerSkip)
	if !ok {
		return "unknown"
	}
	if cached, found := x.callerCache.Load(pc); found {
		return cached.(string)
	}

	// Trim to the last two path elements, zerolog-style.
	if lastSlash := strings.LastIndexByte(file, '/'); lastSlash > 0 {
		if secondLastSlash := strings.LastIndexByte(file[:lastSlash], '/'); secondLastSlash >= 0 {
			file = file[secondLastSlash+1:]
		}
	}
	c := file + ":" + strconv.Itoa(line)
	x.callerCache.Store(pc, c)
	return c
}
