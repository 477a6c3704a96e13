// Package log provides the leveled, structured logging used across the
// reporter. Events chain fields zerolog-style and finish with Msg:
//
//	log.Warn().Str("metric", name).Err(err).Msg("translation failed")
package log

// Logger is the interface satisfied by TextLogger and by test doubles.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	Fatal() *LogEvent
	GetAppender() []LogAppender
	AddAppender(appender LogAppender)
	OnEventEnd(e *LogEvent)
}

var _defaultLogger *TextLogger

func init() {
	_defaultLogger = NewLogger(nil)
}

// AddAppender adds an appender to the package-level default logger.
func AddAppender(appender LogAppender) {
	_defaultLogger.AddAppender(appender)
}

// Refresh refreshes all appenders of the default logger.
func Refresh() {
	_defaultLogger.Refresh()
}

// SetDefaultLogger replaces the package-level default logger.
func SetDefaultLogger(logger *TextLogger) {
	_defaultLogger = logger
}

// Configure rebuilds the default logger from cfg.
func Configure(cfg *LogCfg) {
	_defaultLogger = NewLogger(cfg)
}

// Debug creates a debug-level event on the default logger.
func Debug() *LogEvent {
	return _defaultLogger.Debug()
}

// Info creates an info-level event on the default logger.
func Info() *LogEvent {
	return _defaultLogger.Info()
}

// Warn creates a warn-level event on the default logger.
func Warn() *LogEvent {
	return _defaultLogger.Warn()
}

// Error creates an error-level event on the default logger.
func Error() *LogEvent {
	return _defaultLogger.Error()
}

// Fatal creates a fatal-level event on the default logger. Finishing it
// panics.
func Fatal() *LogEvent {
	return _defaultLogger.Fatal()
}
