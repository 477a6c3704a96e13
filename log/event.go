package log

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// LogEvent accumulates the fields of a single log line. Events are pooled
// by their owning logger; a nil event (returned when the level is below
// the logger's threshold) absorbs every call, so callers can chain fields
// unconditionally.
type LogEvent struct {
	logger Logger
	buf    bytes.Buffer
	level  Level
}

func newEvent(logger Logger) *LogEvent {
	return &LogEvent{logger: logger}
}

// Reset clears the event for reuse from the pool.
func (e *LogEvent) Reset() {
	e.buf.Reset()
	e.level = DebugLevel
}

func (e *LogEvent) appendKey(key string) {
	if e.buf.Len() > 0 {
		e.buf.WriteByte(' ')
	}
	e.buf.WriteString(key)
	e.buf.WriteByte('=')
}

// Str appends a string field.
func (e *LogEvent) Str(key, val string) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	if needsQuoting(val) {
		e.buf.WriteString(strconv.Quote(val))
	} else {
		e.buf.WriteString(val)
	}
	return e
}

// Int appends an int field.
func (e *LogEvent) Int(key string, val int) *LogEvent {
	return e.Int64(key, int64(val))
}

// Int64 appends an int64 field.
func (e *LogEvent) Int64(key string, val int64) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatInt(val, 10))
	return e
}

// Uint64 appends a uint64 field.
func (e *LogEvent) Uint64(key string, val uint64) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatUint(val, 10))
	return e
}

// Float64 appends a float64 field.
func (e *LogEvent) Float64(key string, val float64) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	return e
}

// Bool appends a bool field.
func (e *LogEvent) Bool(key string, val bool) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatBool(val))
	return e
}

// Err appends an error field under the key "error". A nil error appends
// nothing.
func (e *LogEvent) Err(err error) *LogEvent {
	if e == nil || err == nil {
		return e
	}
	return e.Str("error", err.Error())
}

// Time appends a timestamp field formatted as RFC3339 with milliseconds.
func (e *LogEvent) Time(key string, t *time.Time) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(t.Format("2006-01-02T15:04:05.000Z07:00"))
	return e
}

// Any appends a field formatted with %v.
func (e *LogEvent) Any(key string, val any) *LogEvent {
	if e == nil {
		return e
	}
	return e.Str(key, fmt.Sprintf("%v", val))
}

// Msg terminates the event with a message and hands the line to the
// owning logger for output. The event must not be used afterwards.
func (e *LogEvent) Msg(msg string) {
	if e == nil {
		return
	}
	e.Str("msg", msg)
	e.buf.WriteByte('\n')
	e.logger.OnEventEnd(e)
}

// Msgf terminates the event with a formatted message.
func (e *LogEvent) Msgf(format string, args ...any) {
	if e == nil {
		return
	}
	e.Msg(fmt.Sprintf(format, args...))
}

func needsQuoting(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '"' || c == '=' || c < 0x20 {
			return true
		}
	}
	return false
}
