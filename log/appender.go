package log

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogAppender receives fully formatted log lines and writes them to a
// destination (console, file, ...). Write must be safe for concurrent use.
type LogAppender interface {
	Write(line []byte)
	Refresh()
}

// consoleAppender writes log lines to stdout.
type consoleAppender struct {
	mu sync.Mutex
}

// NewConsoleAppender creates an appender writing to standard output.
func NewConsoleAppender() LogAppender {
	return &consoleAppender{}
}

func (a *consoleAppender) Write(line []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = os.Stdout.Write(line)
}

func (a *consoleAppender) Refresh() {}

// fileAppender writes log lines to a file, rotating it once it grows past
// the configured size threshold.
type fileAppender struct {
	mu      sync.Mutex
	path    string
	splitMB int
	file    *os.File
	written int64
}

// NewFileAppender creates an appender writing to cfg.Path, rotating at
// cfg.SplitMB megabytes. The parent directory is created on demand.
func NewFileAppender(cfg *LogCfg) LogAppender {
	return &fileAppender{path: cfg.Path, splitMB: cfg.SplitMB}
}

func (a *fileAppender) Write(line []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		if err := a.open(); err != nil {
			return
		}
	}
	n, err := a.file.Write(line)
	if err != nil {
		_ = a.file.Close()
		a.file = nil
		return
	}
	a.written += int64(n)
	if a.splitMB > 0 && a.written >= int64(a.splitMB)<<20 {
		a.rotate()
	}
}

// Refresh reopens the target file. Used after external rotation or a
// configuration change.
func (a *fileAppender) Refresh() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file != nil {
		_ = a.file.Close()
		a.file = nil
	}
}

func (a *fileAppender) open() error {
	if dir := filepath.Dir(a.path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err == nil {
		a.written = info.Size()
	} else {
		a.written = 0
	}
	a.file = f
	return nil
}

func (a *fileAppender) rotate() {
	_ = a.file.Close()
	a.file = nil
	rotated := a.path + "." + time.Now().Format("20060102-150405")
	_ = os.Rename(a.path, rotated)
	a.written = 0
}
