package log

import "github.com/omnifone/metrics-cloudwatch/config"

var _ config.Config = (*LogCfg)(nil)

// LogCfg configures the logging package. It is loadable through the
// config manager (mapstructure tags) and usable directly for programmatic
// setup.
type LogCfg struct {
	// Path is the target file for the file appender.
	Path string `mapstructure:"path"`

	// Level is the minimum level written. Supports hot-reload through
	// the config manager without recreating the logger.
	Level string `mapstructure:"level"`

	// SplitMB is the file rotation threshold in megabytes. Zero disables
	// size-based rotation.
	SplitMB int `mapstructure:"splitmb"`

	// FileAppender enables file output.
	FileAppender bool `mapstructure:"fileAppender"`

	// ConsoleAppender enables stdout output.
	ConsoleAppender bool `mapstructure:"consoleAppender"`

	// EnabledCallerInfo adds a caller=file:line field to every line.
	EnabledCallerInfo bool `mapstructure:"enabledCallerInfo"`

	// CallerSkip adjusts the stack depth used for caller information,
	// for wrapper layers around this package.
	CallerSkip int `mapstructure:"callerSkip"`
}

// GetName implements config.Config.
func (c *LogCfg) GetName() string { return "logger" }

// Validate implements config.Config.
func (c *LogCfg) Validate() error { return nil }

var _defaultCfg = &LogCfg{
	Level:           "debug",
	SplitMB:         50,
	ConsoleAppender: true,
}

func getDefaultCfg() *LogCfg {
	return _defaultCfg
}
