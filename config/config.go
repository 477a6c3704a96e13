// Package config provides viper-backed configuration loading with file
// watching and change notification.
package config

// Config is the contract every loadable configuration struct satisfies.
type Config interface {
	GetName() string
	Validate() error
}

// ConfigChangeListener is notified after a watched configuration file is
// reloaded and validated. oldConfig is nil on the first load.
type ConfigChangeListener interface {
	OnConfigChanged(configName string, newConfig, oldConfig Config) error
}
