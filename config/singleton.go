package config

import "sync"

var (
	_instance   ConfigManager
	_instanceMu sync.Mutex
)

// GetInstance returns the process-wide configuration manager, creating it
// on first use.
func GetInstance() ConfigManager {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()
	if _instance == nil {
		_instance = NewConfigManager()
	}
	return _instance
}

// SetInstance replaces the process-wide configuration manager. Intended
// for tests and for embedding applications that own their manager.
func SetInstance(cm ConfigManager) {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()
	_instance = cm
}

// ResetInstance drops the process-wide manager so the next GetInstance
// call creates a fresh one.
func ResetInstance() {
	_instanceMu.Lock()
	defer _instanceMu.Unlock()
	if _instance != nil {
		_ = _instance.Close()
	}
	_instance = nil
}
