package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global mdhelper directory
	GlobalDirName = ".mdhelper"
	// ConfigFileName is the default configuration file name
	ConfigFileName = "config.json"
	// HistoryFileName is the default history database name
	HistoryFileName = "history.db"
)

// Environment overrides
const (
	EnvConfig = "MDH_CONFIG"
	EnvVault  = "MDH_VAULT"
	EnvDBType = "MDH_DB_TYPE"
	EnvDB     = "MDH_DB"
)

// GlobalDir returns the global mdhelper directory path (~/.mdhelper)
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return GlobalDirName
	}
	return filepath.Join(home, GlobalDirName)
}

// DefaultConfigPath returns the configuration path, honoring MDH_CONFIG
func DefaultConfigPath() string {
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	return filepath.Join(GlobalDir(), ConfigFileName)
}

// DefaultHistoryPath returns the history database path, honoring MDH_DB
func DefaultHistoryPath() string {
	if path := os.Getenv(EnvDB); path != "" {
		return path
	}
	return filepath.Join(GlobalDir(), HistoryFileName)
}

// EnsureGlobalDir creates the global directory
func EnsureGlobalDir() error {
	return os.MkdirAll(GlobalDir(), 0755)
}
