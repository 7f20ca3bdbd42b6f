package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName      = "forge"
	configFile   = "config.toml"
	catalogFile  = "apps.yaml"
	historyFile  = "history.db"
	snapshotFile = "snapshots.db"
	progressFile = "progress.json"
)

// ConfigDir returns the platform-specific configuration directory for forge.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir() //nolint:errcheck
		return filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default: // linux and others
		// Respect XDG_CONFIG_HOME if set
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}
		home, _ := os.UserHomeDir() //nolint:errcheck
		return filepath.Join(home, ".config", appName)
	}
}

// DataDir returns the platform-specific data directory for forge.
func DataDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir() //nolint:errcheck
		return filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default: // linux and others
		// Respect XDG_DATA_HOME if set
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}
		home, _ := os.UserHomeDir() //nolint:errcheck
		return filepath.Join(home, ".local", "share", appName)
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), configFile)
}

// CatalogPath returns the full path to the application catalog.
func CatalogPath() string {
	return filepath.Join(ConfigDir(), catalogFile)
}

// HistoryPath returns the full path to the history database.
func HistoryPath() string {
	return filepath.Join(DataDir(), historyFile)
}

// SnapshotPath returns the full path to the snapshot database.
func SnapshotPath() string {
	return filepath.Join(DataDir(), snapshotFile)
}

// ProgressPath returns the full path to the shared progress state file.
// The terminal installer writes it, the dashboard server reads it.
func ProgressPath() string {
	return filepath.Join(DataDir(), progressFile)
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0755)
}
