// Package config provides configuration management for flit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds all the path configurations for flit.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/flit)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/flit)
	DataDir string

	// CacheDir is the directory for cache files (~/.cache/flit)
	CacheDir string
}

// DefaultPaths returns the default paths based on the XDG Base Directory
// spec. On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, "flit"),
			DataDir:   filepath.Join(localAppData, "flit"),
			CacheDir:  filepath.Join(localAppData, "flit", "cache"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(home, ".cache")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "flit"),
		DataDir:   filepath.Join(dataHome, "flit"),
		CacheDir:  filepath.Join(cacheHome, "flit"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabaseFile returns the path to the SQLite usage database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "usage.db")
}

// AppCacheFile returns the path to the cached application index.
func (p *Paths) AppCacheFile() string {
	return filepath.Join(p.CacheDir, "apps.json")
}

// LockFile returns the path to the single-instance lock file.
func (p *Paths) LockFile() string {
	return filepath.Join(p.CacheDir, "flit.lock")
}

// LogFile returns the path to the session log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.DataDir, "flit.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.ConfigDir,
		p.DataDir,
		p.CacheDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// homeDir returns the user's home directory, falling back to the current
// directory if it cannot be determined.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
