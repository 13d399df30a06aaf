package xdg

import (
	"os"
	"path/filepath"
)

// XDGDirs provides access to XDG Base Directory Specification compliant paths
type XDGDirs struct {
	dataHome   string
	configHome string
	cacheHome  string
}

// NewXDGDirs resolves the base directories from the environment, falling
// back to the defaults of the XDG spec
func NewXDGDirs() *XDGDirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "/tmp"
		}
	}

	return &XDGDirs{
		dataHome:   envOr("XDG_DATA_HOME", filepath.Join(homeDir, ".local", "share")),
		configHome: envOr("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config")),
		cacheHome:  envOr("XDG_CACHE_HOME", filepath.Join(homeDir, ".cache")),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (x *XDGDirs) DataHome() string {
	return x.dataHome
}

func (x *XDGDirs) ConfigHome() string {
	return x.configHome
}

func (x *XDGDirs) CacheHome() string {
	return x.cacheHome
}

// AppDataDir returns the application-specific data directory
func (x *XDGDirs) AppDataDir(appName string) string {
	return filepath.Join(x.dataHome, appName)
}

// AppConfigDir returns the application-specific config directory
func (x *XDGDirs) AppConfigDir(appName string) string {
	return filepath.Join(x.configHome, appName)
}

// AppCacheDir returns the application-specific cache directory
func (x *XDGDirs) AppCacheDir(appName string) string {
	return filepath.Join(x.cacheHome, appName)
}

// EnsureDir creates the directory with appropriate permissions if it doesn't exist
func (x *XDGDirs) EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
