// Package config handles library and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents library configuration stored in .nbib/config.json.
// Empty fields defer to the global config.
type Config struct {
	OnError       string `json:"on_error,omitempty"`       // abort or skip
	DefaultFormat string `json:"default_format,omitempty"` // csl or bibtex
}

const (
	NbibDir    = ".nbib"
	ConfigFile = "config.json"
	ItemsFile  = "items.jsonl"
	CacheDir   = "cache"
	DBFile     = "items.db"
)

// NbibPath returns the path to the .nbib directory from a root path.
func NbibPath(root string) string {
	return filepath.Join(root, NbibDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, NbibDir, ConfigFile)
}

// ItemsPath returns the path to items.jsonl from a root path.
func ItemsPath(root string) string {
	return filepath.Join(root, NbibDir, ItemsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, NbibDir, CacheDir)
}

// DBPath returns the path to items.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, NbibDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains an nbib library.
func IsRepository(root string) bool {
	info, err := os.Stat(NbibPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find an nbib library.
// Returns the library root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in an nbib library (no .nbib directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the library at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the library at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
