// Package config handles converter configuration and workspace paths.
package config

import (
	"os"
	"path/filepath"
)

const (
	WorkDir     = ".webstract"
	RecordsFile = "records.jsonl"
	CacheDir    = "cache"
	DBFile      = "index.db"
)

// Environment variables read by FromEnv. A .env file is loaded by the
// CLI before these are consulted.
const (
	EnvRoot     = "WEBSTRACT_ROOT"
	EnvFormat   = "WEBSTRACT_FORMAT"
	EnvCollapse = "WEBSTRACT_COLLAPSE"
)

// Config carries converter settings. Citation-style options are passed
// explicitly down the pipeline; nothing here is ambient state.
type Config struct {
	Root           string // workspace root holding .webstract/
	Format         string // default output format: json or yaml
	CollapseRanges bool   // collapse numeric citation runs as "a-b"
}

// FromEnv builds a Config from the environment, applying defaults.
func FromEnv() Config {
	cfg := Config{
		Root:           os.Getenv(EnvRoot),
		Format:         os.Getenv(EnvFormat),
		CollapseRanges: os.Getenv(EnvCollapse) != "off",
	}
	if cfg.Root == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.Root = cwd
		}
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	return cfg
}

// WorkPath returns the path to the .webstract directory from a root path.
func WorkPath(root string) string {
	return filepath.Join(root, WorkDir)
}

// RecordsPath returns the path to records.jsonl from a root path.
func RecordsPath(root string) string {
	return filepath.Join(root, WorkDir, RecordsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, WorkDir, CacheDir)
}

// DBPath returns the path to index.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, WorkDir, CacheDir, DBFile)
}

// EnsureWorkspace creates the .webstract directory structure if needed.
func EnsureWorkspace(root string) error {
	return os.MkdirAll(CachePath(root), 0755)
}
