// Package fs provides file system helpers: collision-free file naming,
// in-place file replacement with an optional backup, and a file-backed
// report cache.
package fs

import (
	"os"
	"path/filepath"
)

// DefaultCacheDir returns the default cache directory for cppguts.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/cppguts,
// or system temp directory if home is unavailable.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cppguts")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "cppguts")
	}
	return filepath.Join(home, ".cache", "cppguts")
}
