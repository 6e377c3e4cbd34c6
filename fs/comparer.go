package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.Comparer = (*Comparer)(nil)

// cacheVersion is mixed into cache keys so reports from an older report
// layout are never returned.
const cacheVersion = "report-v1"

// Comparer wraps a Comparer with file-based caching of reports. Cached
// reports carry spans but no declaration pointers.
type Comparer struct {
	inner    cppguts.Comparer
	cacheDir string
}

// NewComparer creates a new caching comparer.
func NewComparer(inner cppguts.Comparer, cacheDir string) *Comparer {
	return &Comparer{
		inner:    inner,
		cacheDir: cacheDir,
	}
}

// Compare returns a cached report or delegates to the inner comparer.
// Failed comparisons are not cached.
func (c *Comparer) Compare(ctx context.Context, pair cppguts.Pair) (*cppguts.Report, error) {
	hash := c.hashInput(pair)

	if cached, err := c.loadFromCache(hash); err == nil {
		return cached, nil
	}

	result, err := c.inner.Compare(ctx, pair)
	if err != nil {
		return nil, err
	}

	// Store in cache (best-effort)
	_ = c.saveToCache(hash, result)

	return result, nil
}

func (c *Comparer) hashInput(pair cppguts.Pair) string {
	data, _ := json.Marshal(pair)
	sum := sha256.Sum256(append([]byte(cacheVersion), data...))
	return hex.EncodeToString(sum[:])
}

func (c *Comparer) cachePath(hash string) string {
	return filepath.Join(c.cacheDir, hash+".json")
}

func (c *Comparer) loadFromCache(hash string) (*cppguts.Report, error) {
	data, err := os.ReadFile(c.cachePath(hash))
	if err != nil {
		return nil, err
	}

	var result cppguts.Report
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Comparer) saveToCache(hash string, result *cppguts.Report) error {
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return os.WriteFile(c.cachePath(hash), data, 0644)
}
