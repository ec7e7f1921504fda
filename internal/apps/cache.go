package apps

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CachedSource wraps a Source with a JSON record cache so startup avoids
// a full manifest rescan. A missing or unreadable cache falls through to
// the wrapped source and rebuilds the cache; cache write failures are
// ignored (the scan already succeeded).
type CachedSource struct {
	Path    string
	Wrapped Source
}

// Records implements Source.
func (c *CachedSource) Records() ([]Record, error) {
	if records, err := readCache(c.Path); err == nil && len(records) > 0 {
		return records, nil
	}
	return c.Refresh()
}

// Refresh rescans the wrapped source and rewrites the cache.
func (c *CachedSource) Refresh() ([]Record, error) {
	records, err := c.Wrapped.Records()
	if err != nil {
		return nil, err
	}
	_ = writeCache(c.Path, records)
	return records, nil
}

func readCache(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("corrupt app cache %s: %w", path, err)
	}
	return records, nil
}

func writeCache(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
