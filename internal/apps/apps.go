// Package apps maintains the in-memory index of launchable applications.
// Raw manifest records come from a Source; the index deduplicates them,
// drops malformed entries, and answers fuzzy searches over app names.
package apps

import (
	"fmt"
	"strings"

	"github.com/runger/flit/internal/fuzzy"
)

// AppRef identifies a launchable application. Immutable after load; ID is
// the join key into the usage store.
type AppRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Exec     string `json:"exec"`
	Terminal bool   `json:"terminal"`
}

// Record is a raw manifest record as supplied by a Source, before
// validation and deduplication. Origin is the path of the manifest (or
// binary) the record came from and provides the stable identity.
type Record struct {
	Name     string `json:"name"`
	Exec     string `json:"exec"`
	Terminal bool   `json:"terminal"`
	Origin   string `json:"origin"`
}

// Source supplies raw application manifest records.
type Source interface {
	Records() ([]Record, error)
}

// ScoredApp pairs an app with its fuzzy match against the current query.
type ScoredApp struct {
	App       AppRef
	Score     int
	Positions []int
}

// Index is the one-time-loaded application list. It is read-only after
// construction and safe to search from the event loop without locking.
type Index struct {
	apps []AppRef
}

// NewIndex loads records from src, discards malformed entries, and
// deduplicates by ID keeping the first occurrence.
func NewIndex(src Source) (*Index, error) {
	records, err := src.Records()
	if err != nil {
		return nil, fmt.Errorf("failed to load application manifests: %w", err)
	}
	return newIndexFromRecords(records), nil
}

func newIndexFromRecords(records []Record) *Index {
	seen := make(map[string]bool, len(records))
	apps := make([]AppRef, 0, len(records))

	for _, rec := range records {
		app, ok := validate(rec)
		if !ok {
			continue
		}
		if seen[app.ID] {
			continue
		}
		seen[app.ID] = true
		apps = append(apps, app)
	}

	return &Index{apps: apps}
}

// validate turns a raw record into an AppRef, rejecting records without a
// usable name or exec command.
func validate(rec Record) (AppRef, bool) {
	name := strings.TrimSpace(rec.Name)
	exec := strings.TrimSpace(rec.Exec)
	if name == "" || exec == "" {
		return AppRef{}, false
	}

	id := strings.TrimSpace(rec.Origin)
	if id == "" {
		id = "exec:" + exec
	}

	return AppRef{
		ID:       id,
		Name:     name,
		Exec:     exec,
		Terminal: rec.Terminal,
	}, true
}

// Apps returns all indexed applications.
func (ix *Index) Apps() []AppRef {
	return ix.apps
}

// Len returns the number of indexed applications.
func (ix *Index) Len() int {
	return len(ix.apps)
}

// Search applies the fuzzy matcher to every app name and returns the
// matches unsorted; ordering and usage weighting happen centrally in the
// launcher. Always synchronous: the index is small and in memory.
func (ix *Index) Search(query string) []ScoredApp {
	results := make([]ScoredApp, 0, len(ix.apps))
	for _, app := range ix.apps {
		m, ok := fuzzy.Score(query, app.Name)
		if !ok {
			continue
		}
		results = append(results, ScoredApp{
			App:       app,
			Score:     m.Score,
			Positions: m.Positions,
		})
	}
	return results
}
