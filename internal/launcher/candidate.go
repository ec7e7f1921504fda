package launcher

import (
	"github.com/runger/flit/internal/apps"
	"github.com/runger/flit/internal/fswalk"
)

// Candidate is one row in the ranked result list. Exactly one of App and
// Path is set; launch mode only applies to apps. Candidates are
// transient and rebuilt on every search pass.
type Candidate struct {
	Display   string
	Score     int   // blended fuzzy + usage score
	Positions []int // matched rune indexes into Display

	App  *apps.AppRef
	Path *fswalk.PathRef
}

// Key returns the identity used for usage-store lookups: the app ID, or
// the absolute path for filesystem entries.
func (c Candidate) Key() string {
	if c.App != nil {
		return c.App.ID
	}
	return c.Path.Path
}

func appCandidate(sa apps.ScoredApp) Candidate {
	app := sa.App
	return Candidate{
		Display:   app.Name,
		Score:     sa.Score,
		Positions: sa.Positions,
		App:       &app,
	}
}

func pathCandidate(e fswalk.Entry) Candidate {
	ref := e.Ref
	return Candidate{
		Display:   e.Display,
		Score:     e.Score,
		Positions: e.Positions,
		Path:      &ref,
	}
}
