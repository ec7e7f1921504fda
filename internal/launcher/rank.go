package launcher

import (
	"sort"
	"time"

	"github.com/runger/flit/internal/usage"
)

// nowFn is a test seam for dormancy checks.
var nowFn = func() int64 { return time.Now().Unix() }

// ranker blends fuzzy scores with launch frequency. The bonus is
// launchWeight per recorded launch, capped at launchCap launches, so it
// is monotonic in both inputs and bounded: a strong fuzzy match can
// still outrank a frequently launched weak one, and items without a
// usage record get a zero bonus.
type ranker struct {
	records      map[string]usage.Record
	launchWeight int
	launchCap    int
	dormantDays  int
}

func newRanker(records map[string]usage.Record, weight, cap, dormantDays int) *ranker {
	if records == nil {
		records = map[string]usage.Record{}
	}
	return &ranker{
		records:      records,
		launchWeight: weight,
		launchCap:    cap,
		dormantDays:  dormantDays,
	}
}

// dormant reports whether key's last launch is older than the dormancy
// cutoff. Items never launched are not dormant: only stale usage hides
// an entry.
func (r *ranker) dormant(key string) bool {
	if r.dormantDays <= 0 {
		return false
	}
	rec, ok := r.records[key]
	if !ok || rec.LastUsedAt <= 0 {
		return false
	}
	return nowFn()-rec.LastUsedAt > int64(r.dormantDays)*24*60*60
}

// blend returns the effective score for a candidate.
func (r *ranker) blend(fuzzyScore int, key string) int {
	rec, ok := r.records[key]
	if !ok {
		return fuzzyScore
	}
	count := rec.LaunchCount
	if count > r.launchCap {
		count = r.launchCap
	}
	return fuzzyScore + count*r.launchWeight
}

// record returns the usage record for key, if any.
func (r *ranker) record(key string) (usage.Record, bool) {
	rec, ok := r.records[key]
	return rec, ok
}

// update refreshes the in-memory view after a recorded launch.
func (r *ranker) update(rec usage.Record) {
	r.records[rec.Key] = rec
}

// sortCandidates orders by descending blended score, then ascending
// display text. The secondary key makes repeated searches over the same
// inputs produce identical orderings.
func sortCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Display < cands[j].Display
	})
}

// mergeBounded appends incoming candidates, re-sorts, and truncates to
// limit, keeping terminal redraw cost bounded on huge directory trees.
func mergeBounded(existing, incoming []Candidate, limit int) []Candidate {
	merged := append(existing, incoming...)
	sortCandidates(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
