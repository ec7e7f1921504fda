// Package fuzzy implements the subsequence matcher used to rank launcher
// candidates. Scoring is a pure function of (query, candidate): the same
// inputs always produce the same score and the same matched positions.
package fuzzy

import "unicode"

// Match holds the result of matching a query against a candidate.
type Match struct {
	// Score is higher for better matches. Scores are only comparable
	// between candidates matched against the same query.
	Score int

	// Positions are the rune indexes of the candidate characters chosen
	// for the match, in ascending order. Empty for an empty query.
	Positions []int
}

// Scoring constants. A match earns scoreMatch per query rune, plus
// boundary and run bonuses; gaps between matched runes, a late first
// match, and long candidates cost points.
const (
	scoreMatch       = 16
	bonusBoundary    = 8 // candidate start or preceded by a separator
	bonusConsecutive = 6 // immediately follows the previous matched rune
	penaltyGap       = 2 // per skipped candidate rune between matches
	maxStartPenalty  = 8 // cap on the first-match-position penalty
	maxLenPenalty    = 12

	minScore = -1 << 30
)

// Score matches query against candidate, case-insensitively. It returns
// false when the query's runes do not appear in order within the
// candidate. An empty query matches everything with a uniform zero score
// so that ranking falls through to usage weighting.
func Score(query, candidate string) (Match, bool) {
	q := foldRunes(query)
	c := foldRunes(candidate)

	if len(q) == 0 {
		return Match{}, true
	}
	if len(q) > len(c) || !isSubsequence(q, c) {
		return Match{}, false
	}

	score, positions := matchBest(q, c)
	return Match{Score: score, Positions: positions}, true
}

// foldRunes lowercases s into a rune slice.
func foldRunes(s string) []rune {
	runes := make([]rune, 0, len(s))
	for _, r := range s {
		runes = append(runes, unicode.ToLower(r))
	}
	return runes
}

// isSubsequence reports whether q appears in order within c.
func isSubsequence(q, c []rune) bool {
	i := 0
	for _, r := range c {
		if i < len(q) && r == q[i] {
			i++
		}
	}
	return i == len(q)
}

// isBoundary reports whether candidate position j starts a word: the
// first rune, or one preceded by a path or word separator.
func isBoundary(c []rune, j int) bool {
	if j == 0 {
		return true
	}
	switch c[j-1] {
	case '/', '\\', '_', '-', '.', ' ':
		return true
	}
	return false
}

// matchBest runs a dynamic program over (query rune, candidate rune)
// pairs and returns the highest-scoring subsequence together with its
// positions. Ties are resolved deterministically: a consecutive
// continuation beats a gapped one of equal value, and among gapped
// continuations the earliest previous position wins, so the chosen
// subsequence is the earliest, most-contiguous optimum.
func matchBest(q, c []rune) (int, []int) {
	n, m := len(q), len(c)

	prev := make([]int, m)    // best score with q[:i] matched, ending exactly at j
	cur := make([]int, m)
	parents := make([][]int, n) // parents[i][j] = previous matched position, -1 for i==0

	for i := 0; i < n; i++ {
		parents[i] = make([]int, m)
		// bestGap tracks max over k < j of prev[k] - penaltyGap*(j-1-k),
		// carrying the earliest k on ties.
		bestGap := minScore
		bestGapIdx := -1

		for j := 0; j < m; j++ {
			if j > 0 {
				if bestGap > minScore {
					bestGap -= penaltyGap
				}
				if prev[j-1] > bestGap {
					bestGap = prev[j-1]
					bestGapIdx = j - 1
				}
			}

			cur[j] = minScore
			parents[i][j] = -1
			if c[j] != q[i] {
				continue
			}

			base := scoreMatch
			if isBoundary(c, j) {
				base += bonusBoundary
			}

			if i == 0 {
				start := j
				if start > maxStartPenalty {
					start = maxStartPenalty
				}
				cur[j] = base - start
				continue
			}

			// Consecutive continuation, preferred on ties.
			if j > 0 && prev[j-1] > minScore {
				cur[j] = prev[j-1] + base + bonusConsecutive
				parents[i][j] = j - 1
			}
			if bestGap > minScore && bestGap+base > cur[j] {
				cur[j] = bestGap + base
				parents[i][j] = bestGapIdx
			}
		}

		prev, cur = cur, prev
	}

	// Earliest end position wins ties.
	end, best := -1, minScore
	for j := 0; j < m; j++ {
		if prev[j] > best {
			best = prev[j]
			end = j
		}
	}

	positions := make([]int, n)
	for i, j := n-1, end; i >= 0; i-- {
		positions[i] = j
		j = parents[i][j]
	}

	return best - lengthPenalty(m), positions
}

// lengthPenalty charges long candidates so that, all else equal, shorter
// names rank first.
func lengthPenalty(runeLen int) int {
	p := runeLen / 4
	if p > maxLenPenalty {
		p = maxLenPenalty
	}
	return p
}
