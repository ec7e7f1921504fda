package launcher

import (
	"github.com/mattn/go-runewidth"
)

const ellipsis = '…'

// truncateWithPositions middle-truncates s to maxWidth display columns
// and remaps the matched rune positions into the truncated string.
// Middle truncation keeps both the head and the tail visible, which for
// path candidates preserves the matched filename. Positions that fall
// into the elided middle are dropped. It is display-width-aware, so CJK
// characters and emoji that occupy two columns are handled correctly.
func truncateWithPositions(s string, maxWidth int, positions []int) (string, []int) {
	if maxWidth <= 0 {
		return "", nil
	}

	runes := []rune(s)
	if runewidth.StringWidth(s) <= maxWidth {
		return s, positions
	}

	// Not enough room for head + ellipsis + tail: hard-truncate right.
	if maxWidth < 3 {
		kept := prefixByWidth(runes, maxWidth)
		return string(runes[:kept]), clipPositions(positions, kept)
	}

	// Split available width between head and tail around the ellipsis,
	// giving the extra column to the head.
	remaining := maxWidth - 1
	headWidth := (remaining + 1) / 2
	tailWidth := remaining / 2

	head := prefixByWidth(runes, headWidth)
	tailStart := len(runes) - suffixByWidth(runes, tailWidth)

	out := make([]rune, 0, head+1+len(runes)-tailStart)
	out = append(out, runes[:head]...)
	out = append(out, ellipsis)
	out = append(out, runes[tailStart:]...)

	var mapped []int
	for _, p := range positions {
		switch {
		case p < head:
			mapped = append(mapped, p)
		case p >= tailStart && p < len(runes):
			mapped = append(mapped, p-tailStart+head+1)
		}
	}
	return string(out), mapped
}

// clipPositions keeps positions below cut, for right truncation.
func clipPositions(positions []int, cut int) []int {
	var kept []int
	for _, p := range positions {
		if p < cut {
			kept = append(kept, p)
		}
	}
	return kept
}

// prefixByWidth returns how many leading runes fit in maxWidth columns.
func prefixByWidth(runes []rune, maxWidth int) int {
	w := 0
	for i, r := range runes {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return i
		}
		w += rw
	}
	return len(runes)
}

// suffixByWidth returns how many trailing runes fit in maxWidth columns.
func suffixByWidth(runes []rune, maxWidth int) int {
	w := 0
	n := 0
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		n++
	}
	return n
}
