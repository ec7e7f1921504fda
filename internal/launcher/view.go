package launcher

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	activeModeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	inactiveModeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	selectedMatch     = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("214"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteRune('\n')

	b.WriteString(m.viewModeBar())
	b.WriteRune('\n')

	// The status line never hides the list: after a failed launch the
	// user keeps navigating the same results.
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteRune('\n')
	}

	b.WriteString(m.viewList())

	return b.String()
}

// viewModeBar renders the mode indicator and the result summary.
func (m Model) viewModeBar() string {
	var parts []string
	for _, mode := range []Mode{ModeApps, ModeFiles} {
		label := " " + mode.String() + " "
		if mode == m.mode {
			parts = append(parts, activeModeStyle.Render(label))
		} else {
			parts = append(parts, inactiveModeStyle.Render(label))
		}
	}
	bar := strings.Join(parts, " ")

	summary := fmt.Sprintf("%d", len(m.results))
	if m.walking {
		summary += " …"
	}
	if m.forceTerminal {
		summary += "  [term]"
	}
	if m.showDormant {
		summary += "  [dormant]"
	}
	return bar + "  " + dimStyle.Render(summary)
}

// viewList renders the result rows or a placeholder.
func (m Model) viewList() string {
	if len(m.results) == 0 {
		if m.walking {
			return dimStyle.Render("Searching...")
		}
		return dimStyle.Render("No matches")
	}

	maxRows := m.listHeight()
	offset := m.scrollOffset(maxRows)

	var b strings.Builder
	for i := offset; i < len(m.results) && i < offset+maxRows; i++ {
		c := m.results[i]
		display := c.Display
		positions := c.Positions
		if m.width > 4 {
			display, positions = truncateWithPositions(display, m.width-4, positions)
		}

		if i == m.selection {
			b.WriteString(selectedStyle.Render("> "))
			b.WriteString(renderHighlighted(display, positions, selectedStyle, selectedMatch))
		} else {
			b.WriteString("  ")
			b.WriteString(renderHighlighted(display, positions, normalStyle, matchStyle))
		}
		if i < len(m.results)-1 && i < offset+maxRows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// renderHighlighted renders s with the matched rune positions in the
// match style, grouping adjacent runes of the same class into one styled
// run to keep the escape-sequence count down.
func renderHighlighted(s string, positions []int, base, match lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(s)
	}

	matched := make(map[int]bool, len(positions))
	for _, p := range positions {
		matched[p] = true
	}

	runes := []rune(s)
	var b strings.Builder
	start := 0
	for start < len(runes) {
		end := start
		for end < len(runes) && matched[end] == matched[start] {
			end++
		}
		run := string(runes[start:end])
		if matched[start] {
			b.WriteString(match.Render(run))
		} else {
			b.WriteString(base.Render(run))
		}
		start = end
	}
	return b.String()
}

// scrollOffset returns the first visible row index, keeping the
// selection inside the window.
func (m Model) scrollOffset(maxRows int) int {
	if maxRows < 1 || m.selection < maxRows {
		return 0
	}
	offset := m.selection - maxRows + 1
	if offset > len(m.results)-maxRows {
		offset = len(m.results) - maxRows
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// listHeight returns the number of visible result rows (terminal height
// minus query, mode, and status lines).
func (m Model) listHeight() int {
	chrome := 2
	if m.status != "" {
		chrome++
	}
	h := m.height - chrome
	if h < 1 {
		h = 20 // Sensible default before first WindowSizeMsg
	}
	return h
}
