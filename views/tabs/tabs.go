package tabs

import (
	"strings"

	"pioneer-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

var (
	tabStyle = lipgloss.NewStyle().
			Foreground(styles.CMuted).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(styles.CAccent2).
			Bold(true).
			Underline(true).
			Padding(0, 2)
)

// Render renders a row of tabs with the active one highlighted
func Render(titles []string, active int) string {
	parts := make([]string, len(titles))
	for i, t := range titles {
		if i == active {
			parts[i] = activeTabStyle.Render(t)
		} else {
			parts[i] = tabStyle.Render(t)
		}
	}
	return strings.Join(parts, styles.MutedStyle.Render("│"))
}

// Next returns the tab after active, wrapping around
func Next(titles []string, active int) int {
	if len(titles) == 0 {
		return 0
	}
	return (active + 1) % len(titles)
}

// Prev returns the tab before active, wrapping around
func Prev(titles []string, active int) int {
	if len(titles) == 0 {
		return 0
	}
	return (active - 1 + len(titles)) % len(titles)
}
