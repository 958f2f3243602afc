package log

import (
	"fmt"

	"pioneer-tui/helpers"
	"pioneer-tui/styles"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

const (
	// rows taken by the header, nav and the panel's own border and title
	reservedRows = 10
	maxRows      = 15
)

// Height returns the number of log lines shown for a terminal of the given height.
// The panel never takes more than a third of the screen.
func Height(height int) int {
	return helpers.Min(helpers.Max(5, height-reservedRows), helpers.Min(height/3, maxRows))
}

// Render renders the log panel below the page
func Render(width, height int, logReady bool, logSpinnerView string, vp viewport.Model) string {
	rows := Height(height)
	vp.Height = rows

	panel := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 1).
		Width(helpers.Max(0, width-2)).
		Height(rows + 2)

	title := lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("Log")
	if !logReady {
		return panel.Render(title + "\n\n" + logSpinnerView + " starting logger")
	}

	info := fmt.Sprintf(" %d lines", vp.TotalLineCount())
	if vp.TotalLineCount() > vp.Height {
		info += fmt.Sprintf(" [%d%%]", int(vp.ScrollPercent()*100))
	}
	return panel.Render(title + styles.MutedStyle.Render(info) + "\n\n" + vp.View())
}
