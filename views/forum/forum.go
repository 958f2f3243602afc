package forum

import (
	"fmt"
	"strings"

	"pioneer-tui/helpers"
	"pioneer-tui/query"
	"pioneer-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the forum view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " move",
		styles.Key("d") + " delete post",
		styles.Key("r") + " refresh",
		styles.Key("h") + " home",
		styles.Key("l") + " logger",
		styles.Key("Esc") + " back",
	}, "   ")
	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the active member's posts
func Render(posts []query.Post, selectedIdx int, handle string, loading bool, spinnerView, errMsg string) string {
	h := styles.TitleStyle.Render("Forum")
	sub := styles.MutedStyle.Render("Posts by " + handle)
	if handle == "" {
		sub = styles.MutedStyle.Render("Select a membership to see its posts")
	}
	out := h + "\n" + sub + "\n\n"

	switch {
	case loading:
		return out + spinnerView + " loading posts…"
	case errMsg != "":
		return out + styles.ErrorStyle.Render("⚠ "+errMsg)
	case len(posts) == 0:
		return out + styles.MutedStyle.Render("No posts.")
	}

	var items []string
	for i, p := range posts {
		marker := "  "
		titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#e1a2aa"))
		if i == selectedIdx {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("▶ ")
			titleStyle = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true)
		}
		thread := p.ThreadName
		if thread == "" {
			thread = "thread #" + p.ThreadID
		}
		head := titleStyle.Render(helpers.Truncate(thread, 48)) + "  " +
			styles.MutedStyle.Render(fmt.Sprintf("#%s • %s • %s", p.ID, helpers.ShortDate(p.CreatedAt), p.Status))
		body := lipgloss.NewStyle().Foreground(styles.CText).Render(helpers.Truncate(strings.ReplaceAll(p.Text, "\n", " "), 80))
		items = append(items, marker+head+"\n    "+body)
	}
	return out + strings.Join(items, "\n\n")
}
