package settings

import (
	"strings"

	"pioneer-tui/config"
	"pioneer-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for settings view
func Nav(width int, settingsMode string) string {
	var left string
	if settingsMode == "add" || settingsMode == "edit" {
		left = strings.Join([]string{
			styles.Key("l") + " debug log",
			styles.Key("Esc") + " cancel",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("↑/↓") + " select",
			styles.Key("Enter") + " activate",
			styles.Key("a") + " add",
			styles.Key("e") + " edit",
			styles.Key("d") + " delete",
			styles.Key("h") + " home",
			styles.Key("l") + " debug log",
			styles.Key("Esc") + " back",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}

var kindTitles = []struct {
	kind  config.EndpointKind
	title string
}{
	{config.KindNode, "Chain nodes"},
	{config.KindQuery, "Query nodes"},
	{config.KindSigner, "Signers"},
}

// Render renders the endpoint settings view. selectedIdx indexes endpoints.
func Render(endpoints []config.Endpoint, selectedIdx int) string {
	h := styles.TitleStyle.Render("Settings")
	lines := []string{h, ""}

	if len(endpoints) == 0 {
		lines = append(lines, styles.MutedStyle.Render("No endpoints configured."))
		lines = append(lines, "")
		lines = append(lines, styles.MutedStyle.Render("Press ")+styles.Key("a")+styles.MutedStyle.Render(" to add your first endpoint."))
		return strings.Join(lines, "\n")
	}

	for _, kt := range kindTitles {
		lines = append(lines, styles.MutedStyle.Render(kt.title+":"))
		lines = append(lines, "")
		empty := true
		for i, e := range endpoints {
			if e.Kind != kt.kind {
				continue
			}
			empty = false

			var marker string
			if e.Active {
				marker = lipgloss.NewStyle().Foreground(styles.CAccent).Render("● ")
			} else {
				marker = styles.MutedStyle.Render("○ ")
			}

			nameStyle := lipgloss.NewStyle().Foreground(styles.CText)
			urlStyle := lipgloss.NewStyle().Foreground(styles.CMuted)

			if i == selectedIdx {
				nameStyle = nameStyle.Background(styles.CPanel).Foreground(styles.CAccent2).Bold(true)
				urlStyle = urlStyle.Background(styles.CPanel)
				marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Render("▶ ")
			}

			lines = append(lines, marker+nameStyle.Render(e.Name))
			lines = append(lines, "  "+urlStyle.Render(e.URL))
		}
		if empty {
			lines = append(lines, styles.MutedStyle.Render("  none"))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// Order returns the endpoint indexes in the order Render lists them
func Order(endpoints []config.Endpoint) []int {
	var out []int
	for _, kt := range kindTitles {
		for i, e := range endpoints {
			if e.Kind == kt.kind {
				out = append(out, i)
			}
		}
	}
	return out
}

// Move returns the endpoint index delta steps away from selectedIdx in display order
func Move(endpoints []config.Endpoint, selectedIdx, delta int) int {
	order := Order(endpoints)
	if len(order) == 0 {
		return 0
	}
	pos := 0
	for p, i := range order {
		if i == selectedIdx {
			pos = p
			break
		}
	}
	pos += delta
	if pos < 0 {
		pos = 0
	}
	if pos >= len(order) {
		pos = len(order) - 1
	}
	return order[pos]
}
