package home

import (
	"fmt"
	"strings"

	"pioneer-tui/styles"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Selection holds the value picked in the home menu
var Selection string

// Menu entries, also used as the selection values
const (
	Memberships   = "memberships"
	WorkingGroups = "groups"
	Council       = "council"
	Forum         = "forum"
	Settings      = "settings"
)

// Summary is what the home page shows next to the menu
type Summary struct {
	Member      string
	Accounts    int
	Memberships int
	Chain       string
}

// CreateForm creates the home menu form
func CreateForm() *huh.Form {
	Selection = ""

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(
					huh.NewOption("My Memberships", Memberships),
					huh.NewOption("Working Groups", WorkingGroups),
					huh.NewOption("Council", Council),
					huh.NewOption("Forum", Forum),
					huh.NewOption("Settings", Settings),
				).
				Title("Pioneer").
				Description("Select a section").
				Value(&Selection),
		),
	).WithTheme(huh.ThemeCatppuccin())

	form.Init()
	return form
}

func renderSummary(s Summary) string {
	label := lipgloss.NewStyle().Foreground(styles.CMuted).Width(14)
	value := lipgloss.NewStyle().Foreground(styles.CText)

	member := s.Member
	if member == "" {
		member = "none"
	}
	chain := s.Chain
	if chain == "" {
		chain = "not connected"
	}
	rows := []string{
		label.Render("Chain") + value.Render(chain),
		label.Render("Member") + value.Render(member),
		label.Render("Memberships") + value.Render(fmt.Sprint(s.Memberships)),
		label.Render("Accounts") + value.Render(fmt.Sprint(s.Accounts)),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 2).
		MarginLeft(4).
		Render(strings.Join(rows, "\n"))
}

// Render renders the menu with the summary on its right
func Render(form *huh.Form, s Summary) string {
	if form == nil {
		return "Loading menu..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, form.View(), renderSummary(s))
}

// Nav returns the navigation bar for home view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " select",
		styles.Key("Enter") + " go",
		styles.Key("l") + " logger",
		styles.Key("q") + " quit",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}
