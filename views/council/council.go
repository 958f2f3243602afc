package council

import (
	"fmt"
	"strings"

	"pioneer-tui/helpers"
	"pioneer-tui/query"
	"pioneer-tui/styles"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the council view
func Nav(width int, showingMembers bool) string {
	var left string
	if showingMembers {
		left = strings.Join([]string{
			styles.Key("↑/↓") + " move",
			styles.Key("Esc") + " past councils",
			styles.Key("l") + " logger",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("↑/↓") + " move",
			styles.Key("Enter") + " members",
			styles.Key("r") + " refresh",
			styles.Key("h") + " home",
			styles.Key("l") + " logger",
			styles.Key("Esc") + " back",
		}, "   ")
	}
	return styles.NavStyle.Width(width).Render(left)
}

// CouncilRows computes the past councils table rows
func CouncilRows(councils []query.Council, symbol string, decimals int32) []table.Row {
	rows := make([]table.Row, 0, len(councils))
	for _, c := range councils {
		rows = append(rows, table.Row{
			"#" + c.ID,
			helpers.ShortDate(c.EndedAt),
			fmt.Sprint(c.Members),
			helpers.FormatTokens(c.Spendings, decimals, symbol),
		})
	}
	return rows
}

// MemberRows computes the past council members table rows
func MemberRows(members []query.PastCouncilMember) []table.Row {
	rows := make([]table.Row, 0, len(members))
	for _, m := range members {
		rows = append(rows, table.Row{
			m.Handle,
			fmt.Sprint(m.Approved),
			fmt.Sprint(m.Rejected),
			fmt.Sprint(m.Slashed),
			fmt.Sprint(m.Abstained),
		})
	}
	return rows
}

func newTable(columns []table.Column, rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(helpers.Max(3, helpers.Min(len(rows)+1, height))),
	)
	t.SetStyles(styles.TableStyles())
	return t
}

// NewCouncilsTable builds the past councils table
func NewCouncilsTable(councils []query.Council, symbol string, decimals int32, height int) table.Model {
	return newTable([]table.Column{
		{Title: "Council", Width: 10},
		{Title: "Ended", Width: 14},
		{Title: "Members", Width: 9},
		{Title: "Spent", Width: 20},
	}, CouncilRows(councils, symbol, decimals), height)
}

// NewMembersTable builds the past council members table
func NewMembersTable(members []query.PastCouncilMember, height int) table.Model {
	return newTable([]table.Column{
		{Title: "Member", Width: 20},
		{Title: "Approved", Width: 10},
		{Title: "Rejected", Width: 10},
		{Title: "Slashed", Width: 10},
		{Title: "Abstained", Width: 10},
	}, MemberRows(members), height)
}

// Render renders the council page. members is the selected term's table when
// showingMembers is set.
func Render(councils table.Model, members table.Model, showingMembers bool, councilID string, loading bool, spinnerView, errMsg string) string {
	h := styles.TitleStyle.Render("Council")
	sub := styles.MutedStyle.Render("Past councils")
	if showingMembers {
		sub = styles.MutedStyle.Render("Past council #" + councilID + " • votes cast by its members")
	}
	out := h + "\n" + sub + "\n\n"

	switch {
	case loading:
		return out + spinnerView + " loading…"
	case errMsg != "":
		return out + styles.ErrorStyle.Render("⚠ "+errMsg)
	}

	t := councils
	if showingMembers {
		t = members
	}
	if len(t.Rows()) == 0 {
		return out + lipgloss.NewStyle().Foreground(styles.CMuted).Render("Nothing to show.")
	}
	return out + t.View()
}
