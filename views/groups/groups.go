package groups

import (
	"fmt"
	"math/big"
	"strings"

	"pioneer-tui/activity"
	"pioneer-tui/helpers"
	"pioneer-tui/query"
	"pioneer-tui/styles"
	"pioneer-tui/views/tabs"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Tab indexes
const (
	TabOpenings = iota
	TabWorkingGroups
	TabApplications
	TabRoles
)

// Tabs are the titles of the working groups page tabs
var Tabs = []string{"Openings", "Working Groups", "My Applications", "My Roles"}

// Nav returns the navigation bar for the working groups view
func Nav(width, tab int) string {
	keys := []string{
		styles.Key("Tab") + " next tab",
		styles.Key("↑/↓") + " move",
	}
	if tab == TabWorkingGroups {
		keys = append(keys, styles.Key("←/→")+" select group", styles.Key("n")+" new opening")
	}
	keys = append(keys,
		styles.Key("r")+" refresh",
		styles.Key("h")+" home",
		styles.Key("l")+" logger",
		styles.Key("Esc")+" back",
	)
	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

// Columns returns the table columns of a tab
func Columns(tab int) []table.Column {
	switch tab {
	case TabOpenings:
		return []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Group", Width: 14},
			{Title: "Title", Width: 28},
			{Title: "Reward/block", Width: 16},
			{Title: "Stake", Width: 16},
			{Title: "Apps", Width: 6},
			{Title: "Status", Width: 10},
		}
	case TabApplications:
		return []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Opening", Width: 8},
			{Title: "Group", Width: 14},
			{Title: "Stake", Width: 16},
			{Title: "Status", Width: 12},
			{Title: "Applied", Width: 12},
		}
	case TabRoles:
		return []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Group", Width: 14},
			{Title: "Role", Width: 8},
			{Title: "Reward/block", Width: 16},
			{Title: "Stake", Width: 16},
			{Title: "Status", Width: 10},
			{Title: "Hired", Width: 12},
		}
	}
	return nil
}

// OpeningRows computes the openings table rows
func OpeningRows(openings []query.Opening, symbol string, decimals int32) []table.Row {
	rows := make([]table.Row, 0, len(openings))
	for _, o := range openings {
		apps := fmt.Sprint(o.Applications)
		if o.HiringLimit > 0 {
			apps = fmt.Sprintf("%d/%d", o.Applications, o.HiringLimit)
		}
		rows = append(rows, table.Row{
			o.ID,
			o.GroupName,
			helpers.Truncate(o.Title, 28),
			helpers.FormatTokens(o.RewardPerBlock, decimals, symbol),
			helpers.FormatTokens(o.StakeAmount, decimals, symbol),
			apps,
			o.Status,
		})
	}
	return rows
}

// ApplicationRows computes the applications table rows
func ApplicationRows(apps []query.Application, symbol string, decimals int32) []table.Row {
	rows := make([]table.Row, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, table.Row{
			a.ID,
			a.OpeningID,
			a.GroupName,
			helpers.FormatTokens(a.Stake, decimals, symbol),
			a.Status,
			helpers.ShortDate(a.CreatedAt),
		})
	}
	return rows
}

// RoleRows computes the roles table rows
func RoleRows(roles []query.Worker, symbol string, decimals int32) []table.Row {
	rows := make([]table.Row, 0, len(roles))
	for _, w := range roles {
		role := "Worker"
		if w.IsLead {
			role = "Lead"
		}
		rows = append(rows, table.Row{
			w.ID,
			w.GroupName,
			role,
			helpers.FormatTokens(w.RewardPerBlock, decimals, symbol),
			helpers.FormatTokens(w.Stake, decimals, symbol),
			w.Status,
			helpers.ShortDate(w.HiredAt),
		})
	}
	return rows
}

// NewTable builds the table for a tab
func NewTable(tab int, rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(Columns(tab)),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(helpers.Max(3, helpers.Min(len(rows)+1, height))),
	)
	t.SetStyles(styles.TableStyles())
	return t
}

func cardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(28).
		Height(6).
		Align(lipgloss.Center, lipgloss.Center).
		Background(styles.CPanel).
		Padding(1, 2).
		BorderStyle(lipgloss.HiddenBorder())
}

func cardFocusedStyle() lipgloss.Style {
	return cardStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("69"))
}

func renderCard(g query.WorkingGroup, focused bool, symbol string, decimals int32) string {
	name := lipgloss.NewStyle().
		Foreground(styles.CText).
		Bold(true).
		Render(g.Name)

	budget := helpers.FadeString(helpers.FormatTokens(g.Budget, decimals, symbol), "#F25D94", "#EDFF82")
	workers := styles.MutedStyle.Render(fmt.Sprintf("%d workers", g.Workers))

	lead := styles.MutedStyle.Render("no lead")
	if g.LeadID != "" {
		lead = lipgloss.NewStyle().Foreground(styles.CAccent).Render("lead #" + g.LeadID)
	}

	content := name + "\n\n" + budget + "\n" + workers + "\n" + lead
	if focused {
		return cardFocusedStyle().Render(content)
	}
	return cardStyle().Render(content)
}

// RenderCards renders the working groups as a grid of cards
func RenderCards(groups []query.WorkingGroup, selectedIdx int, symbol string, decimals int32) string {
	if len(groups) == 0 {
		return styles.MutedStyle.Render("No working groups found.")
	}

	const columnsPerRow = 3
	var rows []string
	for i := 0; i < len(groups); i += columnsPerRow {
		var cards []string
		for j := 0; j < columnsPerRow && i+j < len(groups); j++ {
			cards = append(cards, renderCard(groups[i+j], i+j == selectedIdx, symbol, decimals))
			if j < columnsPerRow-1 && i+j+1 < len(groups) {
				cards = append(cards, "  ")
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

// RenderActivities renders the newest limit entries of an activity feed
func RenderActivities(acts []activity.Activity, limit int) string {
	if len(acts) == 0 {
		return styles.MutedStyle.Render("No activity yet.")
	}
	if limit > 0 && len(acts) > limit {
		acts = acts[:limit]
	}
	icon := map[activity.Kind]string{
		activity.AppliedOnOpening:     "→",
		activity.ApplicationWithdrawn: "←",
		activity.BudgetSpending:       "$",
	}
	var lines []string
	for _, a := range acts {
		lines = append(lines, fmt.Sprintf("%s %s  %s",
			lipgloss.NewStyle().Foreground(styles.CAccent).Render(icon[a.Kind]),
			styles.MutedStyle.Render(helpers.ShortDate(a.CreatedAt)),
			lipgloss.NewStyle().Foreground(styles.CText).Render(a.Text),
		))
	}
	return strings.Join(lines, "\n")
}

// View is everything the working groups page renders
type View struct {
	Tab        int
	Table      table.Model
	Groups     []query.WorkingGroup
	Selected   int
	Activities []activity.Activity
	Loading    bool
	Spinner    string
	Err        string
	Symbol     string
	Decimals   int32
}

// Render renders the working groups page
func Render(v View) string {
	h := styles.TitleStyle.Render("Working Groups")
	out := h + "\n\n" + tabs.Render(Tabs, v.Tab) + "\n\n"

	switch {
	case v.Loading:
		return out + v.Spinner + " loading…"
	case v.Err != "":
		return out + styles.ErrorStyle.Render("⚠ "+v.Err)
	}

	if v.Tab == TabWorkingGroups {
		out += styles.MutedStyle.Render("Total budget: "+helpers.FormatTokens(Budget(v.Groups), v.Decimals, v.Symbol)) + "\n\n"
		out += RenderCards(v.Groups, v.Selected, v.Symbol, v.Decimals)
		if v.Selected >= 0 && v.Selected < len(v.Groups) {
			out += "\n\n" + styles.TitleStyle.Render("Activity • "+v.Groups[v.Selected].Name) + "\n" + RenderActivities(v.Activities, 10)
		}
		return out
	}

	if len(v.Table.Rows()) == 0 {
		return out + styles.MutedStyle.Render("Nothing to show.")
	}
	return out + v.Table.View()
}

// Budget sums the budgets of groups, skipping unknown ones
func Budget(groups []query.WorkingGroup) *big.Int {
	total := new(big.Int)
	for _, g := range groups {
		if g.Budget != nil {
			total.Add(total, g.Budget)
		}
	}
	return total
}
