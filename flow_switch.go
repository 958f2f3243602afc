package main

import (
	"strings"

	"pioneer-tui/query"
	"pioneer-tui/styles"
	"pioneer-tui/views/member"
	"pioneer-tui/views/modals"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// switchMemberFlow picks the active membership. It signs nothing.
type switchMemberFlow struct {
	selected int
}

func newSwitchMemberFlow(members []query.Member, activeID string) *switchMemberFlow {
	f := &switchMemberFlow{}
	for i, m := range members {
		if m.ID == activeID {
			f.selected = i
		}
	}
	return f
}

func (f *switchMemberFlow) Init(ctx flowContext) tea.Cmd { return nil }

func (f *switchMemberFlow) Update(ctx flowContext, msg tea.Msg) (tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	switch keyMsg.String() {
	case "esc", "m":
		return nil, true
	case "up", "k":
		if f.selected > 0 {
			f.selected--
		}
	case "down", "j":
		if f.selected < len(ctx.members)-1 {
			f.selected++
		}
	case "enter":
		if f.selected >= len(ctx.members) {
			return nil, true
		}
		id := ctx.members[f.selected].ID
		return func() tea.Msg { return memberSwitchedMsg{memberID: id} }, true
	}
	return nil, false
}

func (f *switchMemberFlow) View(ctx flowContext) string {
	if len(ctx.members) == 0 {
		return modals.Frame("Switch member",
			styles.MutedStyle.Render("No memberships found for your accounts.")+modals.Hints(styles.Key("Esc")+" close"))
	}

	var rows []string
	for i, m := range ctx.members {
		row := member.Info(m)
		if m.ID == ctx.member.ID {
			row += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render("● active")
		}
		st := lipgloss.NewStyle().Padding(0, 1)
		if i == f.selected {
			st = st.Background(styles.CPanel).BorderLeft(true).BorderStyle(lipgloss.ThickBorder()).BorderForeground(styles.CAccent2)
		}
		rows = append(rows, st.Render(row))
	}
	return modals.Frame("Switch member", strings.Join(rows, "\n")+
		modals.Hints(styles.Key("↑/↓")+" select", styles.Key("Enter")+" switch", styles.Key("Esc")+" close"))
}
