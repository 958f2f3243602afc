package member

import (
	"fmt"
	"math/big"
	"strings"

	"pioneer-tui/helpers"
	"pioneer-tui/query"
	"pioneer-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for member details view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("c") + " copy controller",
		styles.Key("e") + " edit",
		styles.Key("t") + " transfer",
		styles.Key("r") + " refresh",
		styles.Key("l") + " logger",
		styles.Key("Esc") + " back",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// Badges renders the verified, founding member and council badges
func Badges(m query.Member) string {
	var out []string
	if m.IsVerified {
		out = append(out, styles.BadgeStyle.Background(styles.CAccent).Render("✓ verified"))
	}
	if m.IsFoundingMember {
		out = append(out, styles.BadgeStyle.Background(styles.CGold).Render("founder"))
	}
	if m.IsCouncilMember {
		out = append(out, styles.BadgeStyle.Background(styles.CAccent2).Render("council"))
	}
	if len(m.Roles) > 0 {
		out = append(out, styles.BadgeStyle.Background(styles.CWarn).Render(fmt.Sprintf("%d roles", len(m.Roles))))
	}
	return strings.Join(out, " ")
}

// Info renders the one line member summary used in lists: handle, badges and controller account
func Info(m query.Member) string {
	handle := lipgloss.NewStyle().Foreground(styles.CText).Bold(true).Render(m.Handle)
	if m.Name != "" {
		handle += styles.MutedStyle.Render(" (" + m.Name + ")")
	}
	if b := Badges(m); b != "" {
		handle += "  " + b
	}
	return handle + "\n  " + helpers.FadeString(helpers.ShortenAddr(m.ControllerAccount), "#F25D94", "#EDFF82")
}

// Render renders the member details view
func Render(m query.Member, balances map[string]*big.Int, symbol string, decimals int32, copiedMsg string) string {
	h := styles.TitleStyle.Render("Member #" + m.ID + " " + m.Handle)

	sub := Badges(m)
	if copiedMsg != "" {
		sub += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(copiedMsg)
	}

	label := func(s string) string {
		return lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Width(20).Render(s)
	}
	value := func(s string) string {
		if s == "" {
			return styles.MutedStyle.Render("–")
		}
		return lipgloss.NewStyle().Foreground(styles.CText).Render(s)
	}

	lines := []string{h, sub, ""}
	lines = append(lines,
		label("Name")+value(m.Name),
		label("About")+value(m.About),
		label("Avatar")+value(m.Avatar),
		label("Member since")+value(helpers.ShortDate(m.CreatedAt)),
		label("Invites")+value(fmt.Sprint(m.InviteCount)),
		"",
		styles.MutedStyle.Render("Accounts"),
	)

	for _, addr := range m.Accounts() {
		kind := "bound"
		switch addr {
		case m.RootAccount:
			kind = "root"
		case m.ControllerAccount:
			kind = "controller"
		}
		lines = append(lines, fmt.Sprintf("%-12s %s  %s",
			lipgloss.NewStyle().Foreground(styles.CAccent).Render(kind),
			lipgloss.NewStyle().Foreground(styles.CText).Render(addr),
			lipgloss.NewStyle().Foreground(styles.CMuted).Render(helpers.FormatTokens(balances[addr], decimals, symbol)),
		))
	}

	if len(m.Roles) > 0 {
		lines = append(lines, "", styles.MutedStyle.Render("Roles"))
		for _, r := range m.Roles {
			role := "worker"
			if r.IsLead {
				role = "lead"
			}
			lines = append(lines, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Foreground(styles.CWarn).Render(r.GroupID), role))
		}
	}

	return strings.Join(lines, "\n")
}
