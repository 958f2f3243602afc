package memberships

import (
	"fmt"
	"math/big"
	"strings"

	"pioneer-tui/config"
	"pioneer-tui/helpers"
	"pioneer-tui/query"
	"pioneer-tui/styles"
	"pioneer-tui/views/member"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for memberships view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " move",
		styles.Key("Enter") + " open",
		styles.Key("Space") + " set active",
		styles.Key("m") + " switch",
		styles.Key("e") + " edit",
		styles.Key("t") + " transfer",
		styles.Key("a") + " add account",
		styles.Key("d") + " remove account",
		styles.Key("r") + " refresh",
		styles.Key("h") + " home",
		styles.Key("l") + " logger",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// RenderList renders the membership list with the selected entry highlighted
func RenderList(members []query.Member, selectedIdx int, activeID string) string {
	if len(members) == 0 {
		return styles.MutedStyle.Render("No memberships found for your accounts. Press 'a' to add an account.")
	}

	var items []string
	for i, m := range members {
		marker := "  "
		if i == selectedIdx {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("▶ ")
		}
		if m.ID == activeID {
			marker += lipgloss.NewStyle().Foreground(styles.CAccent).Render("✓ ")
		} else {
			marker += "  "
		}
		items = append(items, marker+strings.ReplaceAll(member.Info(m), "\n", "\n    "))
	}
	return strings.Join(items, "\n\n")
}

// RenderAccounts renders the configured accounts with their transferable balances
func RenderAccounts(accounts []config.AccountEntry, balances map[string]*big.Int, symbol string, decimals int32) string {
	if len(accounts) == 0 {
		return styles.MutedStyle.Render("No accounts configured.")
	}
	var rows []string
	for _, a := range accounts {
		name := a.Name
		if name == "" {
			name = helpers.ShortenAddr(a.Address)
		}
		rows = append(rows, fmt.Sprintf("%s  %s",
			lipgloss.NewStyle().Foreground(lipgloss.Color("#e1a2aa")).Width(18).Render(helpers.Truncate(name, 18)),
			lipgloss.NewStyle().Foreground(styles.CText).Render(helpers.FormatTokens(balances[a.Address], decimals, symbol)),
		))
	}
	return strings.Join(rows, "\n")
}

// Render renders the full memberships view
func Render(members []query.Member, selectedIdx int, activeID string, accounts []config.AccountEntry, balances map[string]*big.Int, symbol string, decimals int32, loading bool, spinnerView string) string {
	header := styles.TitleStyle.Render("My Memberships")
	subtitle := styles.MutedStyle.Render("Memberships controlled by your accounts")

	list := RenderList(members, selectedIdx, activeID)
	if loading {
		list = spinnerView + " loading memberships…"
	}

	statusBar := styles.MutedStyle.Render(fmt.Sprintf("%d memberships • %d accounts", len(members), len(accounts)))

	return header + "\n" + subtitle + "\n\n" + list + "\n\n" +
		styles.TitleStyle.Render("Accounts") + "\n" + RenderAccounts(accounts, balances, symbol, decimals) + "\n\n" + statusBar
}
