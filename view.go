package main

import (
	"strings"
	"time"

	"pioneer-tui/config"
	"pioneer-tui/helpers"
	"pioneer-tui/styles"
	"pioneer-tui/views/council"
	"pioneer-tui/views/forum"
	"pioneer-tui/views/groups"
	"pioneer-tui/views/home"
	logview "pioneer-tui/views/log"
	"pioneer-tui/views/member"
	"pioneer-tui/views/memberships"
	"pioneer-tui/views/modals"
	"pioneer-tui/views/settings"

	"github.com/charmbracelet/lipgloss"
)

// headerMemberY is the screen row of the active member in the header
const headerMemberY = 2

// -------------------- VIEW --------------------

func (m model) renderDeleteDialog() string {
	var (
		dialogBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#874BFD")).
				Padding(1, 0).
				BorderTop(true).
				BorderLeft(true).
				BorderRight(true).
				BorderBottom(true)

		buttonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(lipgloss.Color("#888B7E")).
				Padding(0, 3).
				MarginTop(1)

		activeButtonStyle = buttonStyle.
					Foreground(lipgloss.Color("#FFF7DB")).
					Background(lipgloss.Color("#F25D94")).
					MarginRight(2).
					Underline(true)
	)
	what := "the account "
	if m.deleteDialogEndpoint {
		what = "the endpoint "
	}
	msg := helpers.FadeString("Are you sure you want to remove "+what+m.deleteDialogLabel+"?", "#F25D94", "#EDFF82")
	question := lipgloss.NewStyle().Width(50).Align(lipgloss.Center).Render(msg)

	// Apply active style to the selected button
	var okButton, cancelButton string
	if m.deleteDialogYesSelected {
		okButton = activeButtonStyle.Render("Yes")
		cancelButton = buttonStyle.Render("No")
	} else {
		okButton = buttonStyle.MarginRight(2).Render("Yes")
		cancelButton = activeButtonStyle.MarginRight(0).Render("No")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top, okButton, cancelButton)
	ui := lipgloss.JoinVertical(lipgloss.Center, question, buttons)

	return modals.Place(m.w, m.h, dialogBoxStyle.Render(ui))
}

// statusDot renders a connection state as a colored dot and label
func statusDot(ok, pending bool, label string) string {
	icon, c := "○", lipgloss.Color("#c01c28")
	switch {
	case pending:
		c = cWarn
	case ok:
		icon, c = "●", cAccent
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(icon + " " + label)
}

func (m model) globalHeader() string {
	availableWidth := helpers.Max(0, m.w-8) // Account for panel padding

	// Active member, double-click opens the switcher
	var memberDisplay string
	if mem, ok := m.activeMember(); ok {
		memberDisplay = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true).
			Render("Member: " + helpers.FadeString(mem.Handle, "#F25D94", "#EDFF82"))
	} else {
		memberDisplay = lipgloss.NewStyle().
			Foreground(cMuted).
			Render("Member: No selection")
	}

	nodeLabel := "No node"
	if e, ok := config.ActiveEndpoint(m.endpoints, config.KindNode); ok {
		nodeLabel = e.Name
	}
	switch {
	case m.nodeConnecting:
		nodeLabel = "Connecting..."
	case !m.nodeConnected && nodeLabel != "No node":
		nodeLabel = "Connection Failed"
	}
	status := statusDot(m.nodeConnected, m.nodeConnecting, nodeLabel) + "  " +
		statusDot(m.qn != nil, false, "Query") + "  " +
		statusDot(m.signer != nil, false, "Signer")

	// Center title
	titleText := lipgloss.NewStyle().
		Bold(true).
		Render(helpers.FadeString("pioneer", "#7EE787", "#82CFFD"))

	// Calculate widths
	memberWidth := lipgloss.Width(memberDisplay)
	statusWidth := lipgloss.Width(status)
	titleWidth := lipgloss.Width(titleText)
	totalOtherWidth := memberWidth + statusWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = memberDisplay + "\n" + titleText + "\n" + status
	} else {
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		leftSpacer := strings.Repeat(" ", helpers.Max(1, leftPadding))
		rightSpacer := strings.Repeat(" ", helpers.Max(1, rightPadding))

		headerLine = memberDisplay + leftSpacer + titleText + rightSpacer + status
	}

	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

// renderAddAccount is the inline form shown while adding an account
func (m model) renderAddAccount() string {
	inputView := m.input.View() + "\n" + m.nicknameInput.View() + "\n"

	inputView += hotkeyStyle.Render("Tab") + " next field   " +
		hotkeyStyle.Render("Enter") + " next/save   " +
		hotkeyStyle.Render("Esc") + " cancel   " +
		hotkeyStyle.Render("Ctrl+v") + " paste"

	// Show error message if present and recent
	if m.addError != "" && time.Since(m.addErrTime) < 3*time.Second {
		errorStyle := lipgloss.NewStyle().Foreground(cWarn).Bold(true)
		inputView += "\n" + errorStyle.Render(m.addError)
	}

	return "\n\n" + panelStyle.BorderForeground(cAccent2).Render(inputView)
}

func (m *model) View() string {
	globalHdr := m.globalHeader()
	headerPanel := panelStyle.Width(helpers.Max(0, m.w-2)).Render(globalHdr)
	fullWidth := helpers.Max(0, m.w-2)

	var pageContent string
	var nav string

	switch m.activePage {
	case config.PageHome:
		summary := home.Summary{Accounts: len(m.accounts), Memberships: len(m.members)}
		if mem, ok := m.activeMember(); ok {
			summary.Member = mem.Handle
		}
		if m.node != nil {
			summary.Chain = m.node.Chain
		}
		pageContent = panelStyle.Width(fullWidth).Render(home.Render(m.homeForm, summary))
		nav = home.Nav(fullWidth)

	case config.PageMemberships:
		content := memberships.Render(m.members, m.selectedMember, m.activeMemberID, m.accounts,
			m.balances, m.symbol, m.decimals, m.membersLoading, m.spin.View())
		content += "\n" + styles.MutedStyle.Render("Balances updated "+helpers.LoadedAt(m.balancesAt, m.membersLoading))
		if m.adding {
			content += m.renderAddAccount()
		}

		if mem, ok := m.selectedMemberOrMember(); ok && m.w >= 100 {
			listWidth := helpers.Max(0, (m.w*5)/10-2)
			detailsWidth := helpers.Max(0, (m.w*5)/10-2)

			leftPanel := panelStyle.Width(listWidth).Render(content)
			rightPanel := panelStyle.
				Width(detailsWidth + 1).
				Height(helpers.Max(0, lipgloss.Height(leftPanel)-2)).
				Render(member.Render(mem, m.balances, m.symbol, m.decimals, ""))
			pageContent = lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
		} else {
			pageContent = panelStyle.Width(fullWidth).Render(content)
		}
		nav = memberships.Nav(fullWidth)

	case config.PageMember:
		content := styles.MutedStyle.Render("No membership selected.")
		if mem, ok := m.selectedMemberOrMember(); ok {
			content = member.Render(mem, m.balances, m.symbol, m.decimals, m.copiedMsg)
		}
		pageContent = panelStyle.Width(fullWidth).Render(content)
		nav = member.Nav(fullWidth)

	case config.PageWorkingGroups:
		content := groups.Render(groups.View{
			Tab:        m.groupsTab,
			Table:      m.groupsTable,
			Groups:     m.groups,
			Selected:   m.selectedGroup,
			Activities: m.activities,
			Loading:    m.groupsLoading,
			Spinner:    m.spin.View(),
			Err:        m.groupsErr,
			Symbol:     m.symbol,
			Decimals:   m.decimals,
		})
		pageContent = panelStyle.Width(fullWidth).Render(content)
		nav = groups.Nav(fullWidth, m.groupsTab)

	case config.PageCouncil:
		content := council.Render(m.councilsTable, m.councilMembersTable, m.showCouncilMembers,
			m.councilID, m.councilLoading, m.spin.View(), m.councilErr)
		pageContent = panelStyle.Width(fullWidth).Render(content)
		nav = council.Nav(fullWidth, m.showCouncilMembers)

	case config.PageForum:
		handle := ""
		if mem, ok := m.activeMember(); ok {
			handle = mem.Handle
		}
		content := forum.Render(m.posts, m.selectedPost, handle, m.postsLoading, m.spin.View(), m.postsErr)
		pageContent = panelStyle.Width(fullWidth).Render(content)
		nav = forum.Nav(fullWidth)

	case config.PageSettings:
		settingsContent := settings.Render(m.endpoints, m.selectedEndpointIdx)

		if (m.settingsMode == "add" || m.settingsMode == "edit") && m.form != nil {
			settingsContent = styles.TitleStyle.Render("Endpoint") + "\n\n" + m.form.View()
		}

		pageContent = panelStyle.Width(fullWidth).Render(settingsContent)
		nav = settings.Nav(fullWidth, m.settingsMode)
	}

	if m.showDeleteDialog {
		return m.renderDeleteDialog()
	}

	parts := []string{headerPanel, pageContent, nav}
	if m.logEnabled {
		m.logViewport.Height = logview.Height(m.h)
		parts = append(parts, logview.Render(m.w, m.h, m.logReady, m.logSpinner.View(), m.logViewport))
	}
	baseView := appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	if m.flow != nil {
		// the modal replaces the page while it is open
		return modals.Place(m.w, m.h, m.flow.View(m.flowContext()))
	}

	return baseView
}
