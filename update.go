package main

import (
	"fmt"
	"strings"
	"time"

	"pioneer-tui/activity"
	"pioneer-tui/chain"
	"pioneer-tui/config"
	"pioneer-tui/helpers"
	"pioneer-tui/query"
	"pioneer-tui/views/council"
	"pioneer-tui/views/groups"
	"pioneer-tui/views/home"
	"pioneer-tui/views/settings"
	"pioneer-tui/views/tabs"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- UPDATE --------------------

// Temporary variables for form data
var (
	tempEndpointName string
	tempEndpointURL  string
	tempEndpointKind string
)

func endpointKindOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Chain node (WebSocket RPC)", string(config.KindNode)),
		huh.NewOption("Query node (GraphQL)", string(config.KindQuery)),
		huh.NewOption("Signer", string(config.KindSigner)),
	}
}

func validateEndpointURL(s string) error {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"ws://", "wss://", "http://", "https://"} {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			return nil
		}
	}
	return fmt.Errorf("URL must start with ws://, wss://, http:// or https://")
}

func (m *model) createEndpointForm() {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("A friendly name for this endpoint").
				Value(&tempEndpointName).
				Placeholder("My node").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("URL").
				Description("wss://… for nodes, https://…/graphql for query nodes").
				Value(&tempEndpointURL).
				Placeholder("wss://rpc.joystream.org").
				Validate(validateEndpointURL),

			huh.NewSelect[string]().
				Title("Kind").
				Options(endpointKindOptions()...).
				Value(&tempEndpointKind),
		),
	).WithTheme(huh.ThemeCatppuccin())

	// Initialize the form
	m.form.Init()
}

func (m *model) createAddEndpointForm() {
	tempEndpointName = ""
	tempEndpointURL = ""
	tempEndpointKind = string(config.KindNode)
	m.createEndpointForm()
}

func (m *model) createEditEndpointForm(idx int) {
	if idx < 0 || idx >= len(m.endpoints) {
		return
	}
	e := m.endpoints[idx]
	tempEndpointName = e.Name
	tempEndpointURL = e.URL
	tempEndpointKind = string(e.Kind)
	m.createEndpointForm()
}

// updateSettingsForm feeds msg to the endpoint form and applies it once completed
func (m *model) updateSettingsForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.form.Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return cmd
	}
	m.form = f

	switch m.form.State {
	case huh.StateCompleted:
		e := config.Endpoint{
			Name: strings.TrimSpace(tempEndpointName),
			URL:  strings.TrimSpace(tempEndpointURL),
			Kind: config.EndpointKind(tempEndpointKind),
		}
		reconnect := m.storeEndpoint(e)
		m.settingsMode = "list"
		m.form = nil
		// Return without the form's cmd to ensure we're back in list mode
		return reconnect

	case huh.StateAborted:
		m.settingsMode = "list"
		m.form = nil
		return nil
	}
	return cmd
}

// connectEndpoint switches the matching client over to e
func (m *model) connectEndpoint(e config.Endpoint) tea.Cmd {
	switch e.Kind {
	case config.KindNode:
		if m.node != nil {
			m.node.Close()
		}
		m.node = nil
		m.nodeConnected = false
		m.nodeConnecting = true
		m.addLog("info", fmt.Sprintf("Connecting to node `%s`", e.URL))
		return connectNode(e.URL)
	case config.KindSigner:
		if m.signer != nil {
			m.signer.Close()
		}
		m.signer = nil
		m.addLog("info", fmt.Sprintf("Dialing signer `%s`", e.URL))
		return dialSigner(e.URL)
	case config.KindQuery:
		m.qn = query.New(e.URL)
		m.addLog("info", fmt.Sprintf("Using query node `%s`", e.URL))
		return tea.Batch(m.refreshMembers(), m.refreshPage())
	}
	return nil
}

// storeEndpoint adds e, or replaces the selected endpoint with it in edit
// mode, and keeps one active endpoint per kind connected
func (m *model) storeEndpoint(e config.Endpoint) tea.Cmd {
	defer m.saveConfig()

	if m.settingsMode == "add" {
		m.endpoints = append(m.endpoints, e)
		m.selectedEndpointIdx = len(m.endpoints) - 1
		m.addLog("success", fmt.Sprintf("Added %s endpoint `%s` (%s)", e.Kind, e.Name, e.URL))
		// the first endpoint of a kind becomes active right away
		if _, ok := config.ActiveEndpoint(m.endpoints, e.Kind); !ok {
			m.endpoints = config.Activate(m.endpoints, m.selectedEndpointIdx)
			return m.connectEndpoint(m.endpoints[m.selectedEndpointIdx])
		}
		return nil
	}

	idx := m.selectedEndpointIdx
	if idx < 0 || idx >= len(m.endpoints) {
		return nil
	}
	old := m.endpoints[idx]
	e.Active = old.Active && old.Kind == e.Kind
	m.endpoints[idx] = e
	m.addLog("success", fmt.Sprintf("Updated endpoint `%s`", e.Name))

	if e.Active {
		if old.URL != e.URL {
			return m.connectEndpoint(e)
		}
		return nil
	}
	var cmds []tea.Cmd
	if old.Active {
		// the old kind lost its active endpoint
		cmds = append(cmds, m.replaceActive(old.Kind))
	}
	if _, ok := config.ActiveEndpoint(m.endpoints, e.Kind); !ok {
		m.endpoints = config.Activate(m.endpoints, idx)
		cmds = append(cmds, m.connectEndpoint(m.endpoints[idx]))
	}
	return tea.Batch(cmds...)
}

// replaceActive activates the first endpoint of kind, or drops the client of
// kind when no endpoint of it is left
func (m *model) replaceActive(kind config.EndpointKind) tea.Cmd {
	for i, e := range m.endpoints {
		if e.Kind == kind {
			m.endpoints = config.Activate(m.endpoints, i)
			return m.connectEndpoint(m.endpoints[i])
		}
	}
	m.disconnect(kind)
	return nil
}

// disconnect closes the client of kind
func (m *model) disconnect(kind config.EndpointKind) {
	switch kind {
	case config.KindNode:
		if m.node != nil {
			m.node.Close()
		}
		m.node = nil
		m.nodeConnected = false
		m.nodeConnecting = false
	case config.KindSigner:
		if m.signer != nil {
			m.signer.Close()
		}
		m.signer = nil
	case config.KindQuery:
		m.qn = nil
	}
	m.addLog("warning", fmt.Sprintf("No %s endpoint left, disconnected", kind))
}

// updateHomeForm feeds msg to the home menu and opens the chosen page
func (m *model) updateHomeForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.homeForm.Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return cmd
	}
	m.homeForm = f
	if m.homeForm.State != huh.StateCompleted {
		return cmd
	}

	selection := home.Selection
	m.homeForm = home.CreateForm()
	switch selection {
	case home.Memberships:
		return m.openPage(config.PageMemberships)
	case home.WorkingGroups:
		return m.openPage(config.PageWorkingGroups)
	case home.Council:
		return m.openPage(config.PageCouncil)
	case home.Forum:
		return m.openPage(config.PageForum)
	case home.Settings:
		return m.openPage(config.PageSettings)
	}
	return nil
}

// openPage switches to page and loads its data
func (m *model) openPage(page config.Page) tea.Cmd {
	m.activePage = page
	m.addLog("debug", "Opened "+page.String())
	switch page {
	case config.PageSettings:
		m.settingsMode = "list"
		return nil
	case config.PageHome:
		return nil
	case config.PageCouncil:
		m.showCouncilMembers = false
	}
	return m.refreshPage()
}

// forward hands a message the model does not handle itself to whatever
// component is waiting for it
func (m *model) forward(msg tea.Msg) tea.Cmd {
	switch {
	case m.flow != nil:
		return m.updateFlow(msg)
	case m.activePage == config.PageSettings && m.form != nil:
		return m.updateSettingsForm(msg)
	case m.activePage == config.PageHome && m.homeForm != nil:
		return m.updateHomeForm(msg)
	case m.adding:
		var cmd tea.Cmd
		if m.focusedInput == 0 {
			m.input, cmd = m.input.Update(msg)
		} else {
			m.nicknameInput, cmd = m.nicknameInput.Update(msg)
		}
		return cmd
	}
	return nil
}

// updateFlow runs the open flow and closes it once done
func (m *model) updateFlow(msg tea.Msg) tea.Cmd {
	cmd, done := m.flow.Update(m.flowContext(), msg)
	if done {
		m.flow = nil
	}
	return cmd
}

// rebuildGroupsTable refreshes the table of the active working groups tab
func (m *model) rebuildGroupsTable() {
	rows := groups.OpeningRows(m.openings, m.symbol, m.decimals)
	switch m.groupsTab {
	case groups.TabApplications:
		rows = groups.ApplicationRows(m.applications, m.symbol, m.decimals)
	case groups.TabRoles:
		rows = groups.RoleRows(m.roles, m.symbol, m.decimals)
	}
	m.groupsTable = groups.NewTable(m.groupsTab, rows, m.tableHeight())
}

// tableHeight is the number of table rows that fit on the page
func (m model) tableHeight() int {
	reserved := 14
	if m.logEnabled {
		reserved += 12
	}
	return helpers.Max(5, m.h-reserved)
}

// selectedGroupEvents loads the activity feed of the highlighted working group
func (m *model) selectedGroupEvents() tea.Cmd {
	if m.qn == nil || m.selectedGroup < 0 || m.selectedGroup >= len(m.groups) {
		return nil
	}
	id := m.groups[m.selectedGroup].ID
	if id == m.activitiesFrom {
		return nil
	}
	m.activities = nil
	return loadGroupEvents(m.qn, id)
}

// accountForMember finds the configured account controlling mem
func (m model) accountForMember(mem query.Member) (int, bool) {
	for i, a := range m.accounts {
		for _, addr := range mem.Accounts() {
			if chain.SameAccount(a.Address, addr) {
				return i, true
			}
		}
	}
	return 0, false
}

// selectedMemberOrActive is the member the memberships keys act on
func (m model) selectedMemberOrActive() (query.Member, bool) {
	if m.activePage == config.PageMemberships && m.selectedMember >= 0 && m.selectedMember < len(m.members) {
		return m.members[m.selectedMember], true
	}
	return m.activeMember()
}

// startTransfer opens the transfer modal for the account controlling mem, or
// the first configured account
func (m *model) startTransfer(mem query.Member, haveMember bool) tea.Cmd {
	accounts := m.accountAddresses()
	if len(accounts) == 0 {
		m.addLog("warning", "Add an account before transferring")
		return nil
	}
	from := accounts[0]
	if haveMember {
		if i, ok := m.accountForMember(mem); ok {
			from = m.accounts[i].Address
		}
	}
	return m.openFlow(newTransferFlow(from, accounts))
}

// setActiveMember makes id the member used by flows and member pages
func (m *model) setActiveMember(id string) tea.Cmd {
	if id == m.activeMemberID {
		return nil
	}
	m.activeMemberID = id
	m.saveConfig()
	if mem, ok := m.activeMember(); ok {
		m.addLog("success", fmt.Sprintf("Active member is now `%s`", mem.Handle))
	}
	return m.refreshPage()
}

// Update implements tea.Model and handles all state transitions
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Clear the add account error after a few seconds
	if m.addError != "" && time.Since(m.addErrTime) > 3*time.Second {
		m.addError = ""
	}

	switch msg := msg.(type) {

	case logInitMsg:
		if !m.logEnabled {
			return m, nil
		}
		// Create logger that writes to our buffer
		m.logger = log.NewWithOptions(m.logBuffer, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          "",
		})
		// Set log level and styling
		m.logger.SetLevel(log.DebugLevel)
		m.logger.SetStyles(&log.Styles{
			Timestamp: lipgloss.NewStyle().Foreground(cMuted),
			Caller:    lipgloss.NewStyle().Faint(true),
			Prefix:    lipgloss.NewStyle().Bold(true).Foreground(cAccent2),
			Message:   lipgloss.NewStyle().Foreground(cText),
			Key:       lipgloss.NewStyle().Foreground(cAccent),
			Value:     lipgloss.NewStyle().Foreground(cText),
			Separator: lipgloss.NewStyle().Faint(true),
			Levels: map[log.Level]lipgloss.Style{
				log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
				log.InfoLevel:  lipgloss.NewStyle().Foreground(cAccent2).SetString("INFO"),
				log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
				log.ErrorLevel: lipgloss.NewStyle().Foreground(cError).SetString("ERROR"),
			},
		})
		m.logReady = true
		m.addLog("info", "Logger enabled")
		return m, nil

	case logMsg:
		m.addLog(msg.level, msg.text)
		return m, nil

	case nodeConnectedMsg:
		m.nodeConnecting = false
		if msg.err != nil {
			m.node = nil
			m.nodeConnected = false
			m.addLog("error", fmt.Sprintf("Node connection failed: `%s`", msg.err.Error()))
			return m, nil
		}
		m.node = msg.client
		m.nodeConnected = true
		m.addLog("success", fmt.Sprintf("Connected to `%s` (%s)", msg.client.URL, msg.client.Chain))
		return m, m.refreshBalances()

	case signerDialedMsg:
		if msg.err != nil {
			m.signer = nil
			m.addLog("error", fmt.Sprintf("Signer unavailable: `%s`", msg.err.Error()))
			return m, nil
		}
		m.signer = msg.signer
		m.addLog("success", "Signer ready")
		return m, nil

	case membersLoadedMsg:
		m.membersLoading = false
		if msg.err != nil {
			m.addLog("error", "Loading memberships failed: "+msg.err.Error())
			return m, nil
		}
		m.members = msg.members
		if m.selectedMember >= len(m.members) {
			m.selectedMember = helpers.Max(0, len(m.members)-1)
		}
		if _, ok := m.activeMember(); !ok && len(m.members) > 0 {
			m.activeMemberID = m.members[0].ID
			m.saveConfig()
		}
		m.addLog("success", fmt.Sprintf("Loaded %d memberships", len(m.members)))
		return m, m.refreshBalances()

	case balancesLoadedMsg:
		if msg.err != nil {
			m.addLog("error", "Loading balances failed: "+msg.err.Error())
		}
		for addr, bal := range msg.balances {
			m.balances[addr] = bal
		}
		if len(msg.balances) > 0 {
			m.balancesAt = time.Now()
		}
		return m, nil

	case groupsLoadedMsg:
		m.groupsLoading = false
		if msg.err != nil {
			m.groupsErr = msg.err.Error()
			m.addLog("error", "Loading working groups failed: "+msg.err.Error())
			return m, nil
		}
		m.openings = msg.openings
		m.groups = msg.groups
		m.applications = msg.applications
		m.roles = msg.roles
		if m.selectedGroup >= len(m.groups) {
			m.selectedGroup = 0
		}
		m.activitiesFrom = ""
		m.rebuildGroupsTable()
		m.addLog("success", fmt.Sprintf("Loaded %d openings in %d working groups", len(m.openings), len(m.groups)))
		return m, m.selectedGroupEvents()

	case groupEventsLoadedMsg:
		if m.selectedGroup >= len(m.groups) || m.groups[m.selectedGroup].ID != msg.groupID {
			return m, nil
		}
		if msg.err != nil {
			m.addLog("error", "Loading activity failed: "+msg.err.Error())
			return m, nil
		}
		m.activitiesFrom = msg.groupID
		m.activities = activity.GroupActivities(msg.events)
		return m, nil

	case councilsLoadedMsg:
		m.councilLoading = false
		if msg.err != nil {
			m.councilErr = msg.err.Error()
			m.addLog("error", "Loading councils failed: "+msg.err.Error())
			return m, nil
		}
		m.councils = msg.councils
		m.councilsTable = council.NewCouncilsTable(m.councils, m.symbol, m.decimals, m.tableHeight())
		return m, nil

	case councilMembersLoadedMsg:
		if msg.councilID != m.councilID {
			return m, nil
		}
		m.councilLoading = false
		if msg.err != nil {
			m.councilErr = msg.err.Error()
			m.addLog("error", "Loading council members failed: "+msg.err.Error())
			return m, nil
		}
		m.councilMembersTable = council.NewMembersTable(msg.members, m.tableHeight())
		return m, nil

	case postsLoadedMsg:
		if msg.memberID != m.activeMemberID {
			return m, nil
		}
		m.postsLoading = false
		if msg.err != nil {
			m.postsErr = msg.err.Error()
			m.addLog("error", "Loading posts failed: "+msg.err.Error())
			return m, nil
		}
		m.posts = msg.posts
		if m.selectedPost >= len(m.posts) {
			m.selectedPost = helpers.Max(0, len(m.posts)-1)
		}
		return m, nil

	case chainDataChangedMsg:
		return m, tea.Batch(m.refreshMembers(), m.refreshBalances(), m.refreshPage())

	case memberSwitchedMsg:
		return m, m.setActiveMember(msg.memberID)

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height

		// Only initialize viewport if log is enabled
		if m.logEnabled {
			// Width accounts for border and padding
			m.logViewport.Width = helpers.Max(0, msg.Width-6)
			if m.logReady {
				m.updateLogViewport()
			}
		}
		m.groupsTable.SetHeight(m.tableHeight())
		m.councilsTable.SetHeight(m.tableHeight())
		m.councilMembersTable.SetHeight(m.tableHeight())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		var cmds []tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		// Update log spinner too if log is enabled but not ready
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case clipboardCopiedMsg:
		m.copiedMsg = "✓ Copied address to clipboard"
		m.copiedMsgTime = time.Now()
		return m, clearClipboardMsg()

	case clearClipboard:
		if time.Since(m.copiedMsgTime) >= 2*time.Second {
			m.copiedMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}

	return m, m.forward(msg)
}

// toggleLogger turns the log panel on or off
func (m *model) toggleLogger() tea.Cmd {
	m.logEnabled = !m.logEnabled
	defer m.saveConfig()
	if m.logEnabled {
		// Initialize viewport when enabling
		if m.w > 0 {
			m.logViewport.Width = m.w - 6
		}
		m.logReady = false
		return tea.Batch(initLogViewport(), m.logSpinner.Tick)
	}
	// Clear logs and de-initialize when disabling
	if m.logBuffer != nil {
		m.logBuffer.Reset()
	}
	m.logger = nil
	m.logReady = false
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	// the open modal gets every key
	if m.flow != nil {
		return m.updateFlow(msg)
	}

	if m.showDeleteDialog {
		return m.handleDeleteDialogKey(msg)
	}

	// Intercept ESC key to cancel the settings form
	if m.activePage == config.PageSettings && m.form != nil {
		if msg.String() == "esc" {
			m.settingsMode = "list"
			m.form = nil
			return nil
		}
		return m.updateSettingsForm(msg)
	}

	if m.adding {
		return m.handleAddAccountKey(msg)
	}

	// global keys
	switch msg.String() {
	case "q":
		return tea.Quit
	case "l", "L":
		return m.toggleLogger()
	case "pageup", "pagedown":
		// Allow scrolling in log viewport when enabled
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return cmd
		}
		return nil
	}

	if m.activePage == config.PageHome {
		return m.updateHomeForm(msg)
	}

	switch msg.String() {
	case "h":
		return m.openPage(config.PageHome)
	case "r":
		return tea.Batch(m.refreshPage(), m.refreshBalances())
	}

	// page-specific behavior
	switch m.activePage {
	case config.PageMemberships:
		return m.handleMembershipsKey(msg)
	case config.PageMember:
		return m.handleMemberKey(msg)
	case config.PageWorkingGroups:
		return m.handleGroupsKey(msg)
	case config.PageCouncil:
		return m.handleCouncilKey(msg)
	case config.PageForum:
		return m.handleForumKey(msg)
	case config.PageSettings:
		return m.handleSettingsKey(msg)
	}
	return nil
}

func (m *model) handleDeleteDialogKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "right", "tab":
		// Toggle between Yes and No buttons
		m.deleteDialogYesSelected = !m.deleteDialogYesSelected
		return nil
	case "esc":
		m.showDeleteDialog = false
		return nil
	case "enter":
	default:
		return nil
	}

	m.showDeleteDialog = false
	if !m.deleteDialogYesSelected {
		return nil
	}

	idx := m.deleteDialogIdx
	if m.deleteDialogEndpoint {
		if idx < 0 || idx >= len(m.endpoints) {
			return nil
		}
		removed := m.endpoints[idx]
		m.endpoints = append(m.endpoints[:idx], m.endpoints[idx+1:]...)
		if m.selectedEndpointIdx >= len(m.endpoints) && m.selectedEndpointIdx > 0 {
			m.selectedEndpointIdx--
		}
		var reconnect tea.Cmd
		if removed.Active {
			reconnect = m.replaceActive(removed.Kind)
		}
		m.saveConfig()
		m.addLog("warning", fmt.Sprintf("Deleted endpoint `%s`", m.deleteDialogLabel))
		return reconnect
	}

	if idx < 0 || idx >= len(m.accounts) {
		return nil
	}
	m.accounts = append(m.accounts[:idx], m.accounts[idx+1:]...)
	m.saveConfig()
	m.addLog("warning", fmt.Sprintf("Removed account `%s`", m.deleteDialogLabel))
	return m.refreshMembers()
}

func (m *model) startAdding() {
	m.adding = true
	m.focusedInput = 0
	m.input.SetValue("")
	m.nicknameInput.SetValue("")
	m.input.Focus()
	m.nicknameInput.Blur()
	m.addError = ""
}

func (m *model) stopAdding() {
	m.adding = false
	m.input.SetValue("")
	m.nicknameInput.SetValue("")
	m.input.Blur()
	m.nicknameInput.Blur()
	m.focusedInput = 0
}

func (m *model) addFail(reason string) {
	m.addError = reason
	m.addErrTime = time.Now()
	m.input.SetValue("")
	m.nicknameInput.SetValue("")
	m.focusedInput = 0
	m.nicknameInput.Blur()
	m.input.Focus()
}

func (m *model) handleAddAccountKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.stopAdding()
		m.addError = ""
		return nil

	case "ctrl+v":
		// Handle Ctrl+v paste explicitly to active input
		text, err := clipboard.ReadAll()
		if err == nil && text != "" {
			if m.focusedInput == 0 {
				m.input.SetValue(strings.TrimSpace(text))
			} else {
				m.nicknameInput.SetValue(text)
			}
		}
		return nil

	case "shift+tab", "tab", "down", "up":
		// Toggle between address and nickname fields
		if m.focusedInput == 0 {
			m.focusedInput = 1
			m.input.Blur()
			m.nicknameInput.Focus()
		} else {
			m.focusedInput = 0
			m.nicknameInput.Blur()
			m.input.Focus()
		}
		return nil

	case "enter":
		addr := strings.TrimSpace(m.input.Value())
		if !chain.IsValidAddress(addr) {
			m.addFail("Invalid account address")
			return nil
		}
		if m.focusedInput == 0 {
			m.focusedInput = 1
			m.input.Blur()
			m.nicknameInput.Focus()
			return nil
		}
		for _, a := range m.accounts {
			if chain.SameAccount(a.Address, addr) {
				m.addFail("Duplicate address - account already added")
				return nil
			}
		}

		nickname := strings.TrimSpace(m.nicknameInput.Value())
		m.accounts = append(m.accounts, config.AccountEntry{Address: addr, Name: nickname})
		m.stopAdding()
		m.addError = ""
		m.saveConfig()
		if nickname != "" {
			m.addLog("success", fmt.Sprintf("Added account `%s` with nickname `%s`", helpers.ShortenAddr(addr), nickname))
		} else {
			m.addLog("success", fmt.Sprintf("Added account `%s`", helpers.ShortenAddr(addr)))
		}
		return tea.Batch(m.refreshMembers(), m.refreshBalances())
	}

	var cmd tea.Cmd
	if m.focusedInput == 0 {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.nicknameInput, cmd = m.nicknameInput.Update(msg)
	}
	return cmd
}

func (m *model) handleMembershipsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.selectedMember > 0 {
			m.selectedMember--
		}
	case "down", "j":
		if m.selectedMember < len(m.members)-1 {
			m.selectedMember++
		}
	case "enter":
		if m.selectedMember < len(m.members) {
			m.activePage = config.PageMember
		}
	case " ":
		if m.selectedMember < len(m.members) {
			return m.setActiveMember(m.members[m.selectedMember].ID)
		}
	case "m":
		return m.openFlow(newSwitchMemberFlow(m.members, m.activeMemberID))
	case "e":
		if mem, ok := m.selectedMemberOrActive(); ok {
			return m.openFlow(newUpdateMembershipFlow(mem))
		}
	case "t":
		mem, ok := m.selectedMemberOrActive()
		return m.startTransfer(mem, ok)
	case "a", "A":
		m.startAdding()
	case "d":
		if len(m.accounts) == 0 {
			return nil
		}
		idx := len(m.accounts) - 1
		if mem, ok := m.selectedMemberOrActive(); ok {
			if i, found := m.accountForMember(mem); found {
				idx = i
			}
		}
		m.deleteDialogIdx = idx
		m.deleteDialogEndpoint = false
		m.deleteDialogLabel = helpers.ShortenAddr(m.accounts[idx].Address)
		if m.accounts[idx].Name != "" {
			m.deleteDialogLabel = m.accounts[idx].Name
		}
		m.deleteDialogYesSelected = false
		m.showDeleteDialog = true
	case "esc":
		return m.openPage(config.PageHome)
	}
	return nil
}

func (m *model) handleMemberKey(msg tea.KeyMsg) tea.Cmd {
	mem, ok := m.selectedMemberOrMember()
	if !ok {
		if msg.String() == "esc" {
			m.activePage = config.PageMemberships
		}
		return nil
	}
	switch msg.String() {
	case "c":
		return copyToClipboard(mem.ControllerAccount)
	case "e":
		return m.openFlow(newUpdateMembershipFlow(mem))
	case "t":
		return m.startTransfer(mem, true)
	case "esc":
		m.activePage = config.PageMemberships
	}
	return nil
}

// selectedMemberOrMember is the member shown on the member page
func (m model) selectedMemberOrMember() (query.Member, bool) {
	if m.selectedMember >= 0 && m.selectedMember < len(m.members) {
		return m.members[m.selectedMember], true
	}
	return query.Member{}, false
}

func (m *model) handleGroupsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		m.groupsTab = tabs.Next(groups.Tabs, m.groupsTab)
		m.rebuildGroupsTable()
		return nil
	case "shift+tab":
		m.groupsTab = tabs.Prev(groups.Tabs, m.groupsTab)
		m.rebuildGroupsTable()
		return nil
	case "esc":
		return m.openPage(config.PageHome)
	}

	if m.groupsTab == groups.TabWorkingGroups {
		switch msg.String() {
		case "left", "up":
			if m.selectedGroup > 0 {
				m.selectedGroup--
			}
			return m.selectedGroupEvents()
		case "right", "down":
			if m.selectedGroup < len(m.groups)-1 {
				m.selectedGroup++
			}
			return m.selectedGroupEvents()
		case "n":
			return m.startCreateOpening()
		}
		return nil
	}

	var cmd tea.Cmd
	m.groupsTable, cmd = m.groupsTable.Update(msg)
	return cmd
}

// startCreateOpening opens the opening wizard for the highlighted group
func (m *model) startCreateOpening() tea.Cmd {
	if m.selectedGroup < 0 || m.selectedGroup >= len(m.groups) {
		return nil
	}
	mem, ok := m.activeMember()
	if !ok {
		m.addLog("warning", "Select a membership before creating an opening")
		return nil
	}
	g := m.groups[m.selectedGroup]
	if g.LeadID != mem.ID {
		m.addLog("warning", fmt.Sprintf("Only the lead of %s can create openings", g.Name))
		return nil
	}
	return m.openFlow(newCreateOpeningFlow(g, mem.ControllerAccount, m.decimals))
}

func (m *model) handleCouncilKey(msg tea.KeyMsg) tea.Cmd {
	if m.showCouncilMembers {
		if msg.String() == "esc" {
			m.showCouncilMembers = false
			m.councilErr = ""
			return nil
		}
		var cmd tea.Cmd
		m.councilMembersTable, cmd = m.councilMembersTable.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "enter":
		i := m.councilsTable.Cursor()
		if m.qn == nil || i < 0 || i >= len(m.councils) {
			return nil
		}
		m.councilID = m.councils[i].ID
		m.showCouncilMembers = true
		m.councilLoading = true
		m.councilErr = ""
		return loadCouncilMembers(m.qn, m.councilID)
	case "esc":
		return m.openPage(config.PageHome)
	}
	var cmd tea.Cmd
	m.councilsTable, cmd = m.councilsTable.Update(msg)
	return cmd
}

func (m *model) handleForumKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.selectedPost > 0 {
			m.selectedPost--
		}
	case "down", "j":
		if m.selectedPost < len(m.posts)-1 {
			m.selectedPost++
		}
	case "d":
		if m.selectedPost >= len(m.posts) {
			return nil
		}
		mem, ok := m.activeMember()
		if !ok {
			return nil
		}
		return m.openFlow(newDeletePostFlow(m.posts[m.selectedPost], mem.ControllerAccount))
	case "esc":
		return m.openPage(config.PageHome)
	}
	return nil
}

func (m *model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.selectedEndpointIdx = settings.Move(m.endpoints, m.selectedEndpointIdx, -1)
	case "down", "j":
		m.selectedEndpointIdx = settings.Move(m.endpoints, m.selectedEndpointIdx, 1)
	case "enter":
		if m.selectedEndpointIdx < 0 || m.selectedEndpointIdx >= len(m.endpoints) {
			return nil
		}
		m.endpoints = config.Activate(m.endpoints, m.selectedEndpointIdx)
		m.saveConfig()
		e := m.endpoints[m.selectedEndpointIdx]
		m.addLog("info", fmt.Sprintf("Activated %s endpoint `%s`", e.Kind, e.Name))
		return m.connectEndpoint(e)
	case "a":
		m.settingsMode = "add"
		m.createAddEndpointForm()
	case "e":
		if m.selectedEndpointIdx >= 0 && m.selectedEndpointIdx < len(m.endpoints) {
			m.settingsMode = "edit"
			m.createEditEndpointForm(m.selectedEndpointIdx)
		}
	case "d":
		if m.selectedEndpointIdx >= 0 && m.selectedEndpointIdx < len(m.endpoints) {
			m.deleteDialogIdx = m.selectedEndpointIdx
			m.deleteDialogEndpoint = true
			m.deleteDialogLabel = m.endpoints[m.selectedEndpointIdx].Name
			m.deleteDialogYesSelected = false
			m.showDeleteDialog = true
		}
	case "esc":
		return m.openPage(config.PageHome)
	}
	return nil
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if m.flow != nil || m.showDeleteDialog {
		return nil
	}

	// the active member sits on the first header line
	if msg.Y != headerMemberY {
		return nil
	}
	now := time.Now()
	if now.Sub(m.lastClickTime) < 500*time.Millisecond &&
		m.lastClickX == msg.X && m.lastClickY == msg.Y {
		// Double-click detected - show member switcher
		m.lastClickTime = time.Time{}
		m.addLog("info", "Opening member switcher")
		return m.openFlow(newSwitchMemberFlow(m.members, m.activeMemberID))
	}
	// Single click - update last click tracking
	m.lastClickTime = now
	m.lastClickX = msg.X
	m.lastClickY = msg.Y
	return nil
}
