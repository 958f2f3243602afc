package main

import (
	"math/big"
	"strings"
	"time"

	"pioneer-tui/activity"
	"pioneer-tui/config"
	"pioneer-tui/query"
	"pioneer-tui/rpc"
	"pioneer-tui/styles"
	"pioneer-tui/views/council"
	"pioneer-tui/views/groups"
	"pioneer-tui/views/home"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	activePage config.Page

	// connections
	endpoints      []config.Endpoint
	node           *rpc.Client
	nodeConnected  bool
	nodeConnecting bool
	signer         *rpc.Signer
	qn             *query.Client

	// token display
	symbol   string
	decimals int32

	// accounts and the memberships they control
	accounts       []config.AccountEntry
	members        []query.Member
	membersLoading bool
	selectedMember int
	activeMemberID string
	balances       map[string]*big.Int
	balancesAt     time.Time

	// add-account input
	adding        bool
	input         textinput.Model // address input
	nicknameInput textinput.Model // nickname input
	focusedInput  int             // 0 = address, 1 = nickname
	addError      string
	addErrTime    time.Time

	spin spinner.Model

	// working groups page
	groupsTab      int
	groupsTable    table.Model
	groupsLoading  bool
	groupsErr      string
	openings       []query.Opening
	groups         []query.WorkingGroup
	applications   []query.Application
	roles          []query.Worker
	selectedGroup  int
	activities     []activity.Activity
	activitiesFrom string // group the activities belong to

	// council page
	councils            []query.Council
	councilsTable       table.Model
	councilMembersTable table.Model
	councilLoading      bool
	councilErr          string
	showCouncilMembers  bool
	councilID           string

	// forum page
	posts        []query.Post
	selectedPost int
	postsLoading bool
	postsErr     string

	// clipboard feedback
	copiedMsg     string
	copiedMsgTime time.Time

	// settings state
	settingsMode        string // "list", "add", "edit"
	selectedEndpointIdx int
	form                *huh.Form
	configPath          string

	// home form
	homeForm *huh.Form

	// the open modal, if any
	flow flow

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *strings.Builder
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model

	// delete confirmation dialog, for accounts and endpoints
	showDeleteDialog        bool
	deleteDialogLabel       string
	deleteDialogIdx         int
	deleteDialogEndpoint    bool // false = account, true = endpoint
	deleteDialogYesSelected bool // true = Yes button, false = No button

	// Double-click detection for the header member
	lastClickTime time.Time
	lastClickX    int
	lastClickY    int
}

// -------------------- INIT --------------------

// newModel creates a model from the loaded configuration
func newModel(cfg config.Config, configPath string) model {
	accounts := cfg.Accounts
	if accounts == nil {
		accounts = []config.AccountEntry{}
	}

	// input for address
	in := textinput.New()
	in.Placeholder = "Paste an account address 5…"
	in.Prompt = "Address: "
	in.PromptStyle = lipgloss.NewStyle().Foreground(styles.CAccent)
	in.TextStyle = lipgloss.NewStyle().Foreground(styles.CText)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	in.CharLimit = 64
	in.Width = 52

	// input for nickname
	nicknameIn := textinput.New()
	nicknameIn.Placeholder = "Optional nickname"
	nicknameIn.Prompt = "Nickname: "
	nicknameIn.PromptStyle = lipgloss.NewStyle().Foreground(styles.CAccent)
	nicknameIn.TextStyle = lipgloss.NewStyle().Foreground(styles.CText)
	nicknameIn.Cursor.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	nicknameIn.CharLimit = 50
	nicknameIn.Width = 52

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// Initialize log viewport
	vp := viewport.New(0, 20) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	// Initialize log spinner
	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	var qn *query.Client
	if e, ok := config.ActiveEndpoint(cfg.Endpoints, config.KindQuery); ok {
		qn = query.New(e.URL)
	}

	m := model{
		activePage:     config.PageHome,
		endpoints:      cfg.Endpoints,
		qn:             qn,
		symbol:         cfg.TokenSymbol,
		decimals:       cfg.TokenDecimals,
		accounts:       accounts,
		activeMemberID: cfg.ActiveMember,
		balances:       map[string]*big.Int{},
		input:          in,
		nicknameInput:  nicknameIn,
		spin:           sp,
		settingsMode:   "list",
		configPath:     configPath,
		logEnabled:     cfg.Logger,
		logViewport:    vp,
		logBuffer:      &strings.Builder{},
		logSpinner:     logSpin,
	}
	m.homeForm = home.CreateForm()
	m.groupsTable = groups.NewTable(groups.TabOpenings, nil, 10)
	m.councilsTable = council.NewCouncilsTable(nil, m.symbol, m.decimals, 10)
	m.councilMembersTable = council.NewMembersTable(nil, 10)

	return m
}

// Init implements tea.Model interface and returns initial commands
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	if e, ok := config.ActiveEndpoint(m.endpoints, config.KindNode); ok {
		m.nodeConnecting = true
		cmds = append(cmds, connectNode(e.URL))
	}
	if e, ok := config.ActiveEndpoint(m.endpoints, config.KindSigner); ok {
		cmds = append(cmds, dialSigner(e.URL))
	}
	cmds = append(cmds, m.refreshMembers())
	return tea.Batch(cmds...)
}

// activeMember returns the membership that acts in flows
func (m model) activeMember() (query.Member, bool) {
	for _, mem := range m.members {
		if mem.ID == m.activeMemberID {
			return mem, true
		}
	}
	return query.Member{}, false
}

// flowContext collects what the open flow may use
func (m model) flowContext() flowContext {
	ctx := flowContext{
		members:  m.members,
		balances: m.balances,
		symbol:   m.symbol,
		decimals: m.decimals,
		spinner:  m.spin.View(),
	}
	// typed nil pointers must not end up in the interfaces
	if m.node != nil {
		ctx.node = m.node
	}
	if m.signer != nil {
		ctx.signer = m.signer
	}
	if m.qn != nil {
		ctx.posts = m.qn
	}
	ctx.member, _ = m.activeMember()
	return ctx
}

// openFlow makes f the open modal
func (m *model) openFlow(f flow) tea.Cmd {
	m.flow = f
	return f.Init(m.flowContext())
}
