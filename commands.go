package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"pioneer-tui/chain"
	"pioneer-tui/config"
	"pioneer-tui/fee"
	"pioneer-tui/form"
	"pioneer-tui/query"
	"pioneer-tui/rpc"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

const (
	queryTimeout = 15 * time.Second
	// submitTimeout covers signing and waiting for block inclusion
	submitTimeout = 2 * time.Minute
	openingFile   = "opening.json"
)

// errNotConnected is reported when a command needs a service that is not configured
var errNotConnected = errors.New("not connected")

// chainReader is the part of the node client the flows read from.
type chainReader interface {
	TransferableBalance(ctx context.Context, address string) (*big.Int, error)
	HandleHashSize(ctx context.Context, handle string) (int, error)
}

// txSigner quotes, signs and submits transactions.
type txSigner interface {
	PaymentInfo(ctx context.Context, signer string, tx *chain.Tx) (*big.Int, error)
	SignAndSend(ctx context.Context, signer string, tx *chain.Tx) (rpc.SubmitResult, error)
}

// postQuerier finds the thread and category of a post.
type postQuerier interface {
	PostParents(ctx context.Context, postID string) (query.PostParents, error)
}

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// connectNode establishes a JSON-RPC connection to the chain node
func connectNode(url string) tea.Cmd {
	return func() tea.Msg {
		result := rpc.Connect(url)
		return nodeConnectedMsg{client: result.Client, err: result.Error}
	}
}

// dialSigner connects to the signer service
func dialSigner(url string) tea.Cmd {
	return func() tea.Msg {
		s, err := rpc.DialSigner(url)
		return signerDialedMsg{signer: s, err: err}
	}
}

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// logCmd writes a line to the log panel
func logCmd(level, text string) tea.Cmd {
	return func() tea.Msg {
		return logMsg{level: level, text: text}
	}
}

// loadMembers fetches the memberships controlled by accounts
func loadMembers(qn *query.Client, accounts []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		members, err := qn.Members(ctx, accounts)
		return membersLoadedMsg{members: members, err: err}
	}
}

// loadBalances fetches the transferable balance of every address
func loadBalances(node *rpc.Client, addresses []string) tea.Cmd {
	return func() tea.Msg {
		balances, err := node.LoadBalances(context.Background(), addresses)
		return balancesLoadedMsg{balances: balances, err: err}
	}
}

// loadGroups fetches openings and working groups, plus the member's
// applications and roles when memberID is set
func loadGroups(qn *query.Client, memberID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		var msg groupsLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			msg.openings, err = qn.Openings(gctx)
			return err
		})
		g.Go(func() (err error) {
			msg.groups, err = qn.WorkingGroups(gctx)
			return err
		})
		if memberID != "" {
			g.Go(func() (err error) {
				msg.applications, err = qn.Applications(gctx, memberID)
				return err
			})
			g.Go(func() (err error) {
				msg.roles, err = qn.Roles(gctx, memberID)
				return err
			})
		}
		msg.err = g.Wait()
		return msg
	}
}

// loadGroupEvents fetches the events that make up a group's activity feed
func loadGroupEvents(qn *query.Client, groupID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		events, err := qn.GroupEvents(ctx, groupID)
		return groupEventsLoadedMsg{groupID: groupID, events: events, err: err}
	}
}

// loadCouncils fetches the past councils
func loadCouncils(qn *query.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		councils, err := qn.PastCouncils(ctx)
		return councilsLoadedMsg{councils: councils, err: err}
	}
}

// loadCouncilMembers fetches the vote tallies of a past council
func loadCouncilMembers(qn *query.Client, councilID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		members, err := qn.PastCouncilMembers(ctx, councilID)
		return councilMembersLoadedMsg{councilID: councilID, members: members, err: err}
	}
}

// loadPosts fetches the posts written by a member
func loadPosts(qn *query.Client, memberID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		posts, err := qn.PostsByAuthor(ctx, memberID)
		return postsLoadedMsg{memberID: memberID, posts: posts, err: err}
	}
}

// estimateFee quotes tx for payer. The result carries the tx id so estimates
// for a superseded transaction can be told apart.
func estimateFee(q fee.Quoter, b fee.Balances, payer string, tx *chain.Tx) tea.Cmd {
	id := tx.ID()
	return func() tea.Msg {
		if q == nil || b == nil {
			return feeEstimatedMsg{result: fee.Result{TxID: id, Err: errNotConnected}}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		info, err := fee.Estimate(ctx, q, b, payer, tx)
		return feeEstimatedMsg{result: fee.Result{TxID: id, Info: info, Err: err}}
	}
}

// signAndSend hands tx to the signer service and waits for its inclusion
func signAndSend(s txSigner, signer string, tx *chain.Tx) tea.Cmd {
	id := tx.ID()
	return func() tea.Msg {
		if s == nil {
			return txSubmittedMsg{txID: id, err: errNotConnected}
		}
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		res, err := s.SignAndSend(ctx, signer, tx)
		return txSubmittedMsg{txID: id, result: res, err: err}
	}
}

// lookupHandleSize checks whether a handle is already registered
func lookupHandleSize(r chainReader, handle string) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return handleSizeMsg{handle: handle, err: errNotConnected}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		size, err := r.HandleHashSize(ctx, handle)
		return handleSizeMsg{handle: handle, size: size, err: err}
	}
}

// loadPostParents finds the thread and category of a post
func loadPostParents(q postQuerier, postID string) tea.Cmd {
	return func() tea.Msg {
		if q == nil {
			return postParentsMsg{postID: postID, err: errNotConnected}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		parents, err := q.PostParents(ctx, postID)
		return postParentsMsg{postID: postID, parents: parents, err: err}
	}
}

// loadAccountBalance reads the transferable balance of one account
func loadAccountBalance(r chainReader, address string) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return accountBalanceMsg{address: address, err: errNotConnected}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		bal, err := r.TransferableBalance(ctx, address)
		return accountBalanceMsg{address: address, balance: bal, err: err}
	}
}

// exportOpening writes the opening draft to path and copies it to the clipboard
func exportOpening(d form.OpeningDraft, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := form.ExportJSON(d)
		if err != nil {
			return openingExportedMsg{path: path, err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return openingExportedMsg{path: path, err: fmt.Errorf("write %s: %w", path, err)}
		}
		// clipboard may be unavailable over ssh; the file is what counts
		_ = clipboard.WriteAll(string(data))
		return openingExportedMsg{path: path}
	}
}

// importOpening reads an exported opening draft
func importOpening(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return openingImportedMsg{path: path, err: fmt.Errorf("read %s: %w", path, err)}
		}
		d, err := form.ImportJSON(data)
		return openingImportedMsg{path: path, draft: d, err: err}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(text)
		if err == nil {
			return clipboardCopiedMsg{}
		}
		return logMsg{level: "error", text: "Clipboard unavailable: " + err.Error()}
	}
}

// clearClipboardMsg waits 2 seconds then sends a message to clear clipboard feedback
func clearClipboardMsg() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return clearClipboard{}
	})
}

// -------------------- MODEL HELPER METHODS --------------------
// These methods help with state management and command generation

// addLog adds a log entry with timestamp and type
func (m *model) addLog(logType, message string) {
	if !m.logEnabled || !m.logReady || m.logger == nil {
		return
	}

	switch logType {
	case "info":
		m.logger.Info(message)
	case "success":
		m.logger.Info("✓", "msg", message)
	case "error":
		m.logger.Error(message)
	case "warning":
		m.logger.Warn(message)
	case "debug":
		m.logger.Debug(message)
	default:
		m.logger.Print(message)
	}

	m.updateLogViewport()
}

// updateLogViewport refreshes the viewport content with log output
func (m *model) updateLogViewport() {
	if !m.logReady || m.logBuffer == nil {
		return
	}

	m.logViewport.SetContent(m.logBuffer.String())
	m.logViewport.GotoBottom()
}

// textInputActive returns true if any text input is currently active
func (m model) textInputActive() bool {
	if m.adding {
		return true
	}
	if m.flow != nil {
		return true
	}
	if (m.settingsMode == "add" || m.settingsMode == "edit") && m.form != nil {
		return true
	}
	return false
}

// saveConfig writes the current configuration to disk
func (m *model) saveConfig() {
	cfg := config.Config{
		Endpoints:     config.Persisted(m.endpoints),
		Accounts:      m.accounts,
		ActiveMember:  m.activeMemberID,
		Logger:        m.logEnabled,
		TokenSymbol:   m.symbol,
		TokenDecimals: m.decimals,
	}
	if err := config.Save(m.configPath, cfg); err != nil {
		m.addLog("error", "Saving config failed: "+err.Error())
	}
}

// allAddresses lists the configured accounts and every account of the loaded memberships, without duplicates
func (m model) allAddresses() []string {
	seen := map[string]bool{}
	var out []string
	add := func(a string) {
		if a != "" && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	for _, a := range m.accounts {
		add(a.Address)
	}
	for _, mem := range m.members {
		for _, a := range mem.Accounts() {
			add(a)
		}
	}
	return out
}

// accountAddresses lists the configured account addresses
func (m model) accountAddresses() []string {
	out := make([]string, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a.Address)
	}
	return out
}

// refreshMembers reloads memberships and balances
func (m *model) refreshMembers() tea.Cmd {
	if m.qn == nil || len(m.accounts) == 0 {
		return nil
	}
	m.membersLoading = true
	return loadMembers(m.qn, m.accountAddresses())
}

// refreshBalances reloads the balances of every known address
func (m *model) refreshBalances() tea.Cmd {
	if m.node == nil {
		return nil
	}
	addrs := m.allAddresses()
	if len(addrs) == 0 {
		return nil
	}
	return loadBalances(m.node, addrs)
}

// refreshPage reloads the data shown on the active page
func (m *model) refreshPage() tea.Cmd {
	if m.qn == nil {
		return nil
	}
	switch m.activePage {
	case config.PageMemberships, config.PageMember:
		return tea.Batch(m.refreshMembers(), m.refreshBalances())
	case config.PageWorkingGroups:
		m.groupsLoading = true
		m.groupsErr = ""
		return loadGroups(m.qn, m.activeMemberID)
	case config.PageCouncil:
		m.councilLoading = true
		m.councilErr = ""
		if m.showCouncilMembers {
			return loadCouncilMembers(m.qn, m.councilID)
		}
		return loadCouncils(m.qn)
	case config.PageForum:
		if m.activeMemberID == "" {
			return nil
		}
		m.postsLoading = true
		m.postsErr = ""
		return loadPosts(m.qn, m.activeMemberID)
	}
	return nil
}
