package main

import (
	"fmt"
	"math/big"

	"pioneer-tui/chain"
	"pioneer-tui/fee"
	"pioneer-tui/helpers"
	"pioneer-tui/machine"
	"pioneer-tui/query"
	"pioneer-tui/rpc"
	"pioneer-tui/views/modals"

	tea "github.com/charmbracelet/bubbletea"
)

// -------------------- MODAL FLOWS --------------------
// A flow is one open modal. Only one is active at a time and it receives
// every key press and every flow message until it reports it is done.

type flow interface {
	Init(ctx flowContext) tea.Cmd
	// Update handles msg. done closes the modal.
	Update(ctx flowContext, msg tea.Msg) (cmd tea.Cmd, done bool)
	View(ctx flowContext) string
}

// flowContext is what a flow may use from the rest of the app. It is rebuilt
// from the model for every call so flows never hold on to the model.
type flowContext struct {
	node     chainReader
	signer   txSigner
	posts    postQuerier
	member   query.Member
	members  []query.Member
	balances map[string]*big.Int
	symbol   string
	decimals int32
	spinner  string
}

// tokens formats an amount of base units
func (c flowContext) tokens(v *big.Int) string {
	return helpers.FormatTokens(v, c.decimals, c.symbol)
}

// txAction is the part every transaction flow shares: the action machine,
// the fee of the current transaction and the submission result.
type txAction struct {
	machine *machine.Machine
	fees    fee.Tracker
	tx      *chain.Tx
	payer   string
	failure string
	showQR  bool
	// setupErr is a failed lookup the transaction depends on
	setupErr error
}

func newTxAction(chart *machine.Chart, payer string) *txAction {
	return &txAction{machine: machine.New(chart), payer: payer}
}

// track makes tx the current transaction and requests its fee when it changed.
func (a *txAction) track(ctx flowContext, tx *chain.Tx) tea.Cmd {
	if tx == nil {
		return nil
	}
	a.tx = tx
	if !a.fees.Track(tx) {
		return nil
	}
	return estimateFee(ctx.signer, ctx.node, a.payer, tx)
}

// acceptFee stores an estimate if it belongs to the current transaction.
func (a *txAction) acceptFee(msg feeEstimatedMsg) bool {
	return a.fees.Accept(msg.result)
}

// verify sends pass or FAIL once the fee is known. It only acts while
// requirements are being verified.
func (a *txAction) verify(pass machine.Event) {
	if !a.machine.Matches(machine.RequirementsVerification) {
		return
	}
	info := a.fees.Info()
	if info == nil {
		return
	}
	if info.CanAfford {
		a.machine.Send(pass)
	} else {
		a.machine.Send(machine.Fail)
	}
}

// canSign reports whether the sign button is enabled.
func (a *txAction) canSign(extra *big.Int) bool {
	if !a.machine.Matches(machine.Transaction) || a.tx == nil {
		return false
	}
	child := a.machine.Child()
	if child == nil || child.State() != machine.Prepare {
		return false
	}
	info := a.fees.Info()
	return info != nil && info.CanAffordWith(extra)
}

// sign starts the child transaction machine and submits the transaction.
func (a *txAction) sign(ctx flowContext, extra *big.Int) tea.Cmd {
	if !a.canSign(extra) {
		return nil
	}
	if !a.machine.SendChild(machine.Sign) {
		return nil
	}
	return tea.Batch(
		signAndSend(ctx.signer, a.payer, a.tx),
		logCmd("info", fmt.Sprintf("Signing %s with %s", a.tx, helpers.ShortenAddr(a.payer))),
	)
}

// submitted feeds the signer's answer into the child machine.
func (a *txAction) submitted(msg txSubmittedMsg, successLog string) tea.Cmd {
	if a.tx == nil || msg.txID != a.tx.ID() {
		return nil
	}
	if msg.err != nil {
		a.failure = msg.err.Error()
		a.machine.SendChild(machine.TxError)
		return logCmd("error", fmt.Sprintf("%s failed: %s", a.tx, msg.err))
	}
	a.machine.SendChild(machine.Signed)
	if !msg.result.Success {
		a.failure = msg.result.Error
		a.machine.SendChild(machine.TxError)
		return logCmd("error", fmt.Sprintf("%s rejected: %s", a.tx, msg.result.Error))
	}
	a.machine.SendChild(machine.TxSuccess)
	return tea.Batch(
		logCmd("success", fmt.Sprintf("%s in block %s", successLog, helpers.ShortenAddr(msg.result.BlockHash))),
		func() tea.Msg { return chainDataChangedMsg{} },
	)
}

// signing reports whether the signer is working on the transaction.
func (a *txAction) signing() bool {
	child := a.machine.Child()
	return child != nil && child.Matches(machine.Signing, machine.Pending)
}

// close cancels the flow if it is still running.
func (a *txAction) close() {
	if a.machine.Done() {
		return
	}
	if a.machine.Child() != nil && a.machine.SendChild(machine.Cancel) {
		return
	}
	a.machine.Send(machine.Cancel)
}

// feeText is the estimated fee of the current transaction.
func (a *txAction) feeText(ctx flowContext) string {
	info := a.fees.Info()
	if info == nil {
		return "–"
	}
	return ctx.tokens(info.TransactionFee)
}

// signView fills the parts of the sign modal every flow shares.
func (a *txAction) signView(ctx flowContext, title, text, button string, extra *big.Int) modals.SignView {
	v := modals.SignView{
		Title:      title,
		Text:       text,
		Fee:        a.feeText(ctx),
		FeeLoading: a.fees.Info() == nil && a.fees.Err() == nil,
		Button:     button,
		CanSign:    a.canSign(extra),
		Signing:    a.signing(),
		Spinner:    ctx.spinner,
	}
	if err := a.fees.Err(); err != nil {
		v.Warning = "Could not estimate the fee: " + err.Error()
	} else if info := a.fees.Info(); info != nil && !info.CanAffordWith(extra) {
		v.Warning = "Insufficient funds to cover the transaction"
	}
	if a.showQR && a.tx != nil {
		v.QR = rpc.GenerateQRCode(a.tx.SigningPayload(a.payer))
	}
	return v
}

// render picks the modal body for the current state. Exactly one body is
// shown; before shows the flow's own steps and sign its sign modal.
func (a *txAction) render(ctx flowContext, title, successText, failureText string, before, sign func() string) string {
	m := a.machine
	switch {
	case m.Matches(machine.RequirementsVerification):
		if a.setupErr != nil {
			return modals.WaitError(title, "Checking requirements", a.setupErr.Error())
		}
		if err := a.fees.Err(); err != nil {
			return modals.WaitError(title, "Checking requirements", err.Error())
		}
		return modals.Wait("Please wait...", "Checking requirements", ctx.spinner)
	case m.Matches(machine.BeforeTransaction):
		return before()
	case m.Matches(machine.Transaction):
		return sign()
	case m.Matches(machine.Success):
		return modals.Success(title, successText)
	case m.Matches(machine.Error):
		return modals.Failure(failureText, a.failure)
	case m.Matches(machine.RequirementsFailed):
		return modals.InsufficientFunds(a.payer, a.feeText(ctx))
	}
	return ""
}

// handleKey covers the keys every flow handles the same way. handled is
// false when the flow should look at the key itself.
func (a *txAction) handleKey(ctx flowContext, msg tea.KeyMsg, extra *big.Int) (cmd tea.Cmd, done, handled bool) {
	m := a.machine
	switch msg.String() {
	case "esc":
		if a.signing() {
			return nil, false, true
		}
		a.close()
		return nil, true, true
	case "enter":
		if m.Done() {
			return nil, true, true
		}
		if m.Matches(machine.Transaction) {
			return a.sign(ctx, extra), false, true
		}
	case "q":
		if m.Matches(machine.Transaction) {
			a.showQR = !a.showQR
			return nil, false, true
		}
	}
	return nil, false, false
}
