package main

import (
	"fmt"
	"math/big"
	"strings"

	"pioneer-tui/chain"
	"pioneer-tui/form"
	"pioneer-tui/helpers"
	"pioneer-tui/machine"
	"pioneer-tui/styles"
	"pioneer-tui/views/modals"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// transferFlow sends tokens from one of the configured accounts.
type transferFlow struct {
	*txAction
	accounts []string
	draft    form.TransferDraft
	errs     form.Errors
	amount   *big.Int
	form     *huh.Form

	// transferable balances of the sender and the recipient
	fromBalance *big.Int
	toBalance   *big.Int
}

func newTransferFlow(from string, accounts []string) *transferFlow {
	return &transferFlow{
		txAction: newTxAction(machine.TransferChart(), from),
		accounts: accounts,
		draft:    form.TransferDraft{From: from},
	}
}

func (f *transferFlow) Init(ctx flowContext) tea.Cmd {
	// any transfer will do to learn whether the sender covers a fee
	return f.track(ctx, chain.TransferTx(f.payer, big.NewInt(0)))
}

func (f *transferFlow) createForm(ctx flowContext) {
	options := make([]huh.Option[string], 0, len(f.accounts))
	for _, a := range f.accounts {
		label := helpers.ShortenAddr(a)
		if bal, ok := ctx.balances[a]; ok {
			label += "  " + ctx.tokens(bal)
		}
		options = append(options, huh.NewOption(label, a))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("From").
				Options(options...).
				Value(&f.draft.From),

			huh.NewInput().
				Title("Destination account").
				Description("Enter an address (Ctrl+v to paste)").
				Value(&f.draft.To).
				Placeholder("5...").
				Validate(func(s string) error {
					if !chain.IsValidAddress(s) {
						return fmt.Errorf("invalid address")
					}
					if chain.SameAccount(s, f.draft.From) {
						return fmt.Errorf("cannot transfer to the same account")
					}
					return nil
				}),

			huh.NewInput().
				Title(fmt.Sprintf("Amount (%s)", ctx.symbol)).
				Value(&f.draft.Amount).
				Placeholder("0").
				Validate(func(s string) error {
					v, err := helpers.ParseTokens(s, ctx.decimals)
					if err != nil {
						return err
					}
					if v.Sign() <= 0 {
						return fmt.Errorf("amount must be greater than 0")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCatppuccin())

	f.form.Init()
}

// transferable is what the sender may spend, nil while unknown
func (f *transferFlow) transferable(ctx flowContext) *big.Int {
	if f.draft.From == f.payer {
		if info := f.fees.Info(); info != nil {
			return info.Transferable
		}
	}
	return ctx.balances[f.draft.From]
}

// submitForm validates the draft and moves on to signing
func (f *transferFlow) submitForm(ctx flowContext) tea.Cmd {
	amount, errs := form.ValidateTransfer(f.draft, f.transferable(ctx), ctx.decimals)
	f.errs = errs
	if !errs.Valid() {
		f.createForm(ctx)
		return nil
	}
	f.amount = amount
	f.fromBalance = f.transferable(ctx)
	if f.draft.From != f.payer {
		f.payer = f.draft.From
		f.fees.Reset()
	}
	f.machine.Send(machine.Next)
	return tea.Batch(
		f.track(ctx, form.TransferTx(f.draft, amount)),
		loadAccountBalance(ctx.node, f.draft.To),
	)
}

func (f *transferFlow) Update(ctx flowContext, msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case feeEstimatedMsg:
		if f.acceptFee(msg) && f.machine.Matches(machine.RequirementsVerification) {
			f.verify(machine.Pass)
			if f.machine.Matches(machine.BeforeTransaction) {
				f.createForm(ctx)
			}
		}
		return nil, false

	case accountBalanceMsg:
		if msg.address == f.draft.To && msg.err == nil {
			f.toBalance = msg.balance
		}
		return nil, false

	case txSubmittedMsg:
		return f.submitted(msg, fmt.Sprintf("Transferred %s to %s", ctx.tokens(f.amount), helpers.ShortenAddr(f.draft.To))), false

	case tea.KeyMsg:
		if cmd, done, handled := f.handleKey(ctx, msg, f.amount); handled {
			return cmd, done
		}
	}

	if f.form != nil && f.machine.Matches(machine.BeforeTransaction) {
		model, cmd := f.form.Update(msg)
		if hf, ok := model.(*huh.Form); ok {
			f.form = hf
			switch f.form.State {
			case huh.StateCompleted:
				return f.submitForm(ctx), false
			case huh.StateAborted:
				f.close()
				return nil, true
			}
		}
		return cmd, false
	}
	return nil, false
}

func (f *transferFlow) View(ctx flowContext) string {
	return f.render(ctx, "Transfer tokens",
		"You have just successfully transferred "+ctx.tokens(f.amount)+".",
		"There was a problem with transferring your tokens.",
		func() string {
			if f.form == nil {
				return ""
			}
			body := f.form.View()
			if !f.errs.Valid() {
				body += "\n" + styles.ErrorStyle.Render(f.errs.String())
			}
			return modals.Frame("Transfer tokens", body+modals.Hints(styles.Key("Enter")+" next", styles.Key("Esc")+" cancel"))
		},
		func() string {
			v := f.signView(ctx, "Authorize transaction",
				fmt.Sprintf("You are transferring %s from %s to %s", ctx.tokens(f.amount), helpers.ShortenAddr(f.draft.From), helpers.ShortenAddr(f.draft.To)),
				"Sign transaction and Transfer", f.amount)
			v.Fields = []modals.Field{
				{Label: "From", Value: f.account(ctx, f.draft.From, f.fromBalance)},
				{Label: "Destination account", Value: f.account(ctx, f.draft.To, f.toBalance)},
				{Label: "Amount", Value: ctx.tokens(f.amount)},
			}
			return modals.Sign(v)
		},
	)
}

// account renders an address with its transferable balance
func (f *transferFlow) account(ctx flowContext, addr string, bal *big.Int) string {
	var b strings.Builder
	b.WriteString(helpers.ShortenAddr(addr))
	if bal != nil {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("  transferable " + ctx.tokens(bal)))
	}
	return b.String()
}
