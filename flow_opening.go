package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"pioneer-tui/chain"
	"pioneer-tui/form"
	"pioneer-tui/helpers"
	"pioneer-tui/machine"
	"pioneer-tui/query"
	"pioneer-tui/styles"
	"pioneer-tui/views/modals"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// minOpeningStake is the smallest stake an opening may require, in base units
var minOpeningStake = big.NewInt(50000)

// createOpeningFlow is the four step wizard that adds an opening to a
// working group. The signer is the active member's controller account.
type createOpeningFlow struct {
	*txAction
	group query.WorkingGroup
	cond  form.OpeningConditions
	draft form.OpeningDraft
	errs  form.Errors
	form  *huh.Form
	note  string

	// text mirrors of the numeric fields while they are edited
	durationText  string
	targetText    string
	unstakingText string
}

func newCreateOpeningFlow(group query.WorkingGroup, payer string, decimals int32) *createOpeningFlow {
	f := &createOpeningFlow{
		txAction: newTxAction(machine.CreateOpeningChart(), payer),
		group:    group,
		cond: form.OpeningConditions{
			Group:        group.ID,
			HiringTarget: 1,
			MinStake:     minOpeningStake,
			Decimals:     decimals,
		},
	}
	f.setDraft(form.DefaultOpening())
	return f
}

func (f *createOpeningFlow) Init(ctx flowContext) tea.Cmd {
	probe := chain.AddOpeningTx(f.group.ID, "", "Regular", chain.StakePolicy{StakeAmount: "0"}, big.NewInt(0))
	return f.track(ctx, probe)
}

// setDraft replaces the draft and its text mirrors
func (f *createOpeningFlow) setDraft(d form.OpeningDraft) {
	f.draft = d
	f.durationText = uintText(d.DurationAndProcess.Duration)
	f.targetText = strconv.Itoa(d.DurationAndProcess.Target)
	f.unstakingText = uintText(d.StakingPolicyAndReward.LeavingUnstakingPeriod)
}

func uintText(v uint32) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(v), 10)
}

func numberValidator(s string) error {
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseUint(s, 10, 32); err != nil {
		return fmt.Errorf("enter a whole number")
	}
	return nil
}

// syncNumbers copies the text mirrors back into the draft
func (f *createOpeningFlow) syncNumbers() {
	d := &f.draft
	if v, err := strconv.ParseUint(f.durationText, 10, 32); err == nil {
		d.DurationAndProcess.Duration = uint32(v)
	} else {
		d.DurationAndProcess.Duration = 0
	}
	if v, err := strconv.Atoi(f.targetText); err == nil {
		d.DurationAndProcess.Target = v
	} else {
		d.DurationAndProcess.Target = 0
	}
	if v, err := strconv.ParseUint(f.unstakingText, 10, 32); err == nil {
		d.StakingPolicyAndReward.LeavingUnstakingPeriod = uint32(v)
	} else {
		d.StakingPolicyAndReward.LeavingUnstakingPeriod = 0
	}
}

// createForm builds the form of the active step
func (f *createOpeningFlow) createForm(ctx flowContext) {
	d := &f.draft
	var group *huh.Group

	switch f.machine.State() {
	case machine.WorkingGroupAndDescription:
		group = huh.NewGroup(
			huh.NewNote().
				Title("Working group").
				Description(f.group.Name),
			huh.NewInput().
				Title("Opening title").
				CharLimit(55).
				Value(&d.WorkingGroupAndDescription.Title),
			huh.NewInput().
				Title("Short description").
				CharLimit(150).
				Value(&d.WorkingGroupAndDescription.ShortDescription),
			huh.NewText().
				Title("Description").
				Lines(4).
				Value(&d.WorkingGroupAndDescription.Description),
		)

	case machine.DurationAndProcess:
		group = huh.NewGroup(
			huh.NewText().
				Title("Application process").
				Description("Describe how applicants will be evaluated").
				Lines(3).
				Value(&d.DurationAndProcess.Details),
			huh.NewConfirm().
				Title("Limited duration").
				Affirmative("Limited").
				Negative("Unlimited").
				Value(&d.DurationAndProcess.IsLimited),
			huh.NewInput().
				Title("Expected length of the application period").
				Description("In blocks, required when limited").
				Value(&f.durationText).
				Validate(numberValidator),
			huh.NewInput().
				Title("Hiring target").
				Value(&f.targetText).
				Validate(numberValidator),
		)

	case machine.ApplicationForm:
		var fields []huh.Field
		for i := range d.ApplicationForm.Questions {
			q := &d.ApplicationForm.Questions[i]
			fields = append(fields,
				huh.NewInput().
					Title(fmt.Sprintf("Question %d", i+1)).
					Value(&q.Question),
				huh.NewConfirm().
					Title("Answer type").
					Affirmative("Short").
					Negative("Long").
					Value(&q.ShortValue),
			)
		}
		group = huh.NewGroup(fields...)

	case machine.StakingPolicyAndReward:
		group = huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Staking amount (%s)", ctx.symbol)).
				Description("Minimum "+ctx.tokens(f.cond.MinStake)).
				Value(&d.StakingPolicyAndReward.StakingAmount),
			huh.NewInput().
				Title("Leaving unstaking period").
				Description("In blocks").
				Value(&f.unstakingText).
				Validate(numberValidator),
			huh.NewInput().
				Title(fmt.Sprintf("Reward per block (%s)", ctx.symbol)).
				Value(&d.StakingPolicyAndReward.RewardPerBlock),
		)

	default:
		f.form = nil
		return
	}

	f.form = huh.NewForm(group).WithTheme(huh.ThemeCatppuccin()).WithShowHelp(false)
	f.form.Init()
}

// nextStep validates the active step and moves on when it is valid
func (f *createOpeningFlow) nextStep(ctx flowContext) tea.Cmd {
	f.syncNumbers()
	f.errs = form.ValidateOpeningStep(f.machine.State(), f.draft, f.cond)
	if !f.errs.Valid() {
		f.createForm(ctx)
		return nil
	}
	f.machine.Send(machine.Next)
	if !f.machine.Matches(machine.Transaction) {
		f.createForm(ctx)
		return nil
	}

	f.form = nil
	tx, err := form.OpeningTx(f.draft, f.cond)
	if err != nil {
		// keeps the probe from being signed
		f.tx = nil
		f.note = err.Error()
		return logCmd("error", "Opening is invalid: "+err.Error())
	}
	return f.track(ctx, tx)
}

func (f *createOpeningFlow) Update(ctx flowContext, msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case feeEstimatedMsg:
		if f.acceptFee(msg) && f.machine.Matches(machine.RequirementsVerification) {
			f.verify(machine.Pass)
			f.createForm(ctx)
		}
		return nil, false

	case openingExportedMsg:
		if msg.err != nil {
			f.note = msg.err.Error()
			return logCmd("error", "Export failed: "+msg.err.Error()), false
		}
		f.note = "Exported to " + msg.path
		return logCmd("info", "Opening exported to "+msg.path), false

	case openingImportedMsg:
		if msg.err != nil {
			f.note = msg.err.Error()
			return logCmd("error", "Import failed: "+msg.err.Error()), false
		}
		f.setDraft(msg.draft)
		f.errs = nil
		f.note = "Imported " + msg.path
		if f.machine.Matches(machine.BeforeTransaction) {
			f.createForm(ctx)
		}
		return logCmd("info", "Opening imported from "+msg.path), false

	case txSubmittedMsg:
		return f.submitted(msg, fmt.Sprintf("Opening %q created in %s", f.draft.WorkingGroupAndDescription.Title, f.group.Name)), false

	case tea.KeyMsg:
		if cmd, done, handled := f.handleKey(ctx, msg, nil); handled {
			return cmd, done
		}
		if !f.machine.Matches(machine.BeforeTransaction) {
			return nil, false
		}
		switch msg.String() {
		case "ctrl+b":
			f.syncNumbers()
			if f.machine.Send(machine.Back) {
				f.errs = nil
				f.createForm(ctx)
			}
			return nil, false
		case "ctrl+e":
			f.syncNumbers()
			return exportOpening(f.draft, openingFile), false
		case "ctrl+o":
			return importOpening(openingFile), false
		case "ctrl+a":
			if f.machine.Matches(machine.ApplicationForm) {
				q := &f.draft.ApplicationForm
				q.Questions = append(q.Questions, form.Question{ShortValue: true})
				f.createForm(ctx)
			}
			return nil, false
		}
	}

	if f.form != nil && f.machine.Matches(machine.BeforeTransaction) {
		model, cmd := f.form.Update(msg)
		if hf, ok := model.(*huh.Form); ok {
			f.form = hf
			switch f.form.State {
			case huh.StateCompleted:
				return f.nextStep(ctx), false
			case huh.StateAborted:
				f.close()
				return nil, true
			}
		}
		return cmd, false
	}
	return nil, false
}

func (f *createOpeningFlow) View(ctx flowContext) string {
	return f.render(ctx, "Create opening",
		"Your opening has been created.",
		"There was a problem creating your opening.",
		func() string { return f.stepView() },
		func() string {
			v := f.signView(ctx, "Authorize transaction",
				fmt.Sprintf("You intend to create an opening in %s.", f.group.Name),
				"Sign transaction and Create", nil)
			if f.tx == nil {
				v.Warning = f.note
			}
			v.Fields = []modals.Field{
				{Label: "Working group", Value: f.group.Name},
				{Label: "Opening title", Value: f.draft.WorkingGroupAndDescription.Title},
				{Label: "Stake", Value: ctx.tokens(mustTokens(f.draft.StakingPolicyAndReward.StakingAmount, ctx.decimals))},
				{Label: "Reward per block", Value: ctx.tokens(mustTokens(f.draft.StakingPolicyAndReward.RewardPerBlock, ctx.decimals))},
				{Label: "Controller account", Value: f.payer},
			}
			return modals.Sign(v)
		},
	)
}

func (f *createOpeningFlow) stepView() string {
	steps := machine.Steps(f.machine)
	next := "Next step"
	if machine.IsLastStepActive(steps) {
		next = "Create Opening"
	}

	var body strings.Builder
	body.WriteString(styles.TitleStyle.Render(machine.StepName(f.machine.State())) + "\n\n")
	if f.form != nil {
		body.WriteString(f.form.View())
	}
	if !f.errs.Valid() {
		for _, field := range f.errs.Fields() {
			body.WriteString("\n" + styles.ErrorStyle.Render(f.errs[field]))
		}
	}
	if f.note != "" {
		body.WriteString("\n" + styles.MutedStyle.Render(f.note))
	}

	hints := []string{styles.Key("Enter") + " " + strings.ToLower(next)}
	if f.machine.Can(machine.Back) {
		hints = append(hints, styles.Key("Ctrl+b")+" back")
	}
	if f.machine.Matches(machine.ApplicationForm) {
		hints = append(hints, styles.Key("Ctrl+a")+" add question")
	}
	hints = append(hints,
		styles.Key("Ctrl+e")+" export",
		styles.Key("Ctrl+o")+" import",
		styles.Key("Esc")+" cancel",
	)

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		modals.Stepper(steps),
		lipgloss.NewStyle().Width(56).Render(body.String()),
	)
	return modals.FrameWidth("Create opening", content+modals.Hints(hints...), 88)
}

// mustTokens parses an amount that already passed validation
func mustTokens(s string, decimals int32) *big.Int {
	v, err := helpers.ParseTokens(s, decimals)
	if err != nil {
		return nil
	}
	return v
}
