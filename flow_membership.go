package main

import (
	"fmt"
	"strings"

	"pioneer-tui/form"
	"pioneer-tui/machine"
	"pioneer-tui/query"
	"pioneer-tui/styles"
	"pioneer-tui/views/modals"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var memberFieldTitles = map[string]string{
	form.FieldName:      "Member name",
	form.FieldHandle:    "Membership handle",
	form.FieldAbout:     "About member",
	form.FieldAvatarURI: "Member avatar URL",
}

// updateMembershipFlow edits the profile of the active member.
type updateMembershipFlow struct {
	*txAction
	member   query.Member
	baseline form.Draft
	draft    form.Draft
	inputs   []textinput.Model
	focus    int

	// handleSize is the size stored under the draft handle's hash
	handleSize  int
	sizeKnown   bool
	handleError string
}

func newUpdateMembershipFlow(m query.Member) *updateMembershipFlow {
	baseline := form.UpdateMemberDraft(m)
	f := &updateMembershipFlow{
		txAction:  newTxAction(machine.UpdateMembershipChart(), m.ControllerAccount),
		member:    m,
		baseline:  baseline,
		draft:     baseline,
		sizeKnown: true,
	}
	for i, field := range form.MemberFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 48
		ti.SetValue(baseline[field])
		if i == 0 {
			ti.Focus()
		}
		f.inputs = append(f.inputs, ti)
	}
	return f
}

func (f *updateMembershipFlow) Init(ctx flowContext) tea.Cmd {
	// an update with no changes costs the same as any other
	return tea.Batch(textinput.Blink, f.track(ctx, form.UpdateMemberTx(f.baseline, f.baseline)))
}

func (f *updateMembershipFlow) handleChanged() bool {
	return f.draft[form.FieldHandle] != f.baseline[form.FieldHandle]
}

func (f *updateMembershipFlow) errors() form.Errors {
	return form.ValidateUpdateMember(f.draft, form.UpdateMemberContext{
		Size:            f.handleSize,
		IsHandleChanged: f.handleChanged(),
	})
}

// canUpdate reports whether the form may be saved
func (f *updateMembershipFlow) canUpdate() bool {
	return f.sizeKnown && f.errors().Valid() && form.CheckEdits(f.draft, f.baseline)
}

// setField applies an edit and starts a handle lookup when the handle changed
func (f *updateMembershipFlow) setField(ctx flowContext, field, value string) tea.Cmd {
	if f.draft[field] == value {
		return nil
	}
	f.draft = form.Reduce(f.draft, form.Action{Type: field, Value: value})
	if field != form.FieldHandle {
		return nil
	}
	f.handleError = ""
	if !f.handleChanged() || value == "" {
		f.sizeKnown = true
		f.handleSize = 0
		return nil
	}
	f.sizeKnown = false
	return lookupHandleSize(ctx.node, value)
}

func (f *updateMembershipFlow) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *updateMembershipFlow) Update(ctx flowContext, msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case feeEstimatedMsg:
		if f.acceptFee(msg) {
			f.verify(machine.Pass)
		}
		return nil, false

	case handleSizeMsg:
		// answers for a handle that was typed over are stale
		if msg.handle != f.draft[form.FieldHandle] {
			return nil, false
		}
		if msg.err != nil {
			f.handleError = msg.err.Error()
			return logCmd("error", "Handle lookup failed: "+msg.err.Error()), false
		}
		f.handleSize = msg.size
		f.sizeKnown = true
		return nil, false

	case txSubmittedMsg:
		return f.submitted(msg, fmt.Sprintf("Membership %s updated", f.member.Handle)), false

	case tea.KeyMsg:
		if cmd, done, handled := f.handleKey(ctx, msg, nil); handled {
			return cmd, done
		}
		if !f.machine.Matches(machine.BeforeTransaction) {
			return nil, false
		}
		switch msg.String() {
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return nil, false
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return nil, false
		case "enter":
			if !f.canUpdate() {
				return nil, false
			}
			tx := form.UpdateMemberTx(f.draft, f.baseline)
			f.machine.Send(machine.Next)
			return f.track(ctx, tx), false
		}
	}

	if !f.machine.Matches(machine.BeforeTransaction) {
		return nil, false
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	field := form.MemberFields[f.focus]
	return tea.Batch(cmd, f.setField(ctx, field, f.inputs[f.focus].Value())), false
}

func (f *updateMembershipFlow) View(ctx flowContext) string {
	return f.render(ctx, "Update membership",
		"Your membership has been updated.",
		"There was a problem updating your membership.",
		func() string { return f.formView(ctx) },
		func() string {
			v := f.signView(ctx, "Authorize transaction", "You intend to update your membership.", "Sign and update a member", nil)
			v.Fields = []modals.Field{{Label: "Controller account", Value: f.payer}}
			for _, field := range form.MemberFields {
				if f.draft[field] != f.baseline[field] {
					v.Fields = append(v.Fields, modals.Field{Label: memberFieldTitles[field], Value: f.draft[field]})
				}
			}
			return modals.Sign(v)
		},
	)
}

func (f *updateMembershipFlow) formView(ctx flowContext) string {
	errs := f.errors()
	label := lipgloss.NewStyle().Foreground(styles.CMuted)
	focused := lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true)

	var b strings.Builder
	for i, field := range form.MemberFields {
		title := label.Render(memberFieldTitles[field])
		if i == f.focus {
			title = focused.Render(memberFieldTitles[field])
		}
		b.WriteString(title + "\n")
		b.WriteString(f.inputs[i].View() + "\n")
		switch {
		case field == form.FieldHandle && f.handleError != "":
			b.WriteString(styles.ErrorStyle.Render(f.handleError) + "\n")
		case field == form.FieldHandle && !f.sizeKnown:
			b.WriteString(styles.MutedStyle.Render(ctx.spinner+" checking handle") + "\n")
		case errs.Has(field):
			b.WriteString(styles.ErrorStyle.Render(errs[field]) + "\n")
		}
		b.WriteString("\n")
	}

	save := styles.Button("Save changes", true, !f.canUpdate())
	b.WriteString(save)
	return modals.Frame("Edit membership",
		b.String()+modals.Hints(styles.Key("Tab")+" next field", styles.Key("Enter")+" save", styles.Key("Esc")+" cancel"))
}
