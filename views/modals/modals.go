package modals

import (
	"strings"

	"pioneer-tui/helpers"
	"pioneer-tui/machine"
	"pioneer-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

const width = 64

// Field is a label/value row of a sign modal
type Field struct {
	Label string
	Value string
}

// SignView is what the sign modal shows
type SignView struct {
	Title      string
	Text       string
	Fields     []Field
	Fee        string
	FeeLoading bool
	Warning    string
	Button     string
	CanSign    bool
	Signing    bool
	QR         string
	Spinner    string
}

// Frame draws a modal box with a title
func Frame(title, body string) string {
	return FrameWidth(title, body, width)
}

// FrameWidth is Frame for modals that need more room, like the wizards
func FrameWidth(title, body string, w int) string {
	head := lipgloss.NewStyle().
		Foreground(styles.CAccent2).
		Bold(true).
		Width(w).
		Render(title)
	return styles.ModalStyle.Render(head + "\n\n" + lipgloss.NewStyle().Width(w).Render(body))
}

// Hints renders the key hints shown at the bottom of a modal
func Hints(keys ...string) string {
	return "\n\n" + styles.HotkeyStyle.Render(strings.Join(keys, "   "))
}

// Wait is shown while something is being checked or loaded
func Wait(title, description, spinnerView string) string {
	return Frame(title, spinnerView+" "+description+Hints(styles.Key("Esc")+" close"))
}

// WaitError replaces the wait body when the check itself failed
func WaitError(title, description, errMsg string) string {
	body := styles.MutedStyle.Render(description) + "\n\n" + styles.ErrorStyle.Render("⚠ "+errMsg)
	return Frame(title, body+Hints(styles.Key("Esc")+" close"))
}

// Sign asks the user to authorize a transaction
func Sign(v SignView) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(styles.CText).Render(v.Text))
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Foreground(styles.CMuted).Width(24)
	value := lipgloss.NewStyle().Foreground(styles.CText)
	for _, f := range v.Fields {
		b.WriteString(label.Render(f.Label) + value.Render(f.Value) + "\n")
	}

	fee := v.Fee
	if v.FeeLoading {
		fee = v.Spinner + " estimating…"
	}
	b.WriteString(label.Render("Transaction fee:") + value.Bold(true).Render(fee) + "\n")

	if v.Warning != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(styles.CWarn).Bold(true).Render("⚠ "+v.Warning) + "\n")
	}

	if v.QR != "" {
		b.WriteString("\n" + v.QR)
		b.WriteString(styles.MutedStyle.Render("Scan to review the call on an offline signer") + "\n")
	}

	if v.Signing {
		b.WriteString("\n" + v.Spinner + " waiting for the signer…")
		return Frame(v.Title, b.String())
	}

	b.WriteString(styles.Button(v.Button, v.CanSign, !v.CanSign))
	return Frame(v.Title, b.String()+Hints(styles.Key("Enter")+" sign", styles.Key("q")+" QR", styles.Key("Esc")+" cancel"))
}

// Success is shown once the transaction was included
func Success(title, text string) string {
	body := lipgloss.NewStyle().Foreground(styles.CAccent).Bold(true).Render("✓ Success") + "\n\n" +
		lipgloss.NewStyle().Foreground(styles.CText).Render(text)
	return Frame(title, body+Hints(styles.Key("Enter")+" close"))
}

// Failure is shown when the chain rejected the transaction
func Failure(text, detail string) string {
	body := styles.ErrorStyle.Render("✗ Failure") + "\n\n" +
		lipgloss.NewStyle().Foreground(styles.CText).Render(text)
	if detail != "" {
		body += "\n\n" + styles.MutedStyle.Render(detail)
	}
	return Frame("Failure", body+Hints(styles.Key("Enter")+" close"))
}

// InsufficientFunds is shown when the payer cannot cover the fee
func InsufficientFunds(address, amount string) string {
	body := lipgloss.NewStyle().Foreground(styles.CWarn).Bold(true).Render("Insufficient funds") + "\n\n" +
		lipgloss.NewStyle().Foreground(styles.CText).Render("You need at least "+amount+" on your account to cover the transaction fee.") + "\n\n" +
		styles.MutedStyle.Render(helpers.ShortenAddr(address))
	return Frame("Insufficient funds", body+Hints(styles.Key("Enter")+" close"))
}

// Stepper renders the steps of a multi step modal
func Stepper(steps []machine.StepView) string {
	var lines []string
	for i, s := range steps {
		var mark string
		st := lipgloss.NewStyle()
		switch {
		case s.Done:
			mark = "✓"
			st = st.Foreground(styles.CAccent)
		case s.Active:
			mark = "●"
			st = st.Foreground(styles.CAccent2).Bold(true)
		default:
			mark = "○"
			st = st.Foreground(styles.CMuted)
		}
		lines = append(lines, st.Render(mark+" "+s.Title))
		if i < len(steps)-1 {
			lines = append(lines, styles.MutedStyle.Render("│"))
		}
	}
	return lipgloss.NewStyle().Width(28).Render(strings.Join(lines, "\n"))
}

// Place centers a modal on the screen
func Place(w, h int, modal string) string {
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, modal)
}
