package activity

import (
	"fmt"
	"sort"

	"pioneer-tui/query"
)

// Kind identifies the event an Activity was built from.
type Kind string

const (
	AppliedOnOpening     Kind = "AppliedOnOpening"
	ApplicationWithdrawn Kind = "ApplicationWithdrawn"
	BudgetSpending       Kind = "BudgetSpending"
)

// Activity is one row of a working group's activity feed.
type Activity struct {
	ID        string
	CreatedAt string
	Kind      Kind
	Text      string
}

func AsAppliedOnOpening(e query.AppliedOnOpeningEvent) Activity {
	return Activity{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Kind:      AppliedOnOpening,
		Text:      fmt.Sprintf("%s applied to opening %s", orUnknown(e.Applicant), e.OpeningID),
	}
}

func AsApplicationWithdrawn(e query.ApplicationWithdrawnEvent) Activity {
	return Activity{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Kind:      ApplicationWithdrawn,
		Text:      fmt.Sprintf("%s withdrew application from opening %s", orUnknown(e.Applicant), e.OpeningID),
	}
}

func AsBudgetSpending(e query.BudgetSpendingEvent) Activity {
	amount := "0"
	if e.Amount != nil {
		amount = e.Amount.String()
	}
	text := fmt.Sprintf("%s spent %s from its budget", orUnknown(e.GroupName), amount)
	if e.Rationale != "" {
		text += ": " + e.Rationale
	}
	return Activity{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Kind:      BudgetSpending,
		Text:      text,
	}
}

// Merge concatenates the lists and orders them newest first. CreatedAt is an
// ISO-8601 string so a lexical comparison is a chronological one; equal
// timestamps keep their input order.
func Merge(lists ...[]Activity) []Activity {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]Activity, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// GroupActivities builds the feed of one working group from its raw events.
func GroupActivities(ev query.GroupEvents) []Activity {
	applied := make([]Activity, 0, len(ev.AppliedOnOpening))
	for _, e := range ev.AppliedOnOpening {
		applied = append(applied, AsAppliedOnOpening(e))
	}
	withdrawn := make([]Activity, 0, len(ev.ApplicationWithdrawn))
	for _, e := range ev.ApplicationWithdrawn {
		withdrawn = append(withdrawn, AsApplicationWithdrawn(e))
	}
	spending := make([]Activity, 0, len(ev.BudgetSpending))
	for _, e := range ev.BudgetSpending {
		spending = append(spending, AsBudgetSpending(e))
	}
	return Merge(applied, withdrawn, spending)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
