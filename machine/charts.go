package machine

import (
	"strings"
	"unicode"
)

// Transaction sub-machine states.
const (
	Prepare State = "prepare"
	Signing State = "signing"
	Pending State = "pending"
)

// Transaction sub-machine events.
const (
	Sign      Event = "SIGN"
	Signed    Event = "SIGNED"
	TxSuccess Event = "SUCCESS"
	TxError   Event = "ERROR"
)

// Sub-steps of the create opening wizard.
const (
	WorkingGroupAndDescription State = "beforeTransaction.workingGroupAndDescription"
	DurationAndProcess         State = "beforeTransaction.durationAndProcess"
	ApplicationForm            State = "beforeTransaction.applicationForm"
	StakingPolicyAndReward     State = "beforeTransaction.stakingPolicyAndReward"
)

// TxChart signs and submits one extrinsic.
func TxChart() *Chart {
	return &Chart{
		ID:      "transaction",
		Initial: Prepare,
		Transitions: map[State]map[Event]State{
			Prepare: {Sign: Signing, Cancel: Canceled},
			Signing: {Signed: Pending, TxError: Error, Cancel: Canceled},
			Pending: {TxSuccess: Success, TxError: Error},
		},
		Final: map[State]bool{Success: true, Error: true, Canceled: true},
	}
}

// ActionChart builds the common action flow:
//
//	requirementsVerification -PASS|NEXT-> steps... -NEXT-> transaction -> success|error
//	requirementsVerification|steps -FAIL-> requirementsFailed
//
// Steps move forward on NEXT and backward on BACK. Once the machine left
// requirementsVerification there is no way back into it.
func ActionChart(id string, steps ...Step) *Chart {
	c := &Chart{
		ID:          id,
		Initial:     RequirementsVerification,
		Transitions: map[State]map[Event]State{},
		Final: map[State]bool{
			Success:            true,
			Error:              true,
			RequirementsFailed: true,
			Canceled:           true,
		},
		Steps:      steps,
		ChildState: Transaction,
		Child:      TxChart,
	}

	first := Transaction
	if len(steps) > 0 {
		first = steps[0].State
	}
	c.Transitions[RequirementsVerification] = map[Event]State{Pass: first, Next: first, Fail: RequirementsFailed}

	for i, s := range steps {
		next := Transaction
		if i+1 < len(steps) {
			next = steps[i+1].State
		}
		t := map[Event]State{Next: next, Fail: RequirementsFailed, Cancel: Canceled}
		if i > 0 {
			t[Back] = steps[i-1].State
		}
		c.Transitions[s.State] = t
	}

	c.Transitions[Transaction] = map[Event]State{
		DoneSuccess: Success,
		DoneError:   Error,
		Cancel:      Canceled,
	}
	return c
}

// PostActionChart deletes a forum post: verify funds, then sign.
func PostActionChart() *Chart {
	return ActionChart("postAction")
}

// TransferChart collects the transfer form before signing.
func TransferChart() *Chart {
	return ActionChart("transfer", Step{State: BeforeTransaction, Title: "Transfer"})
}

// UpdateMembershipChart edits the membership form before signing.
func UpdateMembershipChart() *Chart {
	return ActionChart("updateMembership", Step{State: BeforeTransaction, Title: "Update membership"})
}

// CreateOpeningChart walks the four opening steps before signing.
func CreateOpeningChart() *Chart {
	return ActionChart("createOpening",
		Step{State: WorkingGroupAndDescription, Title: "Working group & Description"},
		Step{State: DurationAndProcess, Title: "Duration & Process"},
		Step{State: ApplicationForm, Title: "Application Form"},
		Step{State: StakingPolicyAndReward, Title: "Staking Policy & Reward"},
	)
}

// StepView is a stepper entry.
type StepView struct {
	Title  string
	Active bool
	Done   bool
}

// Steps renders the chart's steps against the current state.
func Steps(m *Machine) []StepView {
	active := -1
	for i, s := range m.chart.Steps {
		if m.Matches(s.State) {
			active = i
		}
	}
	past := active < 0 && m.Matches(Transaction, Success, Error)

	out := make([]StepView, len(m.chart.Steps))
	for i, s := range m.chart.Steps {
		title := s.Title
		if title == "" {
			title = StepName(s.State)
		}
		out[i] = StepView{
			Title:  title,
			Active: i == active,
			Done:   past || (active >= 0 && i < active),
		}
	}
	return out
}

// IsLastStepActive reports whether the final step is the active one.
func IsLastStepActive(steps []StepView) bool {
	return len(steps) > 0 && steps[len(steps)-1].Active
}

// StepName turns the last segment of a state into words:
// "beforeTransaction.applicationForm" becomes "Application form".
func StepName(s State) string {
	name := string(s)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
