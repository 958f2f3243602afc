package machine

import (
	"strings"
)

// State is a node of a chart. Sub-states are written parent.child.
type State string

// Event drives a transition.
type Event string

const (
	RequirementsVerification State = "requirementsVerification"
	BeforeTransaction        State = "beforeTransaction"
	Transaction              State = "transaction"
	Success                  State = "success"
	Error                    State = "error"
	RequirementsFailed       State = "requirementsFailed"
	Canceled                 State = "canceled"
)

const (
	Pass        Event = "PASS"
	Next        Event = "NEXT"
	Back        Event = "BACK"
	Fail        Event = "FAIL"
	DoneSuccess Event = "DONE_SUCCESS"
	DoneError   Event = "DONE_ERROR"
	Cancel      Event = "CANCEL"
)

// Step is an ordered sub-step shown in a stepper.
type Step struct {
	State State
	Title string
}

// Chart is a static transition table.
type Chart struct {
	ID          string
	Initial     State
	Transitions map[State]map[Event]State
	Final       map[State]bool
	Steps       []Step

	// ChildState is the state that runs a child machine built by Child.
	ChildState State
	Child      func() *Chart
}

// Transition is one entry of a machine's history.
type Transition struct {
	From  State
	Event Event
	To    State
}

// Machine holds the current state of one chart instance.
type Machine struct {
	chart   *Chart
	state   State
	history []Transition
	child   *Machine
}

// New starts a machine in the chart's initial state.
func New(chart *Chart) *Machine {
	m := &Machine{chart: chart, state: chart.Initial}
	m.enter()
	return m
}

// ID returns the chart id.
func (m *Machine) ID() string { return m.chart.ID }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// History returns the transitions taken so far, oldest first.
func (m *Machine) History() []Transition {
	return append([]Transition(nil), m.history...)
}

// Done reports whether the machine reached a final state.
func (m *Machine) Done() bool { return m.chart.Final[m.state] }

// Child returns the running child machine, or nil.
func (m *Machine) Child() *Machine { return m.child }

// Can reports whether ev has a transition from the current state.
func (m *Machine) Can(ev Event) bool {
	_, ok := m.chart.Transitions[m.state][ev]
	return ok
}

// Send applies ev. It returns false and leaves the state untouched when the
// current state has no transition for ev.
func (m *Machine) Send(ev Event) bool {
	if m.Done() {
		return false
	}
	to, ok := m.chart.Transitions[m.state][ev]
	if !ok {
		return false
	}
	m.history = append(m.history, Transition{From: m.state, Event: ev, To: to})
	if m.state == m.chart.ChildState {
		m.child = nil
	}
	m.state = to
	m.enter()
	return true
}

// SendChild forwards ev to the child machine. When the child finishes, its
// outcome is sent to the parent as DONE_SUCCESS, DONE_ERROR or CANCEL.
func (m *Machine) SendChild(ev Event) bool {
	if m.child == nil || !m.child.Send(ev) {
		return false
	}
	if !m.child.Done() {
		return true
	}
	switch m.child.State() {
	case Success:
		m.Send(DoneSuccess)
	case Canceled:
		m.Send(Cancel)
	default:
		m.Send(DoneError)
	}
	return true
}

// Matches reports whether the machine is in any of states. A parent state
// matches all of its sub-states.
func (m *Machine) Matches(states ...State) bool {
	for _, s := range states {
		if m.state == s || strings.HasPrefix(string(m.state), string(s)+".") {
			return true
		}
	}
	return false
}

func (m *Machine) enter() {
	if m.chart.Child != nil && m.state == m.chart.ChildState {
		m.child = New(m.chart.Child())
	}
}
