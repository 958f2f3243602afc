package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostActionHappyPath(t *testing.T) {
	m := New(PostActionChart())
	assert.Equal(t, RequirementsVerification, m.State())
	assert.Nil(t, m.Child())

	require.True(t, m.Send(Pass))
	assert.Equal(t, Transaction, m.State())
	require.NotNil(t, m.Child())
	assert.Equal(t, Prepare, m.Child().State())

	assert.True(t, m.SendChild(Sign))
	assert.True(t, m.SendChild(Signed))
	assert.Equal(t, Pending, m.Child().State())
	assert.True(t, m.SendChild(TxSuccess))

	assert.Equal(t, Success, m.State())
	assert.True(t, m.Done())
	assert.Nil(t, m.Child())
	assert.Equal(t, []Transition{
		{From: RequirementsVerification, Event: Pass, To: Transaction},
		{From: Transaction, Event: DoneSuccess, To: Success},
	}, m.History())
}

func TestRequirementsFail(t *testing.T) {
	m := New(PostActionChart())
	require.True(t, m.Send(Fail))
	assert.Equal(t, RequirementsFailed, m.State())
	assert.True(t, m.Done())
	assert.False(t, m.Send(Pass))
}

func TestTransactionOnlyAfterVerification(t *testing.T) {
	for _, chart := range []*Chart{PostActionChart(), TransferChart(), UpdateMembershipChart(), CreateOpeningChart()} {
		m := New(chart)
		for _, ev := range []Event{Back, DoneSuccess, DoneError, Sign, Signed} {
			assert.False(t, m.Send(ev), "%s: %s from requirementsVerification", chart.ID, ev)
		}
		assert.Equal(t, RequirementsVerification, m.State())
		assert.Empty(t, m.History())
	}
}

func TestNextEntersFirstStep(t *testing.T) {
	m := New(CreateOpeningChart())
	require.True(t, m.Send(Next))
	assert.Equal(t, WorkingGroupAndDescription, m.State())

	require.True(t, m.Send(Fail))
	assert.Equal(t, RequirementsFailed, m.State())
}

func TestNoReverification(t *testing.T) {
	for _, chart := range []*Chart{PostActionChart(), TransferChart(), UpdateMembershipChart(), CreateOpeningChart()} {
		for from, events := range chart.Transitions {
			for ev, to := range events {
				if from != RequirementsVerification {
					assert.NotEqual(t, RequirementsVerification, to, "%s: %s -%s->", chart.ID, from, ev)
				}
			}
		}
	}
}

func TestChildError(t *testing.T) {
	m := New(TransferChart())
	require.True(t, m.Send(Pass))
	assert.Equal(t, BeforeTransaction, m.State())
	require.True(t, m.Send(Next))

	require.True(t, m.SendChild(Sign))
	require.True(t, m.SendChild(TxError))
	assert.Equal(t, Error, m.State())
}

func TestChildCancel(t *testing.T) {
	m := New(PostActionChart())
	require.True(t, m.Send(Pass))
	require.True(t, m.SendChild(Cancel))
	assert.Equal(t, Canceled, m.State())
}

func TestSendChildWithoutChild(t *testing.T) {
	m := New(PostActionChart())
	assert.False(t, m.SendChild(Sign))

	require.True(t, m.Send(Pass))
	assert.False(t, m.SendChild(TxSuccess), "pending is not reached before signing")
	assert.Equal(t, Prepare, m.Child().State())
}

func TestCreateOpeningSteps(t *testing.T) {
	m := New(CreateOpeningChart())
	steps := Steps(m)
	require.Len(t, steps, 4)
	for _, s := range steps {
		assert.False(t, s.Active)
		assert.False(t, s.Done)
	}

	require.True(t, m.Send(Pass))
	assert.Equal(t, WorkingGroupAndDescription, m.State())
	assert.True(t, m.Matches(BeforeTransaction))
	assert.False(t, m.Send(Back))

	require.True(t, m.Send(Next))
	require.True(t, m.Send(Next))
	require.True(t, m.Send(Back))
	assert.Equal(t, DurationAndProcess, m.State())

	require.True(t, m.Send(Next))
	require.True(t, m.Send(Next))
	assert.Equal(t, StakingPolicyAndReward, m.State())

	steps = Steps(m)
	assert.True(t, IsLastStepActive(steps))
	assert.True(t, steps[0].Done)
	assert.True(t, steps[2].Done)
	assert.Equal(t, "Staking Policy & Reward", steps[3].Title)

	require.True(t, m.Send(Next))
	assert.Equal(t, Transaction, m.State())
	steps = Steps(m)
	assert.False(t, IsLastStepActive(steps))
	assert.True(t, steps[3].Done)
}

func TestMatchesPrefix(t *testing.T) {
	m := New(CreateOpeningChart())
	require.True(t, m.Send(Pass))
	assert.True(t, m.Matches(WorkingGroupAndDescription))
	assert.True(t, m.Matches(Transaction, BeforeTransaction))
	assert.False(t, m.Matches(State("before")))
}

func TestStepName(t *testing.T) {
	assert.Equal(t, "Application form", StepName(ApplicationForm))
	assert.Equal(t, "Working group and description", StepName(WorkingGroupAndDescription))
	assert.Equal(t, "Transaction", StepName(Transaction))
	assert.False(t, IsLastStepActive(nil))
}
