package form

import (
	"encoding/json"
	"math/big"
	"testing"

	"pioneer-tui/chain"
	"pioneer-tui/machine"
	"pioneer-tui/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceAddr = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	bobAddr   = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
)

func TestReduceCopyOnWrite(t *testing.T) {
	d := Draft{"name": "Alice", "handle": "alice"}
	next := Reduce(d, Action{Type: "handle", Value: "alice2"})

	assert.Equal(t, "alice", d["handle"])
	assert.Equal(t, "alice2", next["handle"])
	assert.Equal(t, "Alice", next["name"])

	added := Reduce(next, Action{Type: "about", Value: "hi"})
	assert.Len(t, added, 3)
	assert.Len(t, next, 2)
}

func TestCheckEdits(t *testing.T) {
	baseline := map[string]string{"name": "Alice", "handle": "alice"}

	assert.False(t, CheckEdits(Draft{"name": "Alice", "handle": "alice"}, baseline))
	assert.False(t, CheckEdits(Draft{"name": "Alice", "about": ""}, baseline), "missing and empty are equal")
	assert.True(t, CheckEdits(Draft{"name": "Alice", "about": "x"}, baseline))
	assert.True(t, CheckEdits(Draft{"handle": "alice2"}, baseline))
	assert.False(t, CheckEdits(Draft{}, baseline))
}

func TestUpdateMembershipScenario(t *testing.T) {
	member := query.Member{ID: "7", Handle: "alice", Name: "Alice"}
	baseline := UpdateMemberDraft(member)

	d := Reduce(baseline, Action{Type: FieldHandle, Value: "alice2"})
	ctx := UpdateMemberContext{Size: 0, IsHandleChanged: d[FieldHandle] != member.Handle}

	errs := ValidateUpdateMember(d, ctx)
	assert.True(t, errs.Valid())
	assert.True(t, CheckEdits(d, baseline))

	tx := UpdateMemberTx(d, baseline)
	body, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"module":"members","method":"updateProfile","args":["7","alice2",{}]}`, string(body))
}

func TestValidateUpdateMember(t *testing.T) {
	t.Run("taken handle", func(t *testing.T) {
		errs := ValidateUpdateMember(Draft{FieldHandle: "bob"}, UpdateMemberContext{Size: 8, IsHandleChanged: true})
		assert.Equal(t, "This handle is already taken", errs[FieldHandle])
	})

	t.Run("empty handle", func(t *testing.T) {
		errs := ValidateUpdateMember(Draft{FieldHandle: ""}, UpdateMemberContext{IsHandleChanged: true})
		assert.Equal(t, "Handle is required", errs[FieldHandle])
	})

	t.Run("unchanged handle is not checked", func(t *testing.T) {
		errs := ValidateUpdateMember(Draft{FieldHandle: "alice"}, UpdateMemberContext{Size: 8})
		assert.True(t, errs.Valid())
	})

	t.Run("avatar url", func(t *testing.T) {
		errs := ValidateUpdateMember(Draft{FieldAvatarURI: "not a url"}, UpdateMemberContext{})
		assert.Equal(t, "Invalid URL", errs[FieldAvatarURI])

		errs = ValidateUpdateMember(Draft{FieldAvatarURI: "https://example.com/a.png"}, UpdateMemberContext{})
		assert.False(t, errs.Has(FieldAvatarURI))
	})
}

func TestValidateTransfer(t *testing.T) {
	transferable := big.NewInt(1000)

	amount, errs := ValidateTransfer(TransferDraft{From: aliceAddr, To: bobAddr, Amount: "0.5"}, transferable, 3)
	require.True(t, errs.Valid(), errs.String())
	assert.Equal(t, "500", amount.String())

	_, errs = ValidateTransfer(TransferDraft{From: aliceAddr, To: bobAddr, Amount: "2"}, transferable, 3)
	assert.Equal(t, "Insufficient funds", errs["amount"])

	_, errs = ValidateTransfer(TransferDraft{From: aliceAddr, To: aliceAddr, Amount: "1"}, transferable, 3)
	assert.Equal(t, "Cannot transfer to the same account", errs["to"])

	// the same key encoded for another network
	pub, err := chain.AccountID(aliceAddr)
	require.NoError(t, err)
	aliceJoy, err := chain.EncodeAddress(126, pub)
	require.NoError(t, err)
	require.NotEqual(t, aliceAddr, aliceJoy)
	_, errs = ValidateTransfer(TransferDraft{From: aliceAddr, To: aliceJoy, Amount: "1"}, transferable, 3)
	assert.Equal(t, "Cannot transfer to the same account", errs["to"])

	_, errs = ValidateTransfer(TransferDraft{From: aliceAddr, To: "nope", Amount: ""}, transferable, 3)
	assert.Equal(t, "Invalid address", errs["to"])
	assert.Equal(t, "Amount is required", errs["amount"])

	_, errs = ValidateTransfer(TransferDraft{From: aliceAddr, To: bobAddr, Amount: "0"}, transferable, 3)
	assert.True(t, errs.Has("amount"))
}

func validOpening() OpeningDraft {
	d := DefaultOpening()
	d.WorkingGroupAndDescription = WorkingGroupAndDescription{Title: "Forum moderator", ShortDescription: "Moderate", Description: "Keep the forum clean"}
	d.DurationAndProcess.Details = "Apply with a short letter"
	d.ApplicationForm.Questions[0].Question = "Why you?"
	d.StakingPolicyAndReward = StakingPolicyAndReward{StakingAmount: "60000", LeavingUnstakingPeriod: 100, RewardPerBlock: "1.5"}
	return d
}

var testConditions = OpeningConditions{
	Group:              "forumWorkingGroup",
	HiringTarget:       1,
	MinStake:           big.NewInt(50000),
	MinUnstakingPeriod: 10,
	Decimals:           0,
}

func TestValidateOpeningStep(t *testing.T) {
	d := DefaultOpening()

	errs := ValidateOpeningStep(machine.WorkingGroupAndDescription, d, testConditions)
	assert.Equal(t, "Opening title is required", errs["workingGroupAndDescription.title"])

	errs = ValidateOpeningStep(machine.ApplicationForm, d, testConditions)
	assert.Equal(t, "Question is required", errs["applicationForm.question"])

	d.DurationAndProcess.IsLimited = true
	errs = ValidateOpeningStep(machine.DurationAndProcess, d, testConditions)
	assert.True(t, errs.Has("durationAndProcess.duration"))

	d = validOpening()
	d.StakingPolicyAndReward.StakingAmount = "100"
	errs = ValidateOpeningStep(machine.StakingPolicyAndReward, d, testConditions)
	assert.Contains(t, errs["stakingPolicyAndReward.stakingAmount"], "Minimal stake amount")

	assert.True(t, ValidateOpeningStep(machine.Transaction, d, testConditions).Valid())
}

func TestValidOpening(t *testing.T) {
	cond := testConditions
	cond.Decimals = 1
	d := validOpening()
	require.True(t, ValidateOpening(d, cond).Valid(), ValidateOpening(d, cond).String())

	p, err := OpeningTxParams(d, cond)
	require.NoError(t, err)
	assert.Equal(t, "600000", p.StakePolicy.StakeAmount)
	assert.Equal(t, "15", p.RewardPerBlock.String())
	assert.Contains(t, p.Description, `"title":"Forum moderator"`)

	tx, err := OpeningTx(d, cond)
	require.NoError(t, err)
	assert.Equal(t, "forumWorkingGroup.addOpening", tx.String())

	_, err = OpeningTx(DefaultOpening(), cond)
	assert.Error(t, err)
}

func TestOpeningExportImport(t *testing.T) {
	d := validOpening()
	data, err := ExportJSON(d)
	require.NoError(t, err)

	back, err := ImportJSON(data)
	require.NoError(t, err)
	assert.Equal(t, d, back)

	partial, err := ImportJSON([]byte(`{"workingGroupAndDescription":{"title":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, "x", partial.WorkingGroupAndDescription.Title)
	assert.Len(t, partial.ApplicationForm.Questions, 1)

	_, err = ImportJSON([]byte(`{"bogus":1}`))
	assert.Error(t, err)
}
