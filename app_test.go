package main

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"pioneer-tui/chain"
	"pioneer-tui/config"
	"pioneer-tui/fee"
	"pioneer-tui/form"
	"pioneer-tui/machine"
	"pioneer-tui/query"
	"pioneer-tui/rpc"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	bob   = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
)

type fakeChain struct {
	balance *big.Int
	// per-address balances, balance for everyone else
	accounts map[string]*big.Int
	sizes    map[string]int
}

func (c *fakeChain) TransferableBalance(_ context.Context, address string) (*big.Int, error) {
	if bal, ok := c.accounts[address]; ok {
		return new(big.Int).Set(bal), nil
	}
	return new(big.Int).Set(c.balance), nil
}

func (c *fakeChain) HandleHashSize(_ context.Context, handle string) (int, error) {
	return c.sizes[handle], nil
}

type fakeSigner struct {
	fee    *big.Int
	result rpc.SubmitResult
	err    error
	sent   []*chain.Tx
}

func (s *fakeSigner) PaymentInfo(context.Context, string, *chain.Tx) (*big.Int, error) {
	return new(big.Int).Set(s.fee), nil
}

func (s *fakeSigner) SignAndSend(_ context.Context, _ string, tx *chain.Tx) (rpc.SubmitResult, error) {
	s.sent = append(s.sent, tx)
	return s.result, s.err
}

type fakePosts struct {
	parents query.PostParents
	err     error
}

func (p fakePosts) PostParents(context.Context, string) (query.PostParents, error) {
	return p.parents, p.err
}

func testContext(balance, txFee int64) (flowContext, *fakeSigner) {
	s := &fakeSigner{fee: big.NewInt(txFee), result: rpc.SubmitResult{Success: true, BlockHash: "0xabcdef0123456789"}}
	return flowContext{
		node:     &fakeChain{balance: big.NewInt(balance), sizes: map[string]int{"taken": 4}},
		signer:   s,
		posts:    fakePosts{parents: query.PostParents{PostID: "7", ThreadID: "3", CategoryID: "1"}},
		balances: map[string]*big.Int{},
		symbol:   "JOY",
		decimals: 10,
	}, s
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// drive feeds the flow messages produced by cmd back into f until none are left
func drive(t *testing.T, f flow, ctx flowContext, cmd tea.Cmd) {
	t.Helper()
	queue := collect(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case feeEstimatedMsg, txSubmittedMsg, handleSizeMsg, postParentsMsg, accountBalanceMsg:
			next, _ := f.Update(ctx, msg)
			queue = append(queue, collect(next)...)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var testPost = query.Post{ID: "7", ThreadID: "3", AuthorID: "12", Text: "hello"}

func TestDeletePostHappyPath(t *testing.T) {
	ctx, s := testContext(1000, 10)
	f := newDeletePostFlow(testPost, alice)

	drive(t, f, ctx, f.Init(ctx))
	require.True(t, f.machine.Matches(machine.Transaction))
	assert.True(t, f.canSign(nil))
	assert.Contains(t, f.View(ctx), "Sign transaction and Delete")

	cmd, done := f.Update(ctx, key("enter"))
	assert.False(t, done)
	assert.True(t, f.signing())
	drive(t, f, ctx, cmd)

	assert.Equal(t, machine.Success, f.machine.State())
	require.Len(t, s.sent, 1)
	assert.Equal(t, "deletePosts", s.sent[0].Method())

	_, done = f.Update(ctx, key("enter"))
	assert.True(t, done)
}

func TestDeletePostUnaffordable(t *testing.T) {
	ctx, s := testContext(5, 10)
	f := newDeletePostFlow(testPost, alice)

	drive(t, f, ctx, f.Init(ctx))
	assert.Equal(t, machine.RequirementsFailed, f.machine.State())
	assert.Empty(t, s.sent)
}

func TestDeletePostRejected(t *testing.T) {
	ctx, s := testContext(1000, 10)
	s.result = rpc.SubmitResult{Success: false, Error: "forum.PostDoesNotExist"}
	f := newDeletePostFlow(testPost, alice)

	drive(t, f, ctx, f.Init(ctx))
	cmd, _ := f.Update(ctx, key("enter"))
	drive(t, f, ctx, cmd)

	assert.Equal(t, machine.Error, f.machine.State())
	assert.Equal(t, "forum.PostDoesNotExist", f.failure)
}

func TestDeletePostLookupFails(t *testing.T) {
	ctx, _ := testContext(1000, 10)
	ctx.posts = fakePosts{err: errors.New("post not found")}
	f := newDeletePostFlow(testPost, alice)

	drive(t, f, ctx, f.Init(ctx))
	assert.True(t, f.machine.Matches(machine.RequirementsVerification))
	assert.Contains(t, f.View(ctx), "post not found")
}

func TestFlowWithoutSigner(t *testing.T) {
	ctx, _ := testContext(1000, 10)
	ctx.signer = nil
	f := newDeletePostFlow(testPost, alice)

	drive(t, f, ctx, f.Init(ctx))
	assert.True(t, f.machine.Matches(machine.RequirementsVerification))
	assert.ErrorIs(t, f.fees.Err(), errNotConnected)
}

func TestStaleFeeIsDiscarded(t *testing.T) {
	ctx, _ := testContext(1000, 10)
	f := newDeletePostFlow(testPost, alice)

	f.Update(ctx, postParentsMsg{postID: "7", parents: query.PostParents{ThreadID: "3", CategoryID: "1"}})
	require.NotEmpty(t, f.fees.TxID())

	stale := fee.Result{
		TxID: "some-other-tx",
		Info: fee.Info{TransactionFee: big.NewInt(1), Transferable: big.NewInt(100), CanAfford: true},
	}
	f.Update(ctx, feeEstimatedMsg{result: stale})
	assert.Nil(t, f.fees.Info())
	assert.True(t, f.machine.Matches(machine.RequirementsVerification))

	current := stale
	current.TxID = f.fees.TxID()
	f.Update(ctx, feeEstimatedMsg{result: current})
	assert.True(t, f.machine.Matches(machine.Transaction))
}

func TestCloseDuringVerification(t *testing.T) {
	ctx, _ := testContext(1000, 10)
	f := newDeletePostFlow(testPost, alice)

	_, done := f.Update(ctx, key("esc"))
	assert.True(t, done)
	assert.True(t, f.machine.Matches(machine.RequirementsVerification))
}

func TestEscIgnoredWhileSigning(t *testing.T) {
	ctx, _ := testContext(1000, 10)
	f := newDeletePostFlow(testPost, alice)
	drive(t, f, ctx, f.Init(ctx))

	f.Update(ctx, key("enter"))
	require.True(t, f.signing())
	_, done := f.Update(ctx, key("esc"))
	assert.False(t, done)
}

func testMember() query.Member {
	return query.Member{
		ID:                "12",
		Handle:            "alice",
		Name:              "Alice",
		RootAccount:       alice,
		ControllerAccount: alice,
	}
}

func TestMembershipHandleLookup(t *testing.T) {
	ctx, _ := testContext(1000, 10)
	f := newUpdateMembershipFlow(testMember())
	drive(t, f, ctx, f.Init(ctx))
	require.True(t, f.machine.Matches(machine.BeforeTransaction))
	assert.False(t, f.canUpdate(), "nothing edited yet")

	require.NotNil(t, f.setField(ctx, form.FieldHandle, "taken"))
	require.NotNil(t, f.setField(ctx, form.FieldHandle, "alice2"))
	assert.False(t, f.canUpdate())

	// an answer for the handle that was typed over
	f.Update(ctx, handleSizeMsg{handle: "taken", size: 4})
	assert.False(t, f.sizeKnown)

	f.Update(ctx, handleSizeMsg{handle: "alice2", size: 0})
	assert.True(t, f.sizeKnown)
	assert.True(t, f.canUpdate())
}

func TestMembershipHandleTaken(t *testing.T) {
	ctx, _ := testContext(1000, 10)
	f := newUpdateMembershipFlow(testMember())
	drive(t, f, ctx, f.Init(ctx))

	drive(t, f, ctx, f.setField(ctx, form.FieldHandle, "taken"))
	assert.True(t, f.sizeKnown)
	assert.False(t, f.canUpdate())
	assert.Equal(t, "This handle is already taken", f.errors()[form.FieldHandle])

	// going back to the current handle needs no lookup
	assert.Nil(t, f.setField(ctx, form.FieldHandle, "alice"))
	assert.False(t, f.errors().Has(form.FieldHandle))
}

func TestMembershipUpdateSubmits(t *testing.T) {
	ctx, s := testContext(1000, 10)
	f := newUpdateMembershipFlow(testMember())
	drive(t, f, ctx, f.Init(ctx))

	f.setField(ctx, form.FieldName, "Alice Liddell")
	require.True(t, f.canUpdate())

	cmd, _ := f.Update(ctx, key("enter"))
	require.True(t, f.machine.Matches(machine.Transaction))
	drive(t, f, ctx, cmd)
	assert.True(t, f.canSign(nil))

	cmd, _ = f.Update(ctx, key("enter"))
	drive(t, f, ctx, cmd)
	assert.Equal(t, machine.Success, f.machine.State())
	require.Len(t, s.sent, 1)
	assert.Equal(t, "updateProfile", s.sent[0].Method())
}

func TestSwitchMemberFlow(t *testing.T) {
	members := []query.Member{
		{ID: "1", Handle: "alice"},
		{ID: "2", Handle: "bob"},
	}
	ctx, _ := testContext(0, 0)
	ctx.members = members
	f := newSwitchMemberFlow(members, "2")
	assert.Equal(t, 1, f.selected)

	_, done := f.Update(ctx, key("up"))
	assert.False(t, done)

	cmd, done := f.Update(ctx, key("enter"))
	assert.True(t, done)
	require.NotNil(t, cmd)
	assert.Equal(t, memberSwitchedMsg{memberID: "1"}, cmd())
}

func TestSwitchMemberUpdatesModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := newModel(config.Config{}, path)
	m.members = []query.Member{{ID: "1", Handle: "alice"}, {ID: "2", Handle: "bob"}}

	m.Update(memberSwitchedMsg{memberID: "2"})
	assert.Equal(t, "2", m.activeMemberID)
	assert.Equal(t, "2", config.Load(path).ActiveMember)
}

func TestOpeningSyncNumbers(t *testing.T) {
	f := newCreateOpeningFlow(query.WorkingGroup{ID: "forumWorkingGroup", Name: "Forum"}, alice, 10)
	f.durationText = "100"
	f.targetText = "abc"
	f.unstakingText = "20"
	f.syncNumbers()

	d := f.draft.DurationAndProcess
	assert.Equal(t, uint32(100), d.Duration)
	assert.Equal(t, 0, d.Target)
	assert.Equal(t, uint32(20), f.draft.StakingPolicyAndReward.LeavingUnstakingPeriod)
}

func TestOpeningEntersFirstStep(t *testing.T) {
	ctx, _ := testContext(1000, 10)
	f := newCreateOpeningFlow(query.WorkingGroup{ID: "forumWorkingGroup", Name: "Forum"}, alice, 10)

	drive(t, f, ctx, f.Init(ctx))
	assert.Equal(t, machine.WorkingGroupAndDescription, f.machine.State())
	assert.NotNil(t, f.form)

	// the first step cannot go back
	f.Update(ctx, tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.Equal(t, machine.WorkingGroupAndDescription, f.machine.State())
}

func TestNumberValidator(t *testing.T) {
	assert.NoError(t, numberValidator(""))
	assert.NoError(t, numberValidator("42"))
	assert.Error(t, numberValidator("-1"))
	assert.Error(t, numberValidator("4.2"))
}

// transferContext counts in base units so amounts read as typed
func transferContext(t *testing.T, balance, txFee int64) (flowContext, *fakeSigner, *transferFlow) {
	t.Helper()
	ctx, s := testContext(balance, txFee)
	ctx.decimals = 0
	ctx.node.(*fakeChain).accounts = map[string]*big.Int{bob: big.NewInt(250)}
	ctx.balances = map[string]*big.Int{alice: big.NewInt(balance), bob: big.NewInt(250)}

	f := newTransferFlow(alice, []string{alice, bob})
	drive(t, f, ctx, f.Init(ctx))
	require.Equal(t, machine.BeforeTransaction, f.machine.State())
	require.NotNil(t, f.form)
	return ctx, s, f
}

func TestTransferSuccess(t *testing.T) {
	ctx, s, f := transferContext(t, 1000, 10)
	f.draft.To = bob
	f.draft.Amount = "5"

	drive(t, f, ctx, f.submitForm(ctx))
	require.True(t, f.machine.Matches(machine.Transaction))
	assert.Equal(t, big.NewInt(5), f.amount)
	assert.True(t, f.canSign(f.amount))
	assert.Contains(t, f.View(ctx), "Sign transaction and Transfer")

	cmd, done := f.Update(ctx, key("enter"))
	assert.False(t, done)
	drive(t, f, ctx, cmd)

	assert.Equal(t, machine.Success, f.machine.State())
	require.Len(t, s.sent, 1)
	assert.Equal(t, "transfer", s.sent[0].Method())
	assert.Equal(t, []any{bob, "5"}, s.sent[0].Args())
}

func TestTransferLoadsRecipientBalance(t *testing.T) {
	ctx, _, f := transferContext(t, 1000, 10)
	f.draft.To = bob
	f.draft.Amount = "5"
	drive(t, f, ctx, f.submitForm(ctx))

	require.NotNil(t, f.toBalance)
	assert.Equal(t, int64(250), f.toBalance.Int64())
	assert.Equal(t, int64(1000), f.fromBalance.Int64())

	// a balance for some other address is ignored
	f.Update(ctx, accountBalanceMsg{address: alice, balance: big.NewInt(1)})
	assert.Equal(t, int64(250), f.toBalance.Int64())
}

func TestTransferAmountPlusFeeDisablesSign(t *testing.T) {
	ctx, s, f := transferContext(t, 1000, 10)
	f.draft.To = bob
	f.draft.Amount = "995"

	drive(t, f, ctx, f.submitForm(ctx))
	require.True(t, f.machine.Matches(machine.Transaction))
	require.NotNil(t, f.fees.Info())
	assert.True(t, f.fees.Info().CanAfford, "the fee alone is covered")
	assert.False(t, f.canSign(f.amount))
	assert.Contains(t, f.View(ctx), "Insufficient funds to cover the transaction")

	cmd, _ := f.Update(ctx, key("enter"))
	assert.Nil(t, cmd)
	assert.Empty(t, s.sent)
}

func TestTransferPayerSwitchResetsFee(t *testing.T) {
	ctx, s, f := transferContext(t, 1000, 10)
	require.Equal(t, int64(1000), f.fees.Info().Transferable.Int64())

	f.draft.From = bob
	f.draft.To = alice
	f.draft.Amount = "100"
	cmd := f.submitForm(ctx)
	assert.Equal(t, bob, f.payer)
	assert.Nil(t, f.fees.Info(), "the sender's estimate is gone")

	drive(t, f, ctx, cmd)
	require.NotNil(t, f.fees.Info())
	assert.Equal(t, int64(250), f.fees.Info().Transferable.Int64())
	assert.True(t, f.canSign(f.amount))

	cmd, _ = f.Update(ctx, key("enter"))
	drive(t, f, ctx, cmd)
	require.Len(t, s.sent, 1)
	assert.Equal(t, []any{alice, "100"}, s.sent[0].Args())
}

func TestTransferOverBalanceStaysInForm(t *testing.T) {
	ctx, _, f := transferContext(t, 1000, 10)
	f.draft.To = bob
	f.draft.Amount = "1001"

	assert.Nil(t, f.submitForm(ctx))
	assert.Equal(t, machine.BeforeTransaction, f.machine.State())
	assert.True(t, f.errs.Has("amount"))
}

func TestEditActiveEndpointKind(t *testing.T) {
	m := newModel(config.DefaultConfig(), filepath.Join(t.TempDir(), "config.json"))
	m.settingsMode = "edit"
	m.selectedEndpointIdx = 0

	e := m.endpoints[0]
	e.Kind = config.KindQuery
	cmd := m.storeEndpoint(e)
	require.NotNil(t, cmd)

	assert.False(t, m.endpoints[0].Active, "the query kind keeps its active endpoint")
	node, ok := config.ActiveEndpoint(m.endpoints, config.KindNode)
	require.True(t, ok)
	assert.Equal(t, "Local node", node.Name)
	assert.True(t, m.nodeConnecting)
	qn, ok := config.ActiveEndpoint(m.endpoints, config.KindQuery)
	require.True(t, ok)
	assert.Equal(t, "Joystream query node", qn.Name)
}

func TestEditLastEndpointOfKind(t *testing.T) {
	m := newModel(config.DefaultConfig(), filepath.Join(t.TempDir(), "config.json"))
	m.settingsMode = "edit"
	m.selectedEndpointIdx = 4

	e := m.endpoints[4]
	e.Kind = config.KindNode
	m.storeEndpoint(e)

	_, ok := config.ActiveEndpoint(m.endpoints, config.KindSigner)
	assert.False(t, ok)
	assert.Nil(t, m.signer)
	node, ok := config.ActiveEndpoint(m.endpoints, config.KindNode)
	require.True(t, ok)
	assert.Equal(t, "Joystream mainnet", node.Name)
}

func TestDeleteActiveEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := newModel(config.DefaultConfig(), path)
	m.showDeleteDialog = true
	m.deleteDialogEndpoint = true
	m.deleteDialogIdx = 0
	m.deleteDialogYesSelected = true

	cmd := m.handleDeleteDialogKey(key("enter"))
	require.NotNil(t, cmd)
	require.Len(t, m.endpoints, 4)

	node, ok := config.ActiveEndpoint(m.endpoints, config.KindNode)
	require.True(t, ok)
	assert.Equal(t, "Local node", node.Name)
	saved, ok := config.ActiveEndpoint(config.Load(path).Endpoints, config.KindNode)
	require.True(t, ok)
	assert.Equal(t, "ws://127.0.0.1:9944", saved.URL)
}

func TestSaveConfigSkipsEnvOverrides(t *testing.T) {
	t.Setenv("PIONEER_NODE_URL", "ws://127.0.0.1:1")
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.DefaultConfig()
	require.NoError(t, config.ApplyEnv(&cfg))

	m := newModel(cfg, path)
	active, _ := config.ActiveEndpoint(m.endpoints, config.KindNode)
	require.Equal(t, "ws://127.0.0.1:1", active.URL)

	m.saveConfig()
	saved := config.Load(path)
	node, ok := config.ActiveEndpoint(saved.Endpoints, config.KindNode)
	require.True(t, ok)
	assert.Equal(t, "wss://rpc.joystream.org", node.URL)
	assert.Equal(t, config.DefaultConfig().Endpoints, saved.Endpoints)
}
