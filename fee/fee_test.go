package fee

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"pioneer-tui/chain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	fee     *big.Int
	balance *big.Int
	err     error
}

func (f fakeChain) PaymentInfo(context.Context, string, *chain.Tx) (*big.Int, error) {
	return f.fee, f.err
}

func (f fakeChain) TransferableBalance(context.Context, string) (*big.Int, error) {
	return f.balance, nil
}

func TestEstimate(t *testing.T) {
	tx := chain.TransferTx("dest", big.NewInt(1))

	t.Run("affordable", func(t *testing.T) {
		c := fakeChain{fee: big.NewInt(10), balance: big.NewInt(10)}
		info, err := Estimate(context.Background(), c, c, "payer", tx)
		require.NoError(t, err)
		assert.True(t, info.CanAfford)
		assert.False(t, info.CanAffordWith(big.NewInt(1)))
	})

	t.Run("unaffordable", func(t *testing.T) {
		c := fakeChain{fee: big.NewInt(10), balance: big.NewInt(9)}
		info, err := Estimate(context.Background(), c, c, "payer", tx)
		require.NoError(t, err)
		assert.False(t, info.CanAfford)
	})

	t.Run("quote error", func(t *testing.T) {
		c := fakeChain{err: errors.New("down")}
		_, err := Estimate(context.Background(), c, c, "payer", tx)
		assert.ErrorContains(t, err, "down")
	})

	t.Run("no tx", func(t *testing.T) {
		c := fakeChain{}
		_, err := Estimate(context.Background(), c, c, "payer", nil)
		assert.Error(t, err)
	})
}

func TestTrackerDiscardsStale(t *testing.T) {
	var tr Tracker
	first := chain.TransferTx("dest", big.NewInt(1))
	second := chain.TransferTx("dest", big.NewInt(2))

	require.True(t, tr.Track(first))
	assert.Nil(t, tr.Info(), "undefined while loading")
	require.True(t, tr.Track(second))

	stale := Result{TxID: first.ID(), Info: Info{TransactionFee: big.NewInt(1), CanAfford: true}}
	assert.False(t, tr.Accept(stale))
	assert.Nil(t, tr.Info())

	fresh := Result{TxID: second.ID(), Info: Info{TransactionFee: big.NewInt(2), CanAfford: false}}
	assert.True(t, tr.Accept(fresh))
	require.NotNil(t, tr.Info())
	assert.Equal(t, "2", tr.Info().TransactionFee.String())
	assert.False(t, tr.Info().CanAfford)
}

func TestTrackerSameIdentity(t *testing.T) {
	var tr Tracker
	require.True(t, tr.Track(chain.TransferTx("dest", big.NewInt(1))))
	assert.True(t, tr.Accept(Result{TxID: tr.TxID(), Info: Info{TransactionFee: big.NewInt(5)}}))

	assert.False(t, tr.Track(chain.TransferTx("dest", big.NewInt(1))), "equal descriptors keep the estimate")
	assert.NotNil(t, tr.Info())
}

func TestTrackerError(t *testing.T) {
	var tr Tracker
	tx := chain.TransferTx("dest", big.NewInt(1))
	tr.Track(tx)

	assert.True(t, tr.Accept(Result{TxID: tx.ID(), Err: errors.New("boom")}))
	assert.Nil(t, tr.Info())
	assert.EqualError(t, tr.Err(), "boom")

	tr.Reset()
	assert.Empty(t, tr.TxID())
	assert.NoError(t, tr.Err())
	assert.False(t, tr.Accept(Result{TxID: tx.ID()}))
}
