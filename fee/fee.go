package fee

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"pioneer-tui/chain"
)

// Info is the fee quote for one transaction and whether the payer covers it.
type Info struct {
	TransactionFee *big.Int
	Transferable   *big.Int
	CanAfford      bool
}

// CanAffordWith reports whether the payer covers the fee plus extra, e.g. the
// amount of a transfer.
func (i Info) CanAffordWith(extra *big.Int) bool {
	if i.TransactionFee == nil || i.Transferable == nil {
		return false
	}
	need := new(big.Int).Set(i.TransactionFee)
	if extra != nil {
		need.Add(need, extra)
	}
	return i.Transferable.Cmp(need) >= 0
}

// Quoter quotes the partial fee of a transaction.
type Quoter interface {
	PaymentInfo(ctx context.Context, signer string, tx *chain.Tx) (*big.Int, error)
}

// Balances reads an account's transferable balance.
type Balances interface {
	TransferableBalance(ctx context.Context, address string) (*big.Int, error)
}

// Estimate quotes tx for payer and compares the fee with its transferable balance.
func Estimate(ctx context.Context, q Quoter, b Balances, payer string, tx *chain.Tx) (Info, error) {
	if tx == nil {
		return Info{}, fmt.Errorf("estimate fee: no transaction")
	}
	fee, err := q.PaymentInfo(ctx, payer, tx)
	if err != nil {
		return Info{}, fmt.Errorf("estimate fee: %w", err)
	}
	balance, err := b.TransferableBalance(ctx, payer)
	if err != nil {
		return Info{}, fmt.Errorf("read balance: %w", err)
	}
	return Info{
		TransactionFee: fee,
		Transferable:   balance,
		CanAfford:      balance.Cmp(fee) >= 0,
	}, nil
}

// Result is an estimate tagged with the id of the transaction it was made for.
type Result struct {
	TxID string
	Info Info
	Err  error
}

// Tracker keeps the fee of the current transaction. Estimates arrive
// asynchronously; once the transaction changes, results for the old one are
// dropped.
type Tracker struct {
	mu   sync.Mutex
	txID string
	info *Info
	err  error
}

// Track makes tx the current transaction. It reports whether the identity
// changed, in which case the previous estimate is cleared and a new one
// should be requested.
func (t *Tracker) Track(tx *chain.Tx) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := tx.ID()
	if id == t.txID {
		return false
	}
	t.txID = id
	t.info = nil
	t.err = nil
	return true
}

// Accept stores r if it belongs to the current transaction.
func (t *Tracker) Accept(r Result) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.TxID == "" || r.TxID != t.txID {
		return false
	}
	if r.Err != nil {
		t.info = nil
		t.err = r.Err
		return true
	}
	info := r.Info
	t.info = &info
	t.err = nil
	return true
}

// Info returns the current estimate, or nil while it is loading.
func (t *Tracker) Info() *Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.info == nil {
		return nil
	}
	info := *t.info
	return &info
}

// Err returns the error of the last accepted estimate.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// TxID returns the id of the tracked transaction.
func (t *Tracker) TxID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.txID
}

// Reset forgets the tracked transaction.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.txID = ""
	t.info = nil
	t.err = nil
}
