package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"pioneer-tui/chain"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"
)

// caller is the subset of the go-ethereum JSON-RPC client the app uses.
type caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// Client wraps a JSON-RPC connection to a chain node.
type Client struct {
	conn  caller
	URL   string
	Chain string
}

// ConnectResult holds the result of an RPC connection attempt
type ConnectResult struct {
	Client *Client
	Error  error
}

// Connect attempts to connect to a node over ws:// or http://
func Connect(url string) ConnectResult {
	return ConnectWithTimeout(url, 8*time.Second)
}

// ConnectWithTimeout attempts to connect with a custom timeout
func ConnectWithTimeout(url string, timeout time.Duration) ConnectResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return ConnectResult{Client: nil, Error: err}
	}

	client, err := newClient(ctx, conn, url)
	if err != nil {
		conn.Close()
		return ConnectResult{Client: nil, Error: err}
	}
	return ConnectResult{Client: client, Error: nil}
}

// newClient probes the node for its chain name so a dead endpoint fails at connect time.
func newClient(ctx context.Context, conn caller, url string) (*Client, error) {
	var name string
	if err := conn.CallContext(ctx, &name, "system_chain"); err != nil {
		return nil, fmt.Errorf("probe chain: %w", err)
	}
	return &Client{conn: conn, URL: url, Chain: name}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	if c != nil && c.conn != nil {
		c.conn.Close()
	}
}

// ErrNoClient is returned by queries issued before a node connection exists.
var ErrNoClient = errors.New("no node connection")

// TransferableBalance reads System.Account for address and returns the spendable part.
func (c *Client) TransferableBalance(ctx context.Context, address string) (*big.Int, error) {
	info, err := c.AccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	return info.Transferable(), nil
}

// AccountInfo reads and decodes the System.Account entry of address.
func (c *Client) AccountInfo(ctx context.Context, address string) (chain.AccountInfo, error) {
	if c == nil || c.conn == nil {
		return chain.AccountInfo{}, ErrNoClient
	}
	pub, err := chain.AccountID(address)
	if err != nil {
		return chain.AccountInfo{}, err
	}

	key := chain.StorageKey("System", "Account", pub)
	var raw *string
	if err := c.conn.CallContext(ctx, &raw, "state_getStorage", hexutil.Encode(key)); err != nil {
		return chain.AccountInfo{}, fmt.Errorf("state_getStorage: %w", err)
	}
	if raw == nil {
		// account was never funded
		return chain.AccountInfo{Free: big.NewInt(0), Reserved: big.NewInt(0), Frozen: big.NewInt(0)}, nil
	}

	data, err := hexutil.Decode(*raw)
	if err != nil {
		return chain.AccountInfo{}, fmt.Errorf("decode storage: %w", err)
	}
	return chain.DecodeAccountInfo(data)
}

// HandleHashSize returns the encoded size of the member id stored under the
// handle's hash; a non-zero size means the handle is already taken.
func (c *Client) HandleHashSize(ctx context.Context, handle string) (int, error) {
	if c == nil || c.conn == nil {
		return 0, ErrNoClient
	}
	key := chain.StorageKey("Members", "MemberIdByHandleHash", chain.HandleHashKey(handle))
	var size *uint64
	if err := c.conn.CallContext(ctx, &size, "state_getStorageSize", hexutil.Encode(key)); err != nil {
		return 0, fmt.Errorf("state_getStorageSize: %w", err)
	}
	if size == nil {
		return 0, nil
	}
	return int(*size), nil
}

// LoadBalances fetches the transferable balance of every address concurrently.
// Addresses that fail are left out of the result and reported in the error.
func (c *Client) LoadBalances(ctx context.Context, addresses []string) (map[string]*big.Int, error) {
	return LoadBalancesWithTimeout(ctx, c, addresses, 12*time.Second)
}

// BalanceReader is satisfied by Client and by test doubles.
type BalanceReader interface {
	TransferableBalance(ctx context.Context, address string) (*big.Int, error)
}

// LoadBalancesWithTimeout fetches balances with at most four requests in flight.
func LoadBalancesWithTimeout(ctx context.Context, r BalanceReader, addresses []string, timeout time.Duration) (map[string]*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		out  = make(map[string]*big.Int, len(addresses))
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, addr := range addresses {
		g.Go(func() error {
			bal, err := r.TransferableBalance(gctx, addr)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", addr, err))
				return nil
			}
			out[addr] = bal
			return nil
		})
	}
	_ = g.Wait()
	return out, errors.Join(errs...)
}
