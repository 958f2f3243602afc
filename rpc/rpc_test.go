package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	"pioneer-tui/chain"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

const aliceAddr = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

type systemService struct{}

func (systemService) Chain() string { return "Joystream" }

// stateService serves storage entries keyed by hex storage key.
type stateService struct {
	storage map[string][]byte
}

func (s *stateService) GetStorage(key string) (*string, error) {
	v, ok := s.storage[key]
	if !ok {
		return nil, nil
	}
	enc := hexutil.Encode(v)
	return &enc, nil
}

func (s *stateService) GetStorageSize(key string) (*uint64, error) {
	v, ok := s.storage[key]
	if !ok {
		return nil, nil
	}
	n := uint64(len(v))
	return &n, nil
}

type signerService struct {
	fee    string
	fail   bool
	signed []json.RawMessage
}

func (s *signerService) PaymentInfo(signer string, tx json.RawMessage) (map[string]string, error) {
	return map[string]string{"partialFee": s.fee}, nil
}

func (s *signerService) SignAndSend(signer string, tx json.RawMessage) (SubmitResult, error) {
	if s.fail {
		return SubmitResult{}, errors.New("rejected")
	}
	s.signed = append(s.signed, tx)
	return SubmitResult{BlockHash: "0xabc", Success: true}, nil
}

func newTestServer(t *testing.T, state *stateService, signer *signerService) *gethrpc.Server {
	t.Helper()
	srv := gethrpc.NewServer()
	require.NoError(t, srv.RegisterName("system", systemService{}))
	if state != nil {
		require.NoError(t, srv.RegisterName("state", state))
	}
	if signer != nil {
		require.NoError(t, srv.RegisterName("signer", signer))
	}
	t.Cleanup(srv.Stop)
	return srv
}

func accountEntry(free, reserved, frozen int64) []byte {
	raw := make([]byte, 16)
	raw = append(raw, chain.EncodeU128(big.NewInt(free))...)
	raw = append(raw, chain.EncodeU128(big.NewInt(reserved))...)
	raw = append(raw, chain.EncodeU128(big.NewInt(frozen))...)
	raw = append(raw, chain.EncodeU128(big.NewInt(0))...)
	return raw
}

func storageKeyHex(t *testing.T, pallet, item string, key []byte) string {
	t.Helper()
	return hexutil.Encode(chain.StorageKey(pallet, item, key))
}

func TestNewClient(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	client, err := newClient(context.Background(), gethrpc.DialInProc(srv), "inproc")
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "Joystream", client.Chain)
	assert.Equal(t, "inproc", client.URL)
}

func TestTransferableBalance(t *testing.T) {
	pub, err := chain.AccountID(aliceAddr)
	require.NoError(t, err)

	state := &stateService{storage: map[string][]byte{
		storageKeyHex(t, "System", "Account", pub): accountEntry(5000, 0, 1200),
	}}
	srv := newTestServer(t, state, nil)
	client, err := newClient(context.Background(), gethrpc.DialInProc(srv), "inproc")
	require.NoError(t, err)

	t.Run("funded account", func(t *testing.T) {
		bal, err := client.TransferableBalance(context.Background(), aliceAddr)
		require.NoError(t, err)
		assert.Equal(t, "3800", bal.String())
	})

	t.Run("unknown account", func(t *testing.T) {
		other, err := chain.EncodeAddress(chain.GenericPrefix, make([]byte, 32))
		require.NoError(t, err)
		bal, err := client.TransferableBalance(context.Background(), other)
		require.NoError(t, err)
		assert.Equal(t, "0", bal.String())
	})

	t.Run("invalid address", func(t *testing.T) {
		_, err := client.TransferableBalance(context.Background(), "nope")
		assert.ErrorIs(t, err, chain.ErrInvalidAddress)
	})
}

func TestHandleHashSize(t *testing.T) {
	// twox128(pallet) ++ twox128(item) ++ blake2_128(k) ++ k, with k = 0x80 ++ blake2_256(handle)
	encoded := append([]byte{0x80}, chain.HandleHash("alice")...)
	blake, err := blake2b.New(16, nil)
	require.NoError(t, err)
	blake.Write(encoded)
	key := append(chain.Twox128([]byte("Members")), chain.Twox128([]byte("MemberIdByHandleHash"))...)
	key = append(append(key, blake.Sum(nil)...), encoded...)

	state := &stateService{storage: map[string][]byte{
		hexutil.Encode(key): {1, 0, 0, 0, 0, 0, 0, 0},
	}}
	srv := newTestServer(t, state, nil)
	client, err := newClient(context.Background(), gethrpc.DialInProc(srv), "inproc")
	require.NoError(t, err)

	size, err := client.HandleHashSize(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 8, size)

	size, err = client.HandleHashSize(context.Background(), "alice2")
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestNilClient(t *testing.T) {
	var c *Client
	_, err := c.TransferableBalance(context.Background(), aliceAddr)
	assert.ErrorIs(t, err, ErrNoClient)
}

type fakeBalances map[string]*big.Int

func (f fakeBalances) TransferableBalance(_ context.Context, addr string) (*big.Int, error) {
	if v, ok := f[addr]; ok {
		return v, nil
	}
	return nil, errors.New("boom")
}

func TestLoadBalances(t *testing.T) {
	src := fakeBalances{"a": big.NewInt(1), "b": big.NewInt(2)}
	out, err := LoadBalancesWithTimeout(context.Background(), src, []string{"a", "b", "c"}, time.Second)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "c: boom")
	assert.Len(t, out, 2)
	assert.Equal(t, "2", out["b"].String())
}

func TestSigner(t *testing.T) {
	svc := &signerService{fee: "125000"}
	srv := newTestServer(t, nil, svc)
	signer := &Signer{conn: gethrpc.DialInProc(srv), URL: "inproc"}
	defer signer.Close()

	tx := chain.TransferTx(aliceAddr, big.NewInt(10))

	fee, err := signer.PaymentInfo(context.Background(), aliceAddr, tx)
	require.NoError(t, err)
	assert.Equal(t, "125000", fee.String())

	res, err := signer.SignAndSend(context.Background(), aliceAddr, tx)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, svc.signed, 1)
	assert.JSONEq(t, `{"module":"balances","method":"transfer","args":["`+aliceAddr+`","10"]}`, string(svc.signed[0]))

	svc.fail = true
	_, err = signer.SignAndSend(context.Background(), aliceAddr, tx)
	assert.Error(t, err)
}

func TestParseBalance(t *testing.T) {
	v, err := parseBalance("0x10")
	require.NoError(t, err)
	assert.Equal(t, "16", v.String())

	v, err = parseBalance(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	_, err = parseBalance("abc")
	assert.Error(t, err)
}

func TestGenerateQRCode(t *testing.T) {
	assert.Empty(t, GenerateQRCode(""))
	qr := GenerateQRCode("hello")
	assert.True(t, strings.Count(qr, "\n") > 5)
}

func TestConnect(t *testing.T) {
	url := os.Getenv("PIONEER_NODE_URL")
	if url == "" {
		t.Skip("PIONEER_NODE_URL not set, skipping connection test")
	}

	result := ConnectWithTimeout(url, 10*time.Second)
	require.NoError(t, result.Error)
	defer result.Client.Close()
	t.Logf("Connected to chain: %s", result.Client.Chain)

	bal, err := result.Client.TransferableBalance(context.Background(), aliceAddr)
	require.NoError(t, err)
	t.Logf("Alice transferable: %s", bal)
}
