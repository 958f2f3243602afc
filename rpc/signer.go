package rpc

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"pioneer-tui/chain"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/mdp/qrterminal/v3"
)

// Signer talks to the external signing service that owns the keys. It builds
// the extrinsic for a call, quotes its fee and signs and submits it.
type Signer struct {
	conn caller
	URL  string
}

// SubmitResult is the outcome of a signed and submitted extrinsic.
type SubmitResult struct {
	BlockHash string `json:"blockHash"`
	TxHash    string `json:"txHash"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type paymentInfo struct {
	PartialFee string `json:"partialFee"`
	Weight     any    `json:"weight,omitempty"`
}

// DialSigner connects to the signer endpoint.
func DialSigner(url string) (*Signer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	conn, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial signer: %w", err)
	}
	return &Signer{conn: conn, URL: url}, nil
}

// Close releases the underlying connection.
func (s *Signer) Close() {
	if s != nil && s.conn != nil {
		s.conn.Close()
	}
}

// PaymentInfo quotes the partial fee the signer account would pay for tx.
func (s *Signer) PaymentInfo(ctx context.Context, signer string, tx *chain.Tx) (*big.Int, error) {
	if s == nil || s.conn == nil {
		return nil, ErrNoClient
	}
	if tx == nil {
		return nil, fmt.Errorf("payment info: no transaction")
	}

	var info paymentInfo
	if err := s.conn.CallContext(ctx, &info, "signer_paymentInfo", signer, tx); err != nil {
		return nil, fmt.Errorf("signer_paymentInfo: %w", err)
	}
	return parseBalance(info.PartialFee)
}

// SignAndSend signs tx with the signer account and waits for its inclusion.
func (s *Signer) SignAndSend(ctx context.Context, signer string, tx *chain.Tx) (SubmitResult, error) {
	if s == nil || s.conn == nil {
		return SubmitResult{}, ErrNoClient
	}

	var res SubmitResult
	if err := s.conn.CallContext(ctx, &res, "signer_signAndSend", signer, tx); err != nil {
		return SubmitResult{}, fmt.Errorf("signer_signAndSend: %w", err)
	}
	return res, nil
}

// parseBalance accepts both decimal strings and 0x prefixed hex quantities.
func parseBalance(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := hexutil.DecodeBig(s)
		if err != nil {
			return nil, fmt.Errorf("parse balance %q: %w", s, err)
		}
		return v, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("parse balance %q", s)
	}
	return v, nil
}

// GenerateQRCode renders payload as a half-block terminal QR code.
func GenerateQRCode(payload string) string {
	if payload == "" {
		return ""
	}
	var buf bytes.Buffer
	qrterminal.GenerateHalfBlock(payload, qrterminal.L, &buf)
	return buf.String()
}
