package chain

import (
	"encoding/binary"
	"errors"
	"math/big"
)

// ErrShortAccountInfo is returned when a System.Account entry is truncated.
var ErrShortAccountInfo = errors.New("account info: unexpected length")

// isNewLogic is the top bit of the ExtraFlags field introduced with the
// fungible balances rework. When set the third balance field is a single
// frozen amount; otherwise the record carries misc/fee frozen amounts.
var isNewLogic = new(big.Int).Lsh(big.NewInt(1), 127)

// AccountInfo is the decoded System.Account storage entry.
type AccountInfo struct {
	Nonce       uint32
	Consumers   uint32
	Providers   uint32
	Sufficients uint32

	Free     *big.Int
	Reserved *big.Int
	Frozen   *big.Int

	// MiscFrozen and FeeFrozen are only set by runtimes on the older layout.
	MiscFrozen *big.Int
	FeeFrozen  *big.Int
	NewLogic   bool
}

// DecodeAccountInfo decodes the SCALE encoded AccountInfo<Index, AccountData<Balance>>.
func DecodeAccountInfo(raw []byte) (AccountInfo, error) {
	const header = 16
	const u128 = 16
	if len(raw) < header+3*u128 {
		return AccountInfo{}, ErrShortAccountInfo
	}

	info := AccountInfo{
		Nonce:       binary.LittleEndian.Uint32(raw[0:4]),
		Consumers:   binary.LittleEndian.Uint32(raw[4:8]),
		Providers:   binary.LittleEndian.Uint32(raw[8:12]),
		Sufficients: binary.LittleEndian.Uint32(raw[12:16]),
		Free:        decodeU128(raw[header : header+u128]),
		Reserved:    decodeU128(raw[header+u128 : header+2*u128]),
	}

	third := decodeU128(raw[header+2*u128 : header+3*u128])
	if len(raw) < header+4*u128 {
		info.Frozen = third
		return info, nil
	}

	fourth := decodeU128(raw[header+3*u128 : header+4*u128])
	if new(big.Int).And(fourth, isNewLogic).Sign() != 0 {
		info.NewLogic = true
		info.Frozen = third
		return info, nil
	}

	info.MiscFrozen = third
	info.FeeFrozen = fourth
	info.Frozen = maxInt(third, fourth)
	return info, nil
}

// Transferable returns the balance that is free to pay fees and transfers.
func (a AccountInfo) Transferable() *big.Int {
	if a.Free == nil {
		return big.NewInt(0)
	}
	locked := a.Frozen
	if locked == nil {
		locked = big.NewInt(0)
	}
	if a.NewLogic && a.Reserved != nil {
		// reserved funds count towards the frozen amount
		locked = new(big.Int).Sub(locked, a.Reserved)
		if locked.Sign() < 0 {
			locked = big.NewInt(0)
		}
	}
	out := new(big.Int).Sub(a.Free, locked)
	if out.Sign() < 0 {
		return big.NewInt(0)
	}
	return out
}

func decodeU128(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i := range le {
		be[len(le)-1-i] = le[i]
	}
	return new(big.Int).SetBytes(be)
}

// EncodeU128 is the little endian SCALE encoding of v truncated to 16 bytes.
func EncodeU128(v *big.Int) []byte {
	out := make([]byte, 16)
	if v == nil {
		return out
	}
	be := v.Bytes()
	for i := 0; i < len(be) && i < 16; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

func maxInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
