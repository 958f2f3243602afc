package chain

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// JoystreamPrefix is the SS58 network prefix used by the governance chain.
const JoystreamPrefix uint16 = 126

// GenericPrefix is the generic Substrate SS58 prefix.
const GenericPrefix uint16 = 42

const (
	accountIDLen    = 32
	checksumLen     = 2
	maxSimplePrefix = 63
)

var (
	ss58Pre = []byte("SS58PRE")

	// ErrInvalidAddress is returned for strings that are not SS58 encoded account ids.
	ErrInvalidAddress = errors.New("invalid ss58 address")
	// ErrChecksumMismatch is returned when the SS58 checksum does not match.
	ErrChecksumMismatch = errors.New("ss58 checksum mismatch")
)

// DecodeAddress returns the network prefix and the 32 byte public key of an SS58 address.
func DecodeAddress(addr string) (uint16, []byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) < 1+accountIDLen+checksumLen {
		return 0, nil, ErrInvalidAddress
	}

	var prefix uint16
	prefixLen := 1
	switch {
	case raw[0] <= maxSimplePrefix:
		prefix = uint16(raw[0])
	case raw[0] < 128:
		prefixLen = 2
		prefix = uint16(raw[0]&0x3f)<<2 | uint16(raw[1]>>6) | uint16(raw[1]&0x3f)<<8
	default:
		return 0, nil, ErrInvalidAddress
	}

	if len(raw) != prefixLen+accountIDLen+checksumLen {
		return 0, nil, ErrInvalidAddress
	}

	body := raw[:prefixLen+accountIDLen]
	sum := checksum(body)
	if !bytes.Equal(sum[:checksumLen], raw[prefixLen+accountIDLen:]) {
		return 0, nil, ErrChecksumMismatch
	}

	pub := make([]byte, accountIDLen)
	copy(pub, raw[prefixLen:prefixLen+accountIDLen])
	return prefix, pub, nil
}

// EncodeAddress encodes a 32 byte public key under the given network prefix.
func EncodeAddress(prefix uint16, pub []byte) (string, error) {
	if len(pub) != accountIDLen {
		return "", fmt.Errorf("%w: public key must be %d bytes", ErrInvalidAddress, accountIDLen)
	}
	if prefix > 16383 {
		return "", fmt.Errorf("%w: prefix %d out of range", ErrInvalidAddress, prefix)
	}

	var body []byte
	if prefix <= maxSimplePrefix {
		body = append(body, byte(prefix))
	} else {
		body = append(body,
			byte((prefix&0xfc)>>2)|0x40,
			byte(prefix>>8)|byte(prefix&0x03)<<6,
		)
	}
	body = append(body, pub...)
	sum := checksum(body)
	return base58.Encode(append(body, sum[:checksumLen]...)), nil
}

// IsValidAddress reports whether s decodes as an SS58 account id.
func IsValidAddress(s string) bool {
	_, _, err := DecodeAddress(s)
	return err == nil
}

// AccountID returns the raw public key of an address, ignoring its network prefix.
func AccountID(addr string) ([]byte, error) {
	_, pub, err := DecodeAddress(addr)
	return pub, err
}

// SameAccount reports whether two addresses refer to the same public key,
// even when encoded for different networks.
func SameAccount(a, b string) bool {
	pa, err := AccountID(a)
	if err != nil {
		return a == b
	}
	pb, err := AccountID(b)
	if err != nil {
		return false
	}
	return bytes.Equal(pa, pb)
}

func checksum(body []byte) [blake2b.Size]byte {
	return blake2b.Sum512(append(append([]byte{}, ss58Pre...), body...))
}
