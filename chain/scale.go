package chain

import "encoding/binary"

// EncodeCompact is the SCALE compact encoding of n.
func EncodeCompact(n uint64) []byte {
	switch {
	case n < 1<<6:
		return []byte{byte(n << 2)}
	case n < 1<<14:
		return binary.LittleEndian.AppendUint16(nil, uint16(n<<2|0b01))
	case n < 1<<30:
		return binary.LittleEndian.AppendUint32(nil, uint32(n<<2|0b10))
	}
	le := binary.LittleEndian.AppendUint64(nil, n)
	for len(le) > 4 && le[len(le)-1] == 0 {
		le = le[:len(le)-1]
	}
	return append([]byte{byte(len(le)-4)<<2 | 0b11}, le...)
}

// EncodeBytes is the SCALE encoding of a Vec<u8>: compact length, then the bytes.
func EncodeBytes(b []byte) []byte {
	return append(EncodeCompact(uint64(len(b))), b...)
}
