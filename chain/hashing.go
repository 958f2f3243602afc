package chain

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Twox128 is the Substrate storage prefix hasher: two xxh64 rounds with seeds 0 and 1.
func Twox128(data []byte) []byte {
	out := make([]byte, 16)
	for seed := uint64(0); seed < 2; seed++ {
		h := xxhash.NewWithSeed(seed)
		_, _ = h.Write(data)
		binary.LittleEndian.PutUint64(out[seed*8:], h.Sum64())
	}
	return out
}

// Blake2_128Concat hashes data to 16 bytes and appends the original data.
func Blake2_128Concat(data []byte) []byte {
	h, err := blake2b.New(16, nil)
	if err != nil {
		// only fails for sizes outside 1..64
		panic(err)
	}
	_, _ = h.Write(data)
	return append(h.Sum(nil), data...)
}

// Blake2_256 returns the 32 byte blake2b digest of data.
func Blake2_256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// Blake2_256Hex returns the 0x prefixed hex of the blake2b-256 digest of data.
func Blake2_256Hex(data []byte) string {
	return "0x" + hex.EncodeToString(Blake2_256(data))
}

// StorageKey builds the key of a storage map entry whose keys use the Blake2_128Concat hasher.
// With no keys it returns the prefix of the whole storage item.
func StorageKey(pallet, item string, keys ...[]byte) []byte {
	key := append(Twox128([]byte(pallet)), Twox128([]byte(item))...)
	for _, k := range keys {
		key = append(key, Blake2_128Concat(k)...)
	}
	return key
}

// HandleHash is the hash the membership pallet indexes handles by.
func HandleHash(handle string) []byte {
	return Blake2_256([]byte(handle))
}

// HandleHashKey is the storage map key of a handle. The map is keyed by
// Vec<u8>, so the hash is SCALE encoded before it is hashed again.
func HandleHashKey(handle string) []byte {
	return EncodeBytes(HandleHash(handle))
}
