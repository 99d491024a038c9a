package ethtypes

import (
	"encoding/hex"

	ethcrypto "github.com/ananthanir/ethlite/internal/eth/crypto"
	"github.com/ananthanir/ethlite/internal/eth/rlp"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// HashLength is the expected length of a storage key or transaction hash.
const HashLength = 32

// Address represents a 20-byte Ethereum address.
type Address = ethcrypto.Address

// Hash represents a 32-byte Keccak-256 hash or storage key.
type Hash [HashLength]byte

// HexToAddress parses a 40-digit hex address, with or without 0x.
func HexToAddress(s string) (Address, error) {
	addr, err := ethcrypto.HexToAddress(s)
	if err != nil {
		return Address{}, ethlerr.WithDetails(ethlerr.ErrInvalidAddress, map[string]string{"address": s})
	}
	return addr, nil
}

// MustHexToAddress converts a hex string to an Address, panicking on error.
// Only use in initialization code with known-good addresses.
func MustHexToAddress(s string) Address {
	addr, err := HexToAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// HexToHash parses a 64-digit hex string, with or without 0x.
func HexToHash(s string) (Hash, error) {
	b, err := rlp.HexToBytes(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason": "storage key must be 32 bytes",
			"value":  s,
		})
	}

	var h Hash
	copy(h[:], b)
	return h, nil
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Hex returns the hash as a lowercase hex string with 0x prefix.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

// String implements fmt.Stringer.
func (h Hash) String() string {
	return h.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HexToHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// AccessTuple is one entry of an EIP-2930 access list.
type AccessTuple struct {
	Address     Address `json:"address"     yaml:"address"`
	StorageKeys []Hash  `json:"storageKeys" yaml:"storageKeys"`
}

// AccessList is an ordered list of addresses and storage keys a transaction touches.
type AccessList []AccessTuple

// StorageKeys returns the total number of storage keys in the list.
func (al AccessList) StorageKeys() int {
	n := 0
	for _, tuple := range al {
		n += len(tuple.StorageKeys)
	}
	return n
}

// item returns the RLP shape [[address, [key, ...]], ...].
func (al AccessList) item() rlp.Item {
	tuples := make([]rlp.Item, len(al))
	for i, tuple := range al {
		keys := make([]rlp.Item, len(tuple.StorageKeys))
		for j := range tuple.StorageKeys {
			keys[j] = rlp.Bytes(tuple.StorageKeys[j][:])
		}
		tuples[i] = rlp.List(rlp.Bytes(tuple.Address[:]), rlp.List(keys...))
	}
	return rlp.List(tuples...)
}
