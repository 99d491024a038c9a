// Package ethcrypto provides the Keccak-256 and secp256k1 primitives used to
// hash and sign Ethereum transactions.
package ethcrypto

import (
	"golang.org/x/crypto/sha3"
)

// HashLength is the size of a Keccak-256 digest.
const HashLength = 32

// Keccak256 computes the Keccak-256 hash of the concatenated inputs.
// This is the legacy Keccak padding used by Ethereum, not NIST SHA3-256.
func Keccak256(data ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, b := range data {
		hasher.Write(b)
	}
	return hasher.Sum(nil)
}

// Keccak256Hash computes the Keccak-256 hash and returns it as a 32-byte array.
func Keccak256Hash(data ...[]byte) [HashLength]byte {
	var hash [HashLength]byte
	hasher := sha3.NewLegacyKeccak256()
	for _, b := range data {
		hasher.Write(b)
	}
	hasher.Sum(hash[:0])
	return hash
}
