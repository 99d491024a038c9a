// Package rlp provides RLP (Recursive Length Prefix) encoding for Ethereum transactions.
// See: https://ethereum.org/en/developers/docs/data-structures-and-encoding/rlp/
package rlp

import (
	"math/big"

	"github.com/holiman/uint256"

	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// Item is a value that can be RLP-encoded: either a byte string or a list of Items.
// The zero value is the empty byte string.
type Item struct {
	str    []byte
	list   []Item
	isList bool
}

// Bytes returns a byte-string Item. The slice is not copied.
func Bytes(b []byte) Item {
	return Item{str: b}
}

// String returns a byte-string Item holding the UTF-8 bytes of s.
func String(s string) Item {
	return Item{str: []byte(s)}
}

// Uint64 returns the canonical Item for an unsigned integer.
// Zero is the empty byte string.
func Uint64(i uint64) Item {
	return Item{str: bigEndianBytes(i)}
}

// BigInt returns the canonical Item for a non-negative integer.
// A nil value is treated as zero.
func BigInt(i *big.Int) (Item, error) {
	if i == nil {
		return Item{}, nil
	}
	if i.Sign() < 0 {
		return Item{}, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason": "negative integer",
			"value":  i.String(),
		})
	}
	return Item{str: i.Bytes()}, nil
}

// Uint256 returns the canonical Item for a 256-bit unsigned integer.
func Uint256(i *uint256.Int) Item {
	if i == nil {
		return Item{}
	}
	return Item{str: i.Bytes()}
}

// List returns a list Item containing items in order.
func List(items ...Item) Item {
	if items == nil {
		items = []Item{}
	}
	return Item{list: items, isList: true}
}

// IsList reports whether the item is a list.
func (it Item) IsList() bool {
	return it.isList
}

// Bytes returns the byte string of a string item, or nil for a list.
func (it Item) Bytes() []byte {
	if it.isList {
		return nil
	}
	return it.str
}

// Items returns the elements of a list item, or nil for a byte string.
func (it Item) Items() []Item {
	if !it.isList {
		return nil
	}
	return it.list
}
