package rlp

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// ToItem converts a Go value into an Item.
//
// Supported inputs:
//   - nil: the empty byte string
//   - []byte and byte arrays: passed through
//   - string: "0x"-prefixed values are hex-decoded, anything else is taken as UTF-8 bytes
//   - signed and unsigned integers, *big.Int, *uint256.Int: minimal big-endian bytes, zero is empty
//   - bool: 1 or 0
//   - Item, []Item, []any, and other slices or arrays: lists
//
// Negative integers and unsupported types return ErrInvalidInput.
// Unlike Encode, normalization recurses once per level of list nesting.
func ToItem(v any) (Item, error) {
	switch val := v.(type) {
	case nil:
		return Item{}, nil
	case Item:
		return val, nil
	case []Item:
		return List(val...), nil
	case []byte:
		return Bytes(val), nil
	case string:
		return stringItem(val)
	case bool:
		if val {
			return Uint64(1), nil
		}
		return Uint64(0), nil
	case uint:
		return Uint64(uint64(val)), nil
	case uint8:
		return Uint64(uint64(val)), nil
	case uint16:
		return Uint64(uint64(val)), nil
	case uint32:
		return Uint64(uint64(val)), nil
	case uint64:
		return Uint64(val), nil
	case int:
		return signedItem(int64(val))
	case int8:
		return signedItem(int64(val))
	case int16:
		return signedItem(int64(val))
	case int32:
		return signedItem(int64(val))
	case int64:
		return signedItem(val)
	case *big.Int:
		return BigInt(val)
	case *uint256.Int:
		return Uint256(val), nil
	case []any:
		return listItem(len(val), func(i int) any { return val[i] })
	}

	return reflectItem(v)
}

// HexToBytes decodes a hex string with an optional 0x prefix.
// An odd number of digits is left-padded with a single zero nibble.
func HexToBytes(s string) ([]byte, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason": "invalid hex string",
			"value":  s,
		})
	}
	return b, nil
}

// HasHexPrefix reports whether s starts with "0x" or "0X".
func HasHexPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func stringItem(s string) (Item, error) {
	if !HasHexPrefix(s) {
		return String(s), nil
	}
	b, err := HexToBytes(s)
	if err != nil {
		return Item{}, err
	}
	return Bytes(b), nil
}

func signedItem(i int64) (Item, error) {
	if i < 0 {
		return Item{}, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason": "negative integer",
			"value":  strconv.FormatInt(i, 10),
		})
	}
	return Uint64(uint64(i)), nil
}

func listItem(n int, at func(int) any) (Item, error) {
	items := make([]Item, n)
	for i := 0; i < n; i++ {
		item, err := ToItem(at(i))
		if err != nil {
			return Item{}, ethlerr.Wrap(err, "list element %d", i)
		}
		items[i] = item
	}
	return List(items...), nil
}

// reflectItem handles named types and typed slices that the fast path does not cover.
func reflectItem(v any) (Item, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // everything else is rejected below
	case reflect.Pointer:
		if rv.IsNil() {
			return Item{}, nil
		}
		return ToItem(rv.Elem().Interface())
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return Bytes(b), nil
		}
		return listItem(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Bytes()), nil
		}
		return listItem(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.String:
		return stringItem(rv.String())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint64(rv.Uint()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signedItem(rv.Int())
	case reflect.Bool:
		return ToItem(rv.Bool())
	}

	return Item{}, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
		"reason": "unsupported type",
		"type":   fmt.Sprintf("%T", v),
	})
}
