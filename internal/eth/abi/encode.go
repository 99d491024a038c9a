package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	ethcrypto "github.com/ananthanir/ethlite/internal/eth/crypto"
	"github.com/ananthanir/ethlite/internal/eth/rlp"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// EncodeArguments ABI-encodes values against the given type tags.
// The result is the head section (one word per argument) followed by the tail
// section holding dynamic values in argument order.
func EncodeArguments(types []string, values []any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, ethlerr.WithDetails(ethlerr.ErrArityMismatch, map[string]string{
			"types":  strconv.Itoa(len(types)),
			"values": strconv.Itoa(len(values)),
		})
	}

	parsed := make([]Type, len(types))
	for i, tag := range types {
		t, err := ParseType(tag)
		if err != nil {
			return nil, ethlerr.Wrap(err, "argument %d", i)
		}
		parsed[i] = t
	}
	return Encode(parsed, values)
}

// EncodeArgumentsHex is EncodeArguments rendered as 0x-prefixed hex.
func EncodeArgumentsHex(types []string, values []any) (string, error) {
	encoded, err := EncodeArguments(types, values)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(encoded), nil
}

// Encode ABI-encodes values against already parsed types.
func Encode(types []Type, values []any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, ethlerr.WithDetails(ethlerr.ErrArityMismatch, map[string]string{
			"types":  strconv.Itoa(len(types)),
			"values": strconv.Itoa(len(values)),
		})
	}

	// Offsets are measured from the start of the head section, whose size is fixed
	headSize := len(types) * WordSize
	head := make([]byte, 0, headSize)
	var tail []byte

	for i, t := range types {
		enc, err := encodeValue(t, values[i])
		if err != nil {
			return nil, ethlerr.Wrap(err, "argument %d (%s)", i, t)
		}
		if t.IsDynamic() {
			head = append(head, uintWord(uint64(headSize+len(tail)))...) //nolint:gosec // G115: sizes are non-negative
			tail = append(tail, enc...)
			continue
		}
		head = append(head, enc...)
	}

	return append(head, tail...), nil
}

func encodeValue(t Type, v any) ([]byte, error) {
	switch t.Kind {
	case Uint256:
		u, err := toUint256(v)
		if err != nil {
			return nil, err
		}
		word := u.Bytes32()
		return word[:], nil

	case Address:
		addr, err := toAddress(v)
		if err != nil {
			return nil, err
		}
		return ethcrypto.LeftPadBytes(addr.Bytes(), WordSize), nil

	case Bool:
		b, err := toBool(v)
		if err != nil {
			return nil, err
		}
		word := make([]byte, WordSize)
		if b {
			word[WordSize-1] = 1
		}
		return word, nil

	case FixedBytes:
		b, err := toBytes(v, false)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, ethlerr.WithDetails(ethlerr.ErrInvalidBytesLength, map[string]string{
				"expected": strconv.Itoa(t.Size),
				"got":      strconv.Itoa(len(b)),
			})
		}
		word := make([]byte, WordSize)
		copy(word, b)
		return word, nil

	case Bytes:
		b, err := toBytes(v, true)
		if err != nil {
			return nil, err
		}
		return encodeDynamic(b), nil

	case String:
		s, err := toString(v)
		if err != nil {
			return nil, err
		}
		return encodeDynamic([]byte(s)), nil

	case Array:
		if t.Elem == nil {
			return nil, unsupported(t.String(), "array type has no element type")
		}
		return encodeArray(*t.Elem, v)
	}

	return nil, unsupported(t.String(), "unknown kind")
}

// encodeDynamic returns a length word followed by b right-padded to a word boundary.
func encodeDynamic(b []byte) []byte {
	padded := (len(b) + WordSize - 1) / WordSize * WordSize
	out := make([]byte, WordSize+padded)
	copy(out, uintWord(uint64(len(b))))
	copy(out[WordSize:], b)
	return out
}

func encodeArray(elem Type, v any) ([]byte, error) {
	if elem.IsDynamic() {
		return nil, unsupported(elem.String()+"[]", "arrays of dynamic element types are not supported")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, invalidValue(v, "expected a slice or array")
	}

	out := make([]byte, 0, WordSize*(rv.Len()+1))
	out = append(out, uintWord(uint64(rv.Len()))...)
	for i := 0; i < rv.Len(); i++ {
		enc, err := encodeValue(elem, rv.Index(i).Interface())
		if err != nil {
			return nil, ethlerr.Wrap(err, "element %d", i)
		}
		out = append(out, enc...)
	}
	return out, nil
}

func uintWord(n uint64) []byte {
	word := uint256.NewInt(n).Bytes32()
	return word[:]
}

func toUint256(v any) (*uint256.Int, error) {
	switch val := v.(type) {
	case *uint256.Int:
		if val == nil {
			return nil, invalidValue(v, "nil integer")
		}
		return val, nil
	case *big.Int:
		if val == nil {
			return nil, invalidValue(v, "nil integer")
		}
		return fromBig(val)
	case string:
		return parseUint256(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // everything else is rejected below
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return nil, negative(strconv.FormatInt(rv.Int(), 10))
		}
		return uint256.NewInt(uint64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uint256.NewInt(rv.Uint()), nil
	case reflect.String:
		return parseUint256(rv.String())
	}

	return nil, invalidValue(v, "expected an unsigned integer")
}

// parseUint256 accepts decimal or 0x-prefixed hex text.
func parseUint256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	b := new(big.Int)

	var ok bool
	if rlp.HasHexPrefix(s) {
		digits := s[2:]
		if digits == "" {
			digits = "0"
		}
		_, ok = b.SetString(digits, 16)
	} else {
		_, ok = b.SetString(s, 10)
	}
	if !ok {
		return nil, invalidValue(s, "not a decimal or hex integer")
	}
	return fromBig(b)
}

func fromBig(b *big.Int) (*uint256.Int, error) {
	if b.Sign() < 0 {
		return nil, negative(b.String())
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, invalidValue(b.String(), "value exceeds 256 bits")
	}
	return u, nil
}

func toAddress(v any) (ethcrypto.Address, error) {
	switch val := v.(type) {
	case ethcrypto.Address:
		return val, nil
	case *ethcrypto.Address:
		if val != nil {
			return *val, nil
		}
	case string:
		addr, err := ethcrypto.HexToAddress(strings.TrimSpace(val))
		if err != nil {
			return ethcrypto.Address{}, invalidValue(val, "invalid address")
		}
		return addr, nil
	case []byte:
		if len(val) == ethcrypto.AddressLength {
			return ethcrypto.BytesToAddress(val), nil
		}
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Array && rv.Len() == ethcrypto.AddressLength && rv.Type().Elem().Kind() == reflect.Uint8 {
			var addr ethcrypto.Address
			reflect.Copy(reflect.ValueOf(addr[:]), rv)
			return addr, nil
		}
	}
	return ethcrypto.Address{}, invalidValue(v, "invalid address")
}

func toBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, invalidValue(val, "expected true or false")
		}
		return b, nil
	}
	return false, invalidValue(v, "expected a bool")
}

// toBytes converts byte slices, byte arrays and hex strings. With allowText,
// strings without a 0x prefix are taken as UTF-8 bytes; otherwise the prefix
// is optional.
func toBytes(v any, allowText bool) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case string:
		if rlp.HasHexPrefix(val) {
			return rlp.HexToBytes(val)
		}
		if allowText {
			return []byte(val), nil
		}
		b, err := rlp.HexToBytes("0x" + val)
		if err != nil {
			return nil, invalidValue(val, "expected hex")
		}
		return b, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return b, nil
	}
	return nil, invalidValue(v, "expected bytes")
}

func toString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	return "", invalidValue(v, "expected a string")
}

func negative(value string) error {
	return ethlerr.WithDetails(ethlerr.ErrNegativeValue, map[string]string{"value": value})
}

func invalidValue(v any, reason string) error {
	return ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
		"reason": reason,
		"value":  fmt.Sprintf("%v", v),
	})
}
