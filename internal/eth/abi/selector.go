package abi

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	ethcrypto "github.com/ananthanir/ethlite/internal/eth/crypto"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// SelectorLength is the size of a function selector.
const SelectorLength = 4

// Selector returns the first 4 bytes of the Keccak-256 hash of signature,
// e.g. "transfer(address,uint256)" -> a9059cbb. The signature is hashed as given.
func Selector(signature string) [SelectorLength]byte {
	var sel [SelectorLength]byte
	copy(sel[:], ethcrypto.Keccak256([]byte(signature)))
	return sel
}

// SelectorHex returns the selector as 0x-prefixed hex.
func SelectorHex(signature string) string {
	sel := Selector(signature)
	return hexutil.Encode(sel[:])
}

// EncodeFunctionCall returns selector(signature) followed by the encoded arguments.
func EncodeFunctionCall(signature string, types []string, values []any) ([]byte, error) {
	args, err := EncodeArguments(types, values)
	if err != nil {
		return nil, err
	}

	sel := Selector(signature)
	out := make([]byte, 0, SelectorLength+len(args))
	out = append(out, sel[:]...)
	return append(out, args...), nil
}

// EncodeCall parses signature for its argument types and encodes a call.
// The selector is computed over the canonical form, so "f(uint)" and
// "f(uint256)" produce the same calldata.
func EncodeCall(signature string, values []any) ([]byte, error) {
	canonical, types, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	return EncodeFunctionCall(canonical, types, values)
}

// ParseSignature splits a function signature such as "transfer(address,uint256)"
// into its canonical form and argument type tags.
func ParseSignature(signature string) (canonical string, types []string, err error) {
	signature = strings.TrimSpace(signature)

	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return "", nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason":    "expected name(type,...)",
			"signature": signature,
		})
	}

	name := strings.TrimSpace(signature[:open])
	if !isIdentifier(name) {
		return "", nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason":    "invalid function name",
			"signature": signature,
		})
	}

	inner := strings.TrimSpace(signature[open+1 : len(signature)-1])
	if inner != "" {
		for i, tag := range strings.Split(inner, ",") {
			t, parseErr := ParseType(tag)
			if parseErr != nil {
				return "", nil, ethlerr.Wrap(parseErr, "argument %d", i)
			}
			types = append(types, t.String())
		}
	}

	return name + "(" + strings.Join(types, ",") + ")", types, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
