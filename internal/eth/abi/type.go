// Package abi encodes contract call arguments in the Solidity ABI head/tail
// layout and computes 4-byte function selectors.
//
// Only the static-call subset is supported: uint256, address, bool, bytesN,
// bytes, string, and one-dimensional arrays of static element types.
package abi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// WordSize is the size of one ABI head word.
const WordSize = 32

// Kind identifies the shape of an ABI type.
type Kind int

// Supported kinds.
const (
	Uint256 Kind = iota
	Address
	Bool
	FixedBytes
	Bytes
	String
	Array
)

// Type is a parsed ABI type tag.
type Type struct {
	Kind Kind
	Size int   // byte width for FixedBytes
	Elem *Type // element type for Array
}

// knownTags seeds "did you mean" suggestions for unknown type tags.
//
//nolint:gochecknoglobals // read-only lookup table
var knownTags = []string{
	"uint256", "uint", "address", "bool", "bytes", "string",
	"bytes1", "bytes4", "bytes8", "bytes16", "bytes20", "bytes32",
}

// IsDynamic reports whether values of the type live in the tail section.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case Bytes, String, Array:
		return true
	case Uint256, Address, Bool, FixedBytes:
		return false
	}
	return false
}

// String returns the canonical tag for the type.
func (t Type) String() string {
	switch t.Kind {
	case Uint256:
		return "uint256"
	case Address:
		return "address"
	case Bool:
		return "bool"
	case FixedBytes:
		return "bytes" + strconv.Itoa(t.Size)
	case Bytes:
		return "bytes"
	case String:
		return "string"
	case Array:
		if t.Elem == nil {
			return "[]"
		}
		return t.Elem.String() + "[]"
	}
	return fmt.Sprintf("Kind(%d)", int(t.Kind))
}

// ParseType parses an ABI type tag such as "uint256", "bytes32" or "address[]".
// "uint" is accepted as an alias of "uint256".
func ParseType(tag string) (Type, error) {
	tag = strings.TrimSpace(tag)

	if elem, ok := strings.CutSuffix(tag, "[]"); ok {
		if strings.HasSuffix(elem, "]") {
			return Type{}, unsupported(tag, "nested arrays are not supported")
		}
		elemType, err := parseElementary(elem)
		if err != nil {
			return Type{}, err
		}
		if elemType.IsDynamic() {
			return Type{}, unsupported(tag, "arrays of dynamic element types are not supported")
		}
		return Type{Kind: Array, Elem: &elemType}, nil
	}

	return parseElementary(tag)
}

func parseElementary(tag string) (Type, error) {
	switch tag {
	case "uint256", "uint":
		return Type{Kind: Uint256}, nil
	case "address":
		return Type{Kind: Address}, nil
	case "bool":
		return Type{Kind: Bool}, nil
	case "bytes":
		return Type{Kind: Bytes}, nil
	case "string":
		return Type{Kind: String}, nil
	}

	if sizeStr, ok := strings.CutPrefix(tag, "bytes"); ok {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 1 || size > WordSize || sizeStr != strconv.Itoa(size) {
			return Type{}, unsupported(tag, "fixed bytes size must be between 1 and 32")
		}
		return Type{Kind: FixedBytes, Size: size}, nil
	}

	if strings.Contains(tag, "[") {
		return Type{}, unsupported(tag, "fixed-size arrays are not supported")
	}

	err := unsupported(tag, "unknown type")
	if s := suggest(tag); s != "" {
		err = ethlerr.WithSuggestion(err, fmt.Sprintf("did you mean %q?", s))
	}
	return Type{}, err
}

func unsupported(tag, reason string) error {
	return ethlerr.WithDetails(ethlerr.ErrUnsupportedType, map[string]string{
		"type":   tag,
		"reason": reason,
	})
}

// suggest returns the closest known tag within a small edit distance.
func suggest(tag string) string {
	best, bestDist := "", 3
	for _, known := range knownTags {
		if d := levenshtein.ComputeDistance(tag, known); d < bestDist {
			best, bestDist = known, d
		}
	}
	return best
}
