package rlp

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	// EmptyString is the encoding of an empty byte string.
	EmptyString byte = 0x80
	// EmptyList is the encoding of an empty list.
	EmptyList byte = 0xc0

	stringOffset byte = 0x80
	listOffset   byte = 0xc0
)

// listHead records where a list's payload starts in the string buffer and,
// once the list is closed, the encoded size of that payload.
type listHead struct {
	offset int
	size   int
}

// listFrame tracks a list whose children are still being walked.
type listFrame struct {
	items []Item
	next  int
	head  int
}

// Encode returns the RLP encoding of item.
//
// Nested lists are walked with an explicit stack, so depth is bounded only by memory.
// String data is written once into a flat buffer and list headers are spliced in at
// the end, keeping the encoder linear in the size of the output.
func Encode(item Item) []byte {
	if !item.isList {
		return appendString(nil, item.str)
	}

	var (
		str    []byte
		heads  []listHead
		hdrLen int // total size of all closed list headers
	)
	openList := func(items []Item) listFrame {
		heads = append(heads, listHead{offset: len(str), size: hdrLen})
		return listFrame{items: items, head: len(heads) - 1}
	}

	stack := []listFrame{openList(item.list)}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.items) {
			child := top.items[top.next]
			top.next++
			if child.isList {
				stack = append(stack, openList(child.list))
				continue
			}
			str = appendString(str, child.str)
			continue
		}

		// All children written: the payload is everything since the list opened,
		// including headers of lists closed in between
		lh := &heads[top.head]
		lh.size = len(str) + hdrLen - lh.offset - lh.size
		hdrLen += headerSize(lh.size)
		stack = stack[:len(stack)-1]
	}

	out := make([]byte, 0, len(str)+hdrLen)
	pos := 0
	for _, lh := range heads {
		out = append(out, str[pos:lh.offset]...)
		out = appendLength(out, lh.size, listOffset)
		pos = lh.offset
	}
	return append(out, str[pos:]...)
}

// EncodeValue normalizes v (see ToItem) and returns its RLP encoding.
func EncodeValue(v any) ([]byte, error) {
	item, err := ToItem(v)
	if err != nil {
		return nil, err
	}
	return Encode(item), nil
}

// EncodeToHex returns the RLP encoding of item as 0x-prefixed lowercase hex.
func EncodeToHex(item Item) string {
	return hexutil.Encode(Encode(item))
}

// appendString appends the encoding of a byte string.
// - For a single byte in [0x00, 0x7f], the byte is its own RLP encoding.
// - For 0-55 bytes, prefix with (0x80 + length).
// - For >55 bytes, prefix with (0xb7 + length of length) followed by length.
func appendString(dst, b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return append(dst, b[0])
	}
	dst = appendLength(dst, len(b), stringOffset)
	return append(dst, b...)
}

// appendLength appends the length prefix for strings (offset=0x80) or lists (offset=0xc0).
func appendLength(dst []byte, length int, offset byte) []byte {
	if length < 56 {
		return append(dst, offset+byte(length)) //nolint:gosec // G115: length < 56, safe conversion
	}

	lenBytes := bigEndianBytes(uint64(length))
	dst = append(dst, offset+55+byte(len(lenBytes))) //nolint:gosec // G115: len(lenBytes) <= 8 for any uint64
	return append(dst, lenBytes...)
}

// headerSize returns the number of prefix bytes needed for a payload of the given length.
func headerSize(length int) int {
	if length < 56 {
		return 1
	}
	return 1 + len(bigEndianBytes(uint64(length)))
}

// bigEndianBytes converts a uint64 to minimal big-endian bytes (no leading zeros).
func bigEndianBytes(i uint64) []byte {
	if i == 0 {
		return []byte{}
	}

	// Find the number of significant bytes
	n := 0
	for v := i; v > 0; v >>= 8 {
		n++
	}

	result := make([]byte, n)
	for j := n - 1; j >= 0; j-- {
		result[j] = byte(i)
		i >>= 8
	}
	return result
}
