package ethcrypto

import (
	"encoding/hex"
	"errors"
	"strings"
)

// AddressLength is the size of an account address.
const AddressLength = 20

// ErrInvalidAddressFormat is returned for anything but 40 hex digits.
var ErrInvalidAddressFormat = errors.New("invalid address format")

// Address is the low 20 bytes of the Keccak-256 hash of a public key.
type Address [AddressLength]byte

// BytesToAddress keeps the trailing 20 bytes of b, left-padding shorter input.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// HexToAddress parses 40 hex digits with an optional 0x prefix. Mixed case is
// accepted without checking the EIP-55 checksum.
func HexToAddress(s string) (Address, error) {
	digits := s
	if len(digits) >= 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		digits = digits[2:]
	}
	if len(digits) != 2*AddressLength {
		return Address{}, ErrInvalidAddressFormat
	}

	var a Address
	if _, err := hex.Decode(a[:], []byte(digits)); err != nil {
		return Address{}, ErrInvalidAddressFormat
	}
	return a, nil
}

// Bytes returns a copy-free view of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the lowercase 0x-prefixed form used on the wire.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String returns the EIP-55 mixed-case form.
func (a Address) String() string {
	return a.Checksum()
}

// Checksum returns the EIP-55 encoding: a hex letter is upper case when the
// matching nibble of Keccak256(lowercase hex) is 8 or more.
func (a Address) Checksum() string {
	lower := hex.EncodeToString(a[:])
	digest := Keccak256([]byte(lower))

	out := []byte("0x" + lower)
	for i := range lower {
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 && out[i+2] >= 'a' {
			out[i+2] -= 'a' - 'A'
		}
	}
	return string(out)
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := HexToAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ToChecksumAddress re-cases a hex address per EIP-55. Input that is not a
// valid address is returned unchanged.
func ToChecksumAddress(address string) string {
	a, err := HexToAddress(strings.TrimSpace(address))
	if err != nil {
		return address
	}
	return a.Checksum()
}

// LeftPadBytes returns b left-padded with zeros to length. Longer input is
// returned as is.
func LeftPadBytes(b []byte, length int) []byte {
	if len(b) >= length {
		return b
	}
	padded := make([]byte, length)
	copy(padded[length-len(b):], b)
	return padded
}
