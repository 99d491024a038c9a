// Package crypto holds private key material in locked, zeroable memory.
//
//nolint:revive // Internal package name is intentional
package crypto

import (
	"bytes"
	"encoding/hex"
	"runtime"
	"sync"

	ethcrypto "github.com/ananthanir/ethlite/internal/eth/crypto"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// SecureBytes wraps a sensitive byte slice. The backing memory is mlocked
// when the OS allows it and zeroed on Destroy.
type SecureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewSecureBytes allocates size bytes of secure memory.
func NewSecureBytes(size int) *SecureBytes {
	sb := &SecureBytes{data: make([]byte, size)}

	// Locking may fail under RLIMIT_MEMLOCK; the buffer is still zeroed on Destroy.
	sb.locked = lockPages(sb.data)

	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Destroy()
	})

	return sb
}

// SecureBytesFromSlice copies data into secure memory.
func SecureBytesFromSlice(data []byte) *SecureBytes {
	sb := NewSecureBytes(len(data))
	copy(sb.data, data)
	return sb
}

// PrivateKeyFromText decodes a hex private key (optional 0x prefix, surrounding
// whitespace allowed) straight into secure memory and validates it as a
// secp256k1 scalar. text is zeroed before returning.
func PrivateKeyFromText(text []byte) (*SecureBytes, error) {
	defer ZeroBytes(text)

	trimmed := bytes.TrimSpace(text)
	if len(trimmed) >= 2 && trimmed[0] == '0' && (trimmed[1] == 'x' || trimmed[1] == 'X') {
		trimmed = trimmed[2:]
	}
	if hex.DecodedLen(len(trimmed)) != 32 || len(trimmed)%2 != 0 {
		return nil, ethlerr.ErrInvalidPrivateKey
	}

	sb := NewSecureBytes(32)
	if _, err := hex.Decode(sb.data, trimmed); err != nil {
		sb.Destroy()
		return nil, ethlerr.ErrInvalidPrivateKey
	}
	if err := ethcrypto.ValidatePrivateKey(sb.data); err != nil {
		sb.Destroy()
		return nil, ethlerr.ErrInvalidPrivateKey
	}
	return sb, nil
}

// Bytes returns the underlying byte slice, or nil after Destroy.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsLocked reports whether the memory is mlocked.
func (s *SecureBytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Destroy zeros and unlocks the memory. Safe to call multiple times.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}

	ZeroBytes(s.data)
	if s.locked {
		unlockPages(s.data)
		s.locked = false
	}
	s.data = nil

	runtime.SetFinalizer(s, nil)
}

// Len returns the length of the data.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// ZeroBytes overwrites b with zeros.
func ZeroBytes(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
