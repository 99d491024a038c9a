package crypto_test

import (
	"bytes"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ananthanir/ethlite/internal/crypto"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestSecureBytes_Lifecycle(t *testing.T) {
	t.Parallel()

	sb := crypto.NewSecureBytes(32)
	data := sb.Bytes()
	require.Len(t, data, 32)
	assert.Equal(t, 32, sb.Len())
	_ = sb.IsLocked() // depends on RLIMIT_MEMLOCK

	for i := range data {
		data[i] = byte(i + 1)
	}

	sb.Destroy()
	assert.Nil(t, sb.Bytes())
	assert.Equal(t, 0, sb.Len())
	assert.False(t, sb.IsLocked())
	assert.Equal(t, make([]byte, 32), data, "backing array is zeroed")

	sb.Destroy()
}

func TestSecureBytes_ZeroSize(t *testing.T) {
	t.Parallel()
	sb := crypto.NewSecureBytes(0)
	defer sb.Destroy()

	assert.Empty(t, sb.Bytes())
	assert.False(t, sb.IsLocked())
}

func TestSecureBytesFromSlice(t *testing.T) {
	t.Parallel()

	original := []byte("secret key material")
	sb := crypto.SecureBytesFromSlice(original)
	defer sb.Destroy()

	assert.Equal(t, original, sb.Bytes())

	original[0] = 'X'
	assert.Equal(t, byte('s'), sb.Bytes()[0], "input is copied")
}

func TestPrivateKeyFromText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"bare hex", testKeyHex},
		{"prefixed", "0x" + testKeyHex},
		{"upper prefix", "0X" + testKeyHex},
		{"trailing newline", testKeyHex + "\n"},
		{"surrounding space", "  0x" + testKeyHex + " \r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text := []byte(tt.input)
			sb, err := crypto.PrivateKeyFromText(text)
			require.NoError(t, err)
			defer sb.Destroy()

			assert.Equal(t, testKeyHex, hex.EncodeToString(sb.Bytes()))
			assert.Equal(t, make([]byte, len(text)), text, "input text is zeroed")
		})
	}
}

func TestPrivateKeyFromText_Invalid(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"0x",
		"zz" + testKeyHex[2:],
		testKeyHex[:62],
		testKeyHex + "00",
		testKeyHex[:63],
		"0000000000000000000000000000000000000000000000000000000000000000",
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141",
	}

	for _, input := range inputs {
		_, err := crypto.PrivateKeyFromText([]byte(input))
		require.ErrorIs(t, err, ethlerr.ErrInvalidPrivateKey, input)
	}
}

func TestSecureBytes_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	sb := crypto.SecureBytesFromSlice(bytes.Repeat([]byte{7}, 32))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sb.Len()
			_ = sb.Bytes()
		}()
	}
	wg.Wait()
	sb.Destroy()
}

func TestZeroBytes(t *testing.T) {
	t.Parallel()
	b := []byte{1, 2, 3}
	crypto.ZeroBytes(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
	crypto.ZeroBytes(nil)
}
