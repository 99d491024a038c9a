package ethcrypto

import (
	"bytes"
	"encoding/hex"
	"sync"
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318" // gitleaks:allow

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)
	return key
}

func TestDeriveAddress(t *testing.T) {
	t.Parallel()

	addr, err := DeriveAddress(testKey(t))
	require.NoError(t, err)
	assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", addr.String())

	priv, err := gethcrypto.ToECDSA(testKey(t))
	require.NoError(t, err)
	assert.Equal(t, gethcrypto.PubkeyToAddress(priv.PublicKey).Bytes(), addr.Bytes())

	pub, err := PrivateKeyToPublicKey(testKey(t))
	require.NoError(t, err)
	assert.Equal(t, gethcrypto.FromECDSAPub(&priv.PublicKey), pub)
}

func TestValidatePrivateKey(t *testing.T) {
	t.Parallel()

	// secp256k1 group order n; keys must be in [1, n-1].
	order, err := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	require.NoError(t, err)
	belowOrder := bytes.Clone(order)
	belowOrder[31]--

	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{"valid", testKey(t), false},
		{"one", append(make([]byte, 31), 1), false},
		{"n-1", belowOrder, false},
		{"zero", make([]byte, 32), true},
		{"order", order, true},
		{"all ones", bytes.Repeat([]byte{0xff}, 32), true},
		{"short", []byte{1, 2, 3}, true},
		{"long", make([]byte, 33), true},
		{"nil", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePrivateKey(tt.key)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPrivateKey)

				_, signErr := Sign(make([]byte, 32), tt.key)
				require.ErrorIs(t, signErr, ErrInvalidPrivateKey)

				_, pubErr := PrivateKeyToPublicKey(tt.key)
				require.ErrorIs(t, pubErr, ErrInvalidPrivateKey)
				return
			}
			require.NoError(t, err)
		})
	}
}

// Signatures are deterministic (RFC 6979) and low-S, so they must match
// go-ethereum byte for byte.
func TestSign_MatchesGoEthereum(t *testing.T) {
	t.Parallel()

	priv, err := gethcrypto.ToECDSA(testKey(t))
	require.NoError(t, err)

	for _, msg := range []string{"", "hello", "transfer(address,uint256)", "recover me"} {
		t.Run(msg, func(t *testing.T) {
			t.Parallel()
			hash := Keccak256([]byte(msg))

			got, err := Sign(hash, testKey(t))
			require.NoError(t, err)

			want, err := gethcrypto.Sign(hash, priv)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

// TestSignHash_EIP155Vector signs the signing hash of the EIP-155 example transaction.
func TestSignHash_EIP155Vector(t *testing.T) {
	t.Parallel()

	key := bytes.Repeat([]byte{0x46}, 32)
	raw, err := hex.DecodeString("daf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53")
	require.NoError(t, err)

	var hash [HashLength]byte
	copy(hash[:], raw)

	sig, err := SignHash(hash, key)
	require.NoError(t, err)
	assert.Equal(t, "28ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276", hex.EncodeToString(sig.R[:]))
	assert.Equal(t, "67cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83", hex.EncodeToString(sig.S[:]))
	assert.Equal(t, byte(0), sig.V)

	flat, err := Sign(hash[:], key)
	require.NoError(t, err)
	assert.Equal(t, flat, sig.Bytes())
}

func TestSign_InvalidHash(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 31, 33} {
		_, err := Sign(make([]byte, n), testKey(t))
		require.ErrorIs(t, err, ErrInvalidHashLength, "hash length %d", n)
	}
}

func TestRecoverAddress(t *testing.T) {
	t.Parallel()

	hash := Keccak256Hash([]byte("recover me"))
	sig, err := SignHash(hash, testKey(t))
	require.NoError(t, err)

	want, err := DeriveAddress(testKey(t))
	require.NoError(t, err)

	got, err := RecoverAddress(hash[:], sig)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	flipped := sig
	flipped.V ^= 1
	if other, err := RecoverAddress(hash[:], flipped); err == nil {
		assert.NotEqual(t, want, other)
	}

	_, err = RecoverAddress(hash[:], Signature{V: 2})
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = RecoverAddress([]byte{1}, sig)
	require.ErrorIs(t, err, ErrInvalidHashLength)
}

func TestPublicKeyToAddress(t *testing.T) {
	t.Parallel()

	pub, err := PrivateKeyToPublicKey(testKey(t))
	require.NoError(t, err)
	want, err := DeriveAddress(testKey(t))
	require.NoError(t, err)

	prefixed, err := PublicKeyToAddress(pub)
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), prefixed)

	bare, err := PublicKeyToAddress(pub[1:])
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), bare)

	bad := bytes.Clone(pub)
	bad[0] = 0x02
	_, err = PublicKeyToAddress(bad)
	require.ErrorIs(t, err, ErrInvalidPublicKeyPrefix)

	_, err = PublicKeyToAddress(pub[:33])
	require.ErrorIs(t, err, ErrInvalidPublicKeyLength)
}

func TestSign_Concurrent(t *testing.T) {
	t.Parallel()

	const goroutines = 100
	key := testKey(t)
	hash := Keccak256([]byte("same message"))
	want, err := Sign(hash, key)
	require.NoError(t, err)

	var wg sync.WaitGroup
	sigs := make([][]byte, goroutines)
	errs := make([]error, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sigs[i], errs[i] = Sign(hash, key)
		}()
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Equal(t, want, sigs[i], "goroutine %d", i)
	}
	assert.Equal(t, testKeyHex, hex.EncodeToString(key), "key must not be modified")
}
