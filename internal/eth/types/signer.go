package ethtypes

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	ethcrypto "github.com/ananthanir/ethlite/internal/eth/crypto"
	"github.com/ananthanir/ethlite/internal/eth/rlp"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

const (
	// EIP155LegacyVOffset gives the standard v = recid + chainID*2 + 35.
	EIP155LegacyVOffset = 35

	// CompatLegacyVOffset gives v = recid + chainID*2 + 8, the value produced by
	// earlier releases of this tool. It differs from EIP-155 and nodes that
	// enforce replay protection will not recover the expected sender from it.
	CompatLegacyVOffset = 8
)

// Signer signs transaction records.
// The zero value uses a legacy v offset of 0; use NewSigner or NewEIP155Signer.
type Signer struct {
	// LegacyVOffset is added to recid + chainID*2 for legacy transactions.
	// Typed transactions always use v = recid.
	LegacyVOffset int64
}

// NewSigner returns a signer that stays bit-compatible with earlier releases
// (legacy v offset 8).
func NewSigner() Signer {
	return Signer{LegacyVOffset: CompatLegacyVOffset}
}

// NewEIP155Signer returns a signer producing standard EIP-155 legacy signatures.
func NewEIP155Signer() Signer {
	return Signer{LegacyVOffset: EIP155LegacyVOffset}
}

// SignedTx is a signed transaction ready for broadcast.
type SignedTx struct {
	Raw  []byte
	V    *big.Int
	R    *big.Int
	S    *big.Int
	From Address

	txType byte
}

// Type returns the transaction type byte.
func (tx *SignedTx) Type() byte {
	return tx.txType
}

// Hex returns the raw transaction as 0x-prefixed hex.
func (tx *SignedTx) Hex() string {
	return hexutil.Encode(tx.Raw)
}

// Hash returns the transaction hash, the Keccak-256 of the raw bytes.
func (tx *SignedTx) Hash() Hash {
	return Hash(ethcrypto.Keccak256Hash(tx.Raw))
}

// Sign resolves fields and signs the result with privateKey.
// The key is only read and is not retained.
func (s Signer) Sign(fields *Fields, privateKey []byte) (*SignedTx, error) {
	tx, err := fields.TxData()
	if err != nil {
		return nil, err
	}
	return s.SignTxData(tx, privateKey)
}

// SignTxData signs an already resolved transaction.
func (s Signer) SignTxData(tx TxData, privateKey []byte) (*SignedTx, error) {
	hash := SigningHash(tx)

	sig, err := ethcrypto.SignHash(hash, privateKey)
	if err != nil {
		return nil, ethlerr.WithCause(ethlerr.ErrSigningFailure, err)
	}
	from, err := ethcrypto.DeriveAddress(privateKey)
	if err != nil {
		return nil, ethlerr.WithCause(ethlerr.ErrSigningFailure, err)
	}

	v := new(big.Int).SetUint64(uint64(sig.V))
	if tx.Type() == LegacyTxType {
		// v = recid + chainID*2 + offset
		v.Add(v, new(big.Int).Lsh(tx.ChainID(), 1))
		v.Add(v, big.NewInt(s.LegacyVOffset))
	}
	r := new(big.Int).SetBytes(sig.R[:])
	sv := new(big.Int).SetBytes(sig.S[:])

	return &SignedTx{
		Raw:    EncodeRaw(tx, v, r, sv),
		V:      v,
		R:      r,
		S:      sv,
		From:   from,
		txType: tx.Type(),
	}, nil
}

// SignTx signs fields with the compatible signer and returns the raw
// transaction as 0x-prefixed hex.
func SignTx(fields *Fields, privateKey []byte) (string, error) {
	signed, err := NewSigner().Sign(fields, privateKey)
	if err != nil {
		return "", err
	}
	return signed.Hex(), nil
}

// ParsePrivateKey decodes a 32-byte private key from hex, with or without 0x.
func ParsePrivateKey(s string) ([]byte, error) {
	key, err := rlp.HexToBytes(strings.TrimSpace(s))
	if err != nil {
		return nil, ethlerr.ErrInvalidPrivateKey
	}
	if err := ethcrypto.ValidatePrivateKey(key); err != nil {
		clear(key)
		return nil, ethlerr.ErrInvalidPrivateKey
	}
	return key, nil
}
