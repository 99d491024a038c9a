package ethtypes

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	ethcrypto "github.com/ananthanir/ethlite/internal/eth/crypto"
	"github.com/ananthanir/ethlite/internal/eth/rlp"
)

// body returns the variant's fields in wire order, without signature values.
func body(tx TxData) []rlp.Item {
	switch t := tx.(type) {
	case *LegacyTx:
		return []rlp.Item{
			rlp.Uint64(t.Nonce),
			bigItem(t.GasPrice),
			rlp.Uint64(t.Gas),
			toItem(t.To),
			bigItem(t.Value),
			rlp.Bytes(t.Data),
		}
	case *AccessListTx:
		return []rlp.Item{
			bigItem(t.Chain),
			rlp.Uint64(t.Nonce),
			bigItem(t.GasPrice),
			rlp.Uint64(t.Gas),
			toItem(t.To),
			bigItem(t.Value),
			rlp.Bytes(t.Data),
			t.AccessList.item(),
		}
	case *DynamicFeeTx:
		return []rlp.Item{
			bigItem(t.Chain),
			rlp.Uint64(t.Nonce),
			bigItem(t.MaxPriorityFeePerGas),
			bigItem(t.MaxFeePerGas),
			rlp.Uint64(t.Gas),
			toItem(t.To),
			bigItem(t.Value),
			rlp.Bytes(t.Data),
			t.AccessList.item(),
		}
	}
	return nil
}

// SigningPayload returns the bytes whose Keccak-256 hash is signed.
//
// Legacy: rlp([nonce, gasPrice, gas, to, value, data, chainId, 0, 0]).
// Typed: type || rlp(fields), where the type byte is part of the hashed payload.
func SigningPayload(tx TxData) []byte {
	items := body(tx)
	if tx.Type() == LegacyTxType {
		items = append(items, bigItem(tx.ChainID()), rlp.Uint64(0), rlp.Uint64(0))
	}
	return envelope(tx.Type(), rlp.List(items...))
}

// SigningHash returns the Keccak-256 hash of the signing payload.
func SigningHash(tx TxData) [32]byte {
	return ethcrypto.Keccak256Hash(SigningPayload(tx))
}

// EncodeRaw returns the wire encoding of tx with the given signature values.
func EncodeRaw(tx TxData, v, r, s *big.Int) []byte {
	items := append(body(tx), bigItem(v), bigItem(r), bigItem(s))
	return envelope(tx.Type(), rlp.List(items...))
}

// Serialize returns the unsigned wire encoding of the record with v = r = s = 0.
// The output is for previews and size estimates and is never valid on a network.
func Serialize(fields *Fields) ([]byte, error) {
	tx, err := fields.TxData()
	if err != nil {
		return nil, err
	}
	return EncodeRaw(tx, nil, nil, nil), nil
}

// SerializeHex is Serialize rendered as 0x-prefixed hex.
func SerializeHex(fields *Fields) (string, error) {
	raw, err := Serialize(fields)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(raw), nil
}

// envelope prepends the type byte for typed transactions.
func envelope(txType byte, item rlp.Item) []byte {
	encoded := rlp.Encode(item)
	if txType == LegacyTxType {
		return encoded
	}
	out := make([]byte, 0, 1+len(encoded))
	out = append(out, txType)
	return append(out, encoded...)
}

// bigItem encodes a validated, non-negative amount. Nil is zero.
func bigItem(v *big.Int) rlp.Item {
	if v == nil {
		return rlp.Uint64(0)
	}
	return rlp.Bytes(v.Bytes())
}

// toItem encodes the recipient, empty for contract creation.
func toItem(to *Address) rlp.Item {
	if to == nil {
		return rlp.Bytes(nil)
	}
	return rlp.Bytes(to[:])
}
