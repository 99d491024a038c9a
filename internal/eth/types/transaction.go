// Package ethtypes builds, serializes and signs Ethereum transactions in the
// legacy (EIP-155), access list (EIP-2930) and dynamic fee (EIP-1559) formats.
package ethtypes

import (
	"bytes"
	"math/big"

	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// Transaction type bytes.
const (
	LegacyTxType     byte = 0x00
	AccessListTxType byte = 0x01
	DynamicFeeTxType byte = 0x02
)

// DefaultChainID is used when a record does not carry a chain ID.
const DefaultChainID = 1

// Fields is the caller-facing transaction record.
//
// A nil pointer means the field was not supplied. Presence, not value, selects
// the transaction format: both fee caps select EIP-1559, otherwise a non-nil
// AccessList (even an empty one) selects EIP-2930, otherwise the record is legacy.
type Fields struct {
	Nonce                uint64
	GasPrice             *big.Int
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	Gas                  uint64
	To                   *Address // nil for contract creation
	Value                *big.Int
	Data                 []byte
	ChainID              *big.Int
	AccessList           *AccessList
}

// TxData is one of *LegacyTx, *AccessListTx or *DynamicFeeTx.
type TxData interface {
	// Type returns the EIP-2718 type byte, 0 for legacy.
	Type() byte
	// ChainID returns the chain the transaction is bound to.
	ChainID() *big.Int

	sealed()
}

// LegacyTx is a pre-typed transaction with EIP-155 replay protection.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *Address
	Value    *big.Int
	Data     []byte
	Chain    *big.Int
}

// AccessListTx is an EIP-2930 transaction.
type AccessListTx struct {
	Chain      *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         *Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
}

// DynamicFeeTx is an EIP-1559 transaction.
type DynamicFeeTx struct {
	Chain                *big.Int
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	Gas                  uint64
	To                   *Address
	Value                *big.Int
	Data                 []byte
	AccessList           AccessList
}

func (*LegacyTx) Type() byte     { return LegacyTxType }
func (*AccessListTx) Type() byte { return AccessListTxType }
func (*DynamicFeeTx) Type() byte { return DynamicFeeTxType }

func (tx *LegacyTx) ChainID() *big.Int     { return tx.Chain }
func (tx *AccessListTx) ChainID() *big.Int { return tx.Chain }
func (tx *DynamicFeeTx) ChainID() *big.Int { return tx.Chain }

func (*LegacyTx) sealed()     {}
func (*AccessListTx) sealed() {}
func (*DynamicFeeTx) sealed() {}

// TypeName returns a short human-readable name for a type byte.
func TypeName(t byte) string {
	switch t {
	case LegacyTxType:
		return "legacy"
	case AccessListTxType:
		return "eip2930"
	case DynamicFeeTxType:
		return "eip1559"
	}
	return "unknown"
}

// TxData resolves the record into its transaction format, applying defaults:
// chain ID 1, zero for missing numbers, empty to/data/access list.
// Negative amounts are rejected with ErrInvalidInput.
func (f *Fields) TxData() (TxData, error) {
	if f == nil {
		return nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{"reason": "nil transaction"})
	}

	value, err := amount("value", f.Value)
	if err != nil {
		return nil, err
	}
	chainID := big.NewInt(DefaultChainID)
	if f.ChainID != nil {
		if chainID, err = amount("chainId", f.ChainID); err != nil {
			return nil, err
		}
	}
	to := cloneAddress(f.To)
	data := bytes.Clone(f.Data)

	if f.MaxFeePerGas != nil && f.MaxPriorityFeePerGas != nil {
		tip, err := amount("maxPriorityFeePerGas", f.MaxPriorityFeePerGas)
		if err != nil {
			return nil, err
		}
		feeCap, err := amount("maxFeePerGas", f.MaxFeePerGas)
		if err != nil {
			return nil, err
		}
		return &DynamicFeeTx{
			Chain:                chainID,
			Nonce:                f.Nonce,
			MaxPriorityFeePerGas: tip,
			MaxFeePerGas:         feeCap,
			Gas:                  f.Gas,
			To:                   to,
			Value:                value,
			Data:                 data,
			AccessList:           cloneAccessList(f.AccessList),
		}, nil
	}

	gasPrice, err := amount("gasPrice", f.GasPrice)
	if err != nil {
		return nil, err
	}

	if f.AccessList != nil {
		return &AccessListTx{
			Chain:      chainID,
			Nonce:      f.Nonce,
			GasPrice:   gasPrice,
			Gas:        f.Gas,
			To:         to,
			Value:      value,
			Data:       data,
			AccessList: cloneAccessList(f.AccessList),
		}, nil
	}

	return &LegacyTx{
		Nonce:    f.Nonce,
		GasPrice: gasPrice,
		Gas:      f.Gas,
		To:       to,
		Value:    value,
		Data:     data,
		Chain:    chainID,
	}, nil
}

// Type returns the type byte the record resolves to.
func (f *Fields) Type() byte {
	switch {
	case f.MaxFeePerGas != nil && f.MaxPriorityFeePerGas != nil:
		return DynamicFeeTxType
	case f.AccessList != nil:
		return AccessListTxType
	default:
		return LegacyTxType
	}
}

// amount copies v, treating nil as zero and rejecting negatives.
func amount(field string, v *big.Int) (*big.Int, error) {
	if v == nil {
		return new(big.Int), nil
	}
	if v.Sign() < 0 {
		return nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"field":  field,
			"reason": "negative value",
			"value":  v.String(),
		})
	}
	return new(big.Int).Set(v), nil
}

func cloneAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func cloneAccessList(al *AccessList) AccessList {
	if al == nil {
		return AccessList{}
	}
	out := make(AccessList, len(*al))
	for i, tuple := range *al {
		out[i] = AccessTuple{
			Address:     tuple.Address,
			StorageKeys: append([]Hash(nil), tuple.StorageKeys...),
		}
	}
	return out
}
