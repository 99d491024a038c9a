package ethtypes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ananthanir/ethlite/internal/eth/rlp"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// Record keys. "gasLimit" is accepted as an alias of "gas".
const (
	keyNonce                = "nonce"
	keyGasPrice             = "gasPrice"
	keyMaxPriorityFeePerGas = "maxPriorityFeePerGas"
	keyMaxFeePerGas         = "maxFeePerGas"
	keyGas                  = "gas"
	keyGasLimit             = "gasLimit"
	keyTo                   = "to"
	keyValue                = "value"
	keyData                 = "data"
	keyInput                = "input"
	keyChainID              = "chainId"
	keyAccessList           = "accessList"
)

// accessTupleText is the document form of an access list entry.
type accessTupleText struct {
	Address     string   `json:"address"     yaml:"address"`
	StorageKeys []string `json:"storageKeys" yaml:"storageKeys"`
}

// recordSource abstracts JSON and YAML documents for decodeRecord.
// scalar reports ok=false for absent or null keys.
type recordSource interface {
	scalar(key string) (text string, ok bool, err error)
	accessList(key string) (tuples []accessTupleText, ok bool, err error)
}

// UnmarshalJSON decodes a transaction record. Quantities may be JSON numbers,
// decimal strings or 0x-prefixed hex strings.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ethlerr.WithCause(ethlerr.ErrInvalidInput, err)
	}
	return f.decodeRecord(jsonRecord(raw))
}

// UnmarshalYAML decodes a transaction record from a YAML mapping.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason": "transaction must be a mapping",
			"line":   fmt.Sprint(node.Line),
		})
	}

	rec := make(yamlRecord, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		rec[node.Content[i].Value] = node.Content[i+1]
	}
	return f.decodeRecord(rec)
}

func (f *Fields) decodeRecord(src recordSource) error {
	var out Fields
	var err error

	if out.Nonce, err = uint64Field(src, keyNonce); err != nil {
		return err
	}
	if out.Gas, err = uint64Field(src, keyGas); err != nil {
		return err
	}
	if out.Gas == 0 {
		if out.Gas, err = uint64Field(src, keyGasLimit); err != nil {
			return err
		}
	}
	if out.GasPrice, err = bigField(src, keyGasPrice); err != nil {
		return err
	}
	if out.MaxPriorityFeePerGas, err = bigField(src, keyMaxPriorityFeePerGas); err != nil {
		return err
	}
	if out.MaxFeePerGas, err = bigField(src, keyMaxFeePerGas); err != nil {
		return err
	}
	if out.Value, err = bigField(src, keyValue); err != nil {
		return err
	}
	if out.ChainID, err = bigField(src, keyChainID); err != nil {
		return err
	}

	to, ok, err := src.scalar(keyTo)
	if err != nil {
		return err
	}
	if ok && to != "" && to != "0x" {
		addr, addrErr := HexToAddress(to)
		if addrErr != nil {
			return addrErr
		}
		out.To = &addr
	}

	if out.Data, err = bytesField(src, keyData); err != nil {
		return err
	}
	if out.Data == nil {
		if out.Data, err = bytesField(src, keyInput); err != nil {
			return err
		}
	}

	tuples, ok, err := src.accessList(keyAccessList)
	if err != nil {
		return err
	}
	if ok {
		al, alErr := parseAccessList(tuples)
		if alErr != nil {
			return alErr
		}
		out.AccessList = &al
	}

	*f = out
	return nil
}

// ParseQuantity parses a non-negative decimal or 0x-prefixed hex integer.
func ParseQuantity(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	n := new(big.Int)

	var ok bool
	switch {
	case rlp.HasHexPrefix(s):
		digits := s[2:]
		if digits == "" {
			return n, nil
		}
		_, ok = n.SetString(digits, 16)
	case s == "":
		return n, nil
	default:
		_, ok = n.SetString(s, 10)
	}

	if !ok {
		return nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason": "not a decimal or hex integer",
			"value":  s,
		})
	}
	if n.Sign() < 0 {
		return nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason": "negative value",
			"value":  s,
		})
	}
	return n, nil
}

func bigField(src recordSource, key string) (*big.Int, error) {
	text, ok, err := src.scalar(key)
	if err != nil || !ok {
		return nil, err
	}
	n, err := ParseQuantity(text)
	if err != nil {
		return nil, ethlerr.Wrap(err, "field %s", key)
	}
	return n, nil
}

func uint64Field(src recordSource, key string) (uint64, error) {
	n, err := bigField(src, key)
	if err != nil || n == nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"field":  key,
			"reason": "value exceeds 64 bits",
		})
	}
	return n.Uint64(), nil
}

func bytesField(src recordSource, key string) ([]byte, error) {
	text, ok, err := src.scalar(key)
	if err != nil || !ok {
		return nil, err
	}
	b, err := rlp.HexToBytes(text)
	if err != nil {
		return nil, ethlerr.Wrap(err, "field %s", key)
	}
	return b, nil
}

func parseAccessList(tuples []accessTupleText) (AccessList, error) {
	al := make(AccessList, 0, len(tuples))
	for i, tuple := range tuples {
		addr, err := HexToAddress(tuple.Address)
		if err != nil {
			return nil, ethlerr.Wrap(err, "access list entry %d", i)
		}

		keys := make([]Hash, 0, len(tuple.StorageKeys))
		for j, k := range tuple.StorageKeys {
			h, err := HexToHash(k)
			if err != nil {
				return nil, ethlerr.Wrap(err, "access list entry %d key %d", i, j)
			}
			keys = append(keys, h)
		}
		al = append(al, AccessTuple{Address: addr, StorageKeys: keys})
	}
	return al, nil
}

type jsonRecord map[string]json.RawMessage

func (r jsonRecord) scalar(key string) (string, bool, error) {
	raw, ok := r[key]
	if !ok {
		return "", false, nil
	}
	raw = bytes.TrimSpace(raw)

	switch {
	case bytes.Equal(raw, []byte("null")):
		return "", false, nil
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, ethlerr.Wrap(ethlerr.WithCause(ethlerr.ErrInvalidInput, err), "field %s", key)
		}
		return s, true, nil
	case len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')):
		return string(raw), true, nil
	}

	return "", false, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
		"field":  key,
		"reason": "expected a number or string",
	})
}

func (r jsonRecord) accessList(key string) ([]accessTupleText, bool, error) {
	raw, ok := r[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false, nil
	}

	var tuples []accessTupleText
	if err := json.Unmarshal(raw, &tuples); err != nil {
		return nil, false, ethlerr.Wrap(ethlerr.WithCause(ethlerr.ErrInvalidInput, err), "field %s", key)
	}
	return tuples, true, nil
}

type yamlRecord map[string]*yaml.Node

func (r yamlRecord) scalar(key string) (string, bool, error) {
	node, ok := r[key]
	if !ok || node.Tag == "!!null" {
		return "", false, nil
	}
	if node.Kind != yaml.ScalarNode {
		return "", false, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"field":  key,
			"reason": "expected a scalar",
			"line":   fmt.Sprint(node.Line),
		})
	}
	return node.Value, true, nil
}

func (r yamlRecord) accessList(key string) ([]accessTupleText, bool, error) {
	node, ok := r[key]
	if !ok || node.Tag == "!!null" {
		return nil, false, nil
	}

	var tuples []accessTupleText
	if err := node.Decode(&tuples); err != nil {
		return nil, false, ethlerr.Wrap(ethlerr.WithCause(ethlerr.ErrInvalidInput, err), "field %s", key)
	}
	if tuples == nil {
		tuples = []accessTupleText{}
	}
	return tuples, true, nil
}

// LoadFields reads a single transaction record from a .json, .yaml or .yml file.
func LoadFields(path string) (*Fields, error) {
	var f Fields
	if err := loadDocument(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadBatch reads a list of transaction records from a .json, .yaml or .yml file.
func LoadBatch(path string) ([]Fields, error) {
	var batch []Fields
	if err := loadDocument(path, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func loadDocument(path string, out any) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the user
	if err != nil {
		return ethlerr.Wrap(ethlerr.WithCause(ethlerr.ErrInvalidInput, err), "reading %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		var ee *ethlerr.EthliteError
		if !ethlerr.As(err, &ee) {
			err = ethlerr.WithCause(ethlerr.ErrInvalidInput, err)
		}
		return ethlerr.Wrap(err, "parsing %s", path)
	}
	return nil
}
