package cli

import (
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/eth/rlp"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// rlpCmd is the parent command for RLP operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var rlpCmd = &cobra.Command{
	Use:     "rlp",
	Short:   "Recursive Length Prefix encoding",
	GroupID: groupEncoding,
	Long:    `Encode values with Ethereum's Recursive Length Prefix serialization.`,
}

// rlpEncodeCmd encodes a JSON value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var rlpEncodeCmd = &cobra.Command{
	Use:   "encode <json>",
	Short: "Encode a JSON value as RLP",
	Long: `Encode a JSON value as RLP hex.

Numbers become minimal big-endian integers, "0x" strings are hex bytes,
other strings are UTF-8 bytes, true/false are 1/0, null is the empty
string and arrays are lists.`,
	Example: `  ethlite rlp encode '"dog"'
  ethlite rlp encode '["cat", "dog"]'
  ethlite rlp encode '[1024, "0x", [[], [[]]]]'`,
	Args: cobra.ExactArgs(1),
	RunE: runRLPEncode,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(rlpCmd)
	rlpCmd.AddCommand(rlpEncodeCmd)
}

// RLPEncodeResponse is the JSON shape of rlp encode.
type RLPEncodeResponse struct {
	RLP    string `json:"rlp"`
	Length int    `json:"length"`
}

func (r RLPEncodeResponse) String() string { return r.RLP }

func runRLPEncode(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	value, err := decodeJSONValue(args[0])
	if err != nil {
		return err
	}

	item, err := rlp.ToItem(value)
	if err != nil {
		return err
	}
	encoded := rlp.Encode(item)
	cc.logger().Debug("rlp encode: %d bytes", len(encoded))

	return render(cmd, cc, RLPEncodeResponse{RLP: hexutil.Encode(encoded), Length: len(encoded)})
}

var errTrailingJSON = errors.New("trailing data after JSON value")

// decodeJSONValue parses a JSON document keeping integers exact.
func decodeJSONValue(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, jsonInputError(text, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, jsonInputError(text, errTrailingJSON)
	}
	return normalizeJSON(v)
}

// normalizeJSON converts json.Number to *big.Int and rejects objects and
// fractional numbers.
func normalizeJSON(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		n, ok := new(big.Int).SetString(val.String(), 10)
		if !ok {
			return nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
				"reason": "numbers must be integers",
				"value":  val.String(),
			})
		}
		return n, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalizeJSON(elem)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		return nil, ethlerr.WithDetails(ethlerr.ErrInvalidInput, map[string]string{
			"reason": "objects cannot be RLP encoded",
		})
	}
	return v, nil
}

func jsonInputError(text string, err error) error {
	preview := text
	if len(preview) > 64 {
		preview = preview[:64] + "..."
	}
	return ethlerr.WithSuggestion(
		ethlerr.WithDetails(ethlerr.WithCause(ethlerr.ErrInvalidInput, err), map[string]string{"input": preview}),
		`quote the argument, e.g. '["cat","dog"]'`,
	)
}
