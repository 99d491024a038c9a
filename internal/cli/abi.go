package cli

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/eth/abi"
)

// abiCmd is the parent command for ABI operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var abiCmd = &cobra.Command{
	Use:     "abi",
	Short:   "Contract ABI encoding",
	GroupID: groupEncoding,
	Long:    `Compute function selectors and encode contract call data.`,
}

// abiSelectorCmd prints a function selector.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var abiSelectorCmd = &cobra.Command{
	Use:     "selector <signature>",
	Short:   "Compute a function selector",
	Long:    `Print the first four bytes of the Keccak-256 hash of a function signature.`,
	Example: `  ethlite abi selector "transfer(address,uint256)"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runABISelector,
}

// abiEncodeCmd encodes call data.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var abiEncodeCmd = &cobra.Command{
	Use:   "encode <signature> [args...]",
	Short: "Encode function call data",
	Long: `Encode arguments for a function signature.

Supported types are uint256 (uint), address, bool, bytes1..bytes32, bytes,
string and arrays of the static types (e.g. uint256[]). Integers may be
decimal or 0x hex. Array arguments are JSON arrays.`,
	Example: `  ethlite abi encode "transfer(address,uint256)" 0x3535353535353535353535353535353535353535 1000
  ethlite abi encode "setValues(uint256[])" '[1,2,3]' --args-only`,
	Args: cobra.MinimumNArgs(1),
	RunE: runABIEncode,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var abiArgsOnly bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(abiCmd)
	abiCmd.AddCommand(abiSelectorCmd)
	abiCmd.AddCommand(abiEncodeCmd)

	abiEncodeCmd.Flags().BoolVar(&abiArgsOnly, "args-only", false, "omit the 4-byte selector")
}

// ABISelectorResponse is the JSON shape of abi selector.
type ABISelectorResponse struct {
	Signature string `json:"signature"`
	Selector  string `json:"selector"`
}

// String is the text form: the bare selector.
func (r ABISelectorResponse) String() string { return r.Selector }

// ABIEncodeResponse is the JSON shape of abi encode.
type ABIEncodeResponse struct {
	Signature string `json:"signature"`
	Selector  string `json:"selector,omitempty"`
	Data      string `json:"data"`
}

// String is the text form: the encoded data only, ready to paste.
func (r ABIEncodeResponse) String() string { return r.Data }

func runABISelector(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	return render(cmd, cc, ABISelectorResponse{Signature: args[0], Selector: abi.SelectorHex(args[0])})
}

func runABIEncode(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	signature, data, err := encodeCallData(args[0], args[1:], !abiArgsOnly)
	if err != nil {
		return err
	}
	cc.logger().Debug("abi encode %s: %d bytes", signature, len(data))

	resp := ABIEncodeResponse{Signature: signature, Data: hexutil.Encode(data)}
	if !abiArgsOnly {
		resp.Selector = abi.SelectorHex(signature)
	}

	return render(cmd, cc, resp)
}

// encodeCallData parses a signature and its command-line arguments and
// returns the canonical signature with the encoded data.
func encodeCallData(signature string, rawArgs []string, withSelector bool) (string, []byte, error) {
	canonical, types, err := abi.ParseSignature(signature)
	if err != nil {
		return "", nil, err
	}

	values, err := parseABIArgs(types, rawArgs)
	if err != nil {
		return "", nil, err
	}

	var data []byte
	if withSelector {
		data, err = abi.EncodeFunctionCall(canonical, types, values)
	} else {
		data, err = abi.EncodeArguments(types, values)
	}
	if err != nil {
		return "", nil, err
	}
	return canonical, data, nil
}

// parseABIArgs turns command-line strings into encoder values. Array
// arguments are decoded from JSON; scalars are passed as text and parsed by
// the encoder. Arity is checked by the encoder.
func parseABIArgs(types, rawArgs []string) ([]any, error) {
	values := make([]any, len(rawArgs))
	for i, raw := range rawArgs {
		values[i] = raw
		if i >= len(types) {
			continue
		}

		t, err := abi.ParseType(types[i])
		if err != nil {
			return nil, err
		}
		if t.Kind != abi.Array {
			continue
		}

		v, err := decodeJSONValue(raw)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
