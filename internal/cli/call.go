package cli

import (
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/eth/rpc"
	ethtypes "github.com/ananthanir/ethlite/internal/eth/types"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// callTimeout bounds an eth_call including retries.
const callTimeout = time.Minute

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	callTo    string
	callFrom  string
	callBlock string
	callRPC   string
)

// callCmd runs eth_call.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var callCmd = &cobra.Command{
	Use:     "call <signature> [args...]",
	Short:   "Call a contract function without a transaction",
	GroupID: groupTransactions,
	Long: `Encode a function call and run it with eth_call.

Arguments follow the same rules as "abi encode". The raw return data is
printed as hex.`,
	Example: `  ethlite call --to 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 "balanceOf(address)" 0x3535353535353535353535353535353535353535
  ethlite call --to 0x... "totalSupply()" --block 0x10d4f`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCall,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVar(&callTo, "to", "", "contract address (required)")
	callCmd.Flags().StringVar(&callFrom, "from", "", "sender address")
	callCmd.Flags().StringVar(&callBlock, "block", "latest", "block number or tag")
	callCmd.Flags().StringVar(&callRPC, "rpc", "", "JSON-RPC endpoint (default from config)")
	_ = callCmd.MarkFlagRequired("to")
}

// CallResponse is the result of call.
type CallResponse struct {
	To        string `json:"to"`
	Signature string `json:"signature"`
	Data      string `json:"data"`
	Block     string `json:"block"`
	Result    string `json:"result"`
}

// RenderText implements output.TextRenderer.
func (r CallResponse) RenderText(w io.Writer, _ bool) error {
	outln(w, r.Result)
	return nil
}

func runCall(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithTimeout(cmd, callTimeout)
	defer cancel()

	to, err := parseAddressFlag("to", callTo)
	if err != nil {
		return err
	}

	signature, data, err := encodeCallData(args[0], args[1:], true)
	if err != nil {
		return err
	}

	msg := rpc.CallMsg{To: to, Data: data}
	if callFrom != "" {
		from, err := parseAddressFlag("from", callFrom)
		if err != nil {
			return err
		}
		msg.From = &from
	}

	client, err := cc.dial(rpcEndpoint(cc, callRPC))
	if err != nil {
		return err
	}
	defer client.Close()

	cc.logger().Debug("eth_call %s on %s via %s", signature, to.String(), client.URL())
	result, err := client.EthCall(ctx, msg, callBlock)
	if err != nil {
		return err
	}

	return render(cmd, cc, CallResponse{
		To:        to.String(),
		Signature: signature,
		Data:      hexutil.Encode(data),
		Block:     callBlock,
		Result:    result,
	})
}

// parseAddressFlag validates a 0x-prefixed 20-byte address flag.
func parseAddressFlag(name, value string) (ethtypes.Address, error) {
	if !common.IsHexAddress(value) {
		return ethtypes.Address{}, ethlerr.WithSuggestion(
			ethlerr.WithDetails(ethlerr.ErrInvalidAddress, map[string]string{"flag": name, "value": value}),
			"addresses are 40 hex digits with a 0x prefix",
		)
	}
	return ethtypes.HexToAddress(value)
}
