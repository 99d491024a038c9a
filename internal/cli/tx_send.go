package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/spf13/cobra"

	ethtypes "github.com/ananthanir/ethlite/internal/eth/types"
	"github.com/ananthanir/ethlite/internal/output"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// sendTimeout bounds signing plus broadcast, including retries.
const sendTimeout = 2 * time.Minute

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// txRPC overrides the configured endpoint.
	txRPC string
	// txSkipChainCheck skips comparing the node's chain ID with the record's.
	txSkipChainCheck bool
)

// txSendCmd signs and broadcasts a transaction.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and broadcast a transaction",
	Long: `Sign a transaction record and submit it with eth_sendRawTransaction.

The node's chain ID is compared with the record's before broadcasting.`,
	Example: `  ethlite tx send --file tx.json --key-file key.hex
  ethlite tx send --file tx.json --rpc https://rpc.example.org --eip155`,
	Args: cobra.NoArgs,
	RunE: runTxSend,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	txCmd.AddCommand(txSendCmd)

	txSendCmd.Flags().StringVarP(&txFile, "file", "f", "", "transaction record file (required)")
	txSendCmd.Flags().StringVar(&txKeyFile, "key-file", "", "file holding the hex private key")
	txSendCmd.Flags().BoolVar(&txEIP155, "eip155", false, "use the EIP-155 legacy v offset (35)")
	txSendCmd.Flags().StringVar(&txRPC, "rpc", "", "JSON-RPC endpoint (default from config)")
	txSendCmd.Flags().BoolVar(&txSkipChainCheck, "skip-chain-check", false, "do not compare the node's chain ID")
	_ = txSendCmd.MarkFlagRequired("file")
}

// TxSendResponse is the result of tx send.
type TxSendResponse struct {
	TxSignResponse

	TxHash string `json:"tx_hash"`
	RPC    string `json:"rpc"`
}

// RenderText implements output.TextRenderer.
func (r TxSendResponse) RenderText(w io.Writer, colored bool) error {
	fields := append(r.fields(),
		output.Field{Key: "Node", Value: r.RPC},
		output.Field{Key: "Tx hash", Value: r.TxHash},
	)
	output.RenderFields(w, colored, fields)
	return nil
}

func runTxSend(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithTimeout(cmd, sendTimeout)
	defer cancel()

	fields, err := loadTxFields(cc, txFile)
	if err != nil {
		return err
	}

	client, err := cc.dial(rpcEndpoint(cc, txRPC))
	if err != nil {
		return err
	}
	defer client.Close()

	if !txSkipChainCheck {
		if err := checkChainID(ctx, client, fields); err != nil {
			return err
		}
	}

	signed, err := signFields(cmd, cc, fields, txKeyFile, txEIP155)
	if err != nil {
		return err
	}

	cc.logger().Debug("broadcasting %s to %s", signed.Hash().Hex(), client.URL())
	txHash, err := client.SendRawTransaction(ctx, signed.Hex())
	if err != nil {
		cc.logger().Error("broadcast of %s failed: %v", signed.Hash().Hex(), err)
		return err
	}

	if !strings.EqualFold(txHash, signed.Hash().Hex()) {
		warn(cmd, cc, "node returned hash %s, expected %s", txHash, signed.Hash().Hex())
	}
	cc.logger().DebugAttrs("node accepted transaction", slog.String("hash", txHash), slog.String("rpc", client.URL()))

	return render(cmd, cc, TxSendResponse{
		TxSignResponse: newTxSignResponse(fields, signed),
		TxHash:         txHash,
		RPC:            client.URL(),
	})
}

// rpcEndpoint returns the flag value or the configured endpoint.
func rpcEndpoint(cc *CommandContext, flag string) string {
	if flag != "" {
		return flag
	}
	if cc.Cfg != nil {
		return cc.Cfg.GetRPCURL()
	}
	return ""
}

// checkChainID fails with ErrChainMismatch when the node serves a different
// chain than the transaction is bound to.
func checkChainID(ctx context.Context, reader ChainReader, fields *ethtypes.Fields) error {
	want := big.NewInt(ethtypes.DefaultChainID)
	if fields.ChainID != nil {
		want = fields.ChainID
	}

	got, err := reader.ChainID(ctx)
	if err != nil {
		return err
	}
	if got.Cmp(want) != 0 {
		return ethlerr.WithSuggestion(
			ethlerr.WithDetails(ethlerr.ErrChainMismatch, map[string]string{
				"node":        got.String(),
				"transaction": want.String(),
			}),
			fmt.Sprintf("set chainId to %s or use --skip-chain-check", got.String()),
		)
	}
	return nil
}
