package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	ethtypes "github.com/ananthanir/ethlite/internal/eth/types"
	"github.com/ananthanir/ethlite/internal/fileutil"
	"github.com/ananthanir/ethlite/internal/output"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// defaultBatchWorkers is used when neither --workers nor the config set one.
const defaultBatchWorkers = 4

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var batchWorkers int

// txBatchCmd signs a list of transactions.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Sign a list of transactions",
	Long: `Sign every record in a JSON or YAML list with one key.

Records are signed concurrently; output keeps the input order. The batch
stops at the first record that fails.`,
	Example: `  ethlite tx batch --file txs.yaml --key-file key.hex
  ethlite tx batch --file txs.json --workers 8 --out signed.txt`,
	Args: cobra.NoArgs,
	RunE: runTxBatch,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	txCmd.AddCommand(txBatchCmd)

	txBatchCmd.Flags().StringVarP(&txFile, "file", "f", "", "list of transaction records (required)")
	txBatchCmd.Flags().StringVar(&txKeyFile, "key-file", "", "file holding the hex private key")
	txBatchCmd.Flags().BoolVar(&txEIP155, "eip155", false, "use the EIP-155 legacy v offset (35)")
	txBatchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent signers (default from config)")
	txBatchCmd.Flags().StringVar(&txOut, "out", "", "write raw transactions to this file, one per line")
	_ = txBatchCmd.MarkFlagRequired("file")
}

// TxBatchItem is one signed record of a batch.
type TxBatchItem struct {
	Index int `json:"index"`
	TxSignResponse
}

// TxBatchResponse is the result of tx batch.
type TxBatchResponse struct {
	Count        int           `json:"count"`
	Transactions []TxBatchItem `json:"transactions"`
}

// RenderText implements output.TextRenderer.
func (r TxBatchResponse) RenderText(w io.Writer, colored bool) error {
	tbl := output.NewTable(w, colored, "#", "Type", "Chain", "From", "Hash")
	for _, item := range r.Transactions {
		tbl.AddRow(item.Index, item.Type, item.ChainID, item.From, item.Hash)
	}
	tbl.Print()

	_, err := fmt.Fprintln(w)
	for _, item := range r.Transactions {
		if err != nil {
			break
		}
		_, err = fmt.Fprintf(w, "%d %s\n", item.Index, item.Raw)
	}
	return err
}

func runTxBatch(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	batch, err := ethtypes.LoadBatch(txFile)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return ethlerr.WithSuggestion(ethlerr.ErrInvalidInput, fmt.Sprintf("%s contains no transactions", txFile))
	}
	for i := range batch {
		applyChainDefault(cc, &batch[i])
	}

	key, _, err := loadPrivateKey(cmd, cc, txKeyFile)
	if err != nil {
		return err
	}
	defer key.Destroy()

	signer := txSigner(cc, txEIP155)
	for i := range batch {
		if batch[i].Type() == ethtypes.LegacyTxType {
			warnCompatOffset(cmd, cc, signer, ethtypes.LegacyTxType)
			break
		}
	}

	workers := resolveWorkers(cc, batchWorkers)
	cc.logger().Debug("signing %d transactions with %d workers", len(batch), workers)

	items, err := signBatch(cmd, cc, signer, batch, key.Bytes(), workers)
	if err != nil {
		return err
	}

	if txOut != "" {
		if err := writeBatchRaw(txOut, items); err != nil {
			return err
		}
	}

	return render(cmd, cc, TxBatchResponse{Count: len(items), Transactions: items})
}

// signBatch signs records concurrently with at most workers goroutines and
// returns the results in input order. The first failure cancels the rest.
func signBatch(
	cmd *cobra.Command,
	cc *CommandContext,
	signer ethtypes.Signer,
	batch []ethtypes.Fields,
	key []byte,
	workers int,
) ([]TxBatchItem, error) {
	items := make([]TxBatchItem, len(batch))

	g, gctx := errgroup.WithContext(baseContext(cmd))
	g.SetLimit(workers)

	for i := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			signed, err := signer.Sign(&batch[i], key)
			cc.metrics().RecordSign(err)
			if err != nil {
				return ethlerr.Wrap(err, "transaction %d", i)
			}

			items[i] = TxBatchItem{Index: i, TxSignResponse: newTxSignResponse(&batch[i], signed)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		cc.logger().Error("batch signing failed: %v", err)
		return nil, err
	}
	return items, nil
}

// resolveWorkers prefers the flag, then the config, then the default.
func resolveWorkers(cc *CommandContext, flag int) int {
	if flag > 0 {
		return flag
	}
	if cc.Cfg != nil && cc.Cfg.GetBatchWorkers() > 0 {
		return cc.Cfg.GetBatchWorkers()
	}
	return defaultBatchWorkers
}

func writeBatchRaw(path string, items []TxBatchItem) error {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(item.Raw)
		sb.WriteByte('\n')
	}
	if err := fileutil.WriteAtomic(path, []byte(sb.String()), 0o644); err != nil {
		return ethlerr.Wrap(err, "writing %s", path)
	}
	return nil
}
