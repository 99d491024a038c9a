package cli

import (
	"io"
	"log/slog"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	ethtypes "github.com/ananthanir/ethlite/internal/eth/types"
	"github.com/ananthanir/ethlite/internal/fileutil"
	"github.com/ananthanir/ethlite/internal/output"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// txFile is the transaction record (.json, .yaml or .yml).
	txFile string
	// txKeyFile holds the hex private key.
	txKeyFile string
	// txEIP155 selects the standard legacy v offset.
	txEIP155 bool
	// txOut receives the signed raw transaction.
	txOut string
)

// txCmd is the parent command for transaction operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txCmd = &cobra.Command{
	Use:     "tx",
	Short:   "Serialize, sign and send transactions",
	GroupID: groupTransactions,
	Long: `Build raw transactions from a JSON or YAML record.

The record keys are nonce, gasPrice, maxPriorityFeePerGas, maxFeePerGas,
gas, to, value, data, chainId and accessList. Giving both fee caps selects
an EIP-1559 transaction; otherwise an accessList (even an empty one)
selects EIP-2930; otherwise the transaction is legacy.`,
}

// txSerializeCmd prints the unsigned raw transaction.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txSerializeCmd = &cobra.Command{
	Use:     "serialize",
	Short:   "Serialize an unsigned transaction",
	Long:    `Serialize a transaction record with zero signature values.`,
	Example: `  ethlite tx serialize --file tx.json`,
	Args:    cobra.NoArgs,
	RunE:    runTxSerialize,
}

// txSignCmd signs a transaction.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a transaction",
	Long: `Sign a transaction record and print the raw transaction.

The private key is read from --key-file, then the ETHLITE_PRIVATE_KEY
environment variable, then an interactive prompt.

Legacy transactions use v = recid + chainId*2 + 8 unless --eip155 (or
signing.eip155_legacy_v in the config) selects the standard offset of 35.`,
	Example: `  ethlite tx sign --file tx.json --key-file key.hex
  ethlite tx sign --file legacy.yaml --eip155 --out signed.txt`,
	Args: cobra.NoArgs,
	RunE: runTxSign,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txSerializeCmd)
	txCmd.AddCommand(txSignCmd)

	txSerializeCmd.Flags().StringVarP(&txFile, "file", "f", "", "transaction record file (required)")
	_ = txSerializeCmd.MarkFlagRequired("file")

	txSignCmd.Flags().StringVarP(&txFile, "file", "f", "", "transaction record file (required)")
	txSignCmd.Flags().StringVar(&txKeyFile, "key-file", "", "file holding the hex private key")
	txSignCmd.Flags().BoolVar(&txEIP155, "eip155", false, "use the EIP-155 legacy v offset (35)")
	txSignCmd.Flags().StringVar(&txOut, "out", "", "also write the raw transaction to this file")
	_ = txSignCmd.MarkFlagRequired("file")
}

// TxSerializeResponse is the result of tx serialize.
type TxSerializeResponse struct {
	Type        string `json:"type"`
	ChainID     string `json:"chain_id"`
	SigningHash string `json:"signing_hash"`
	Raw         string `json:"raw"`
}

// RenderText implements output.TextRenderer.
func (r TxSerializeResponse) RenderText(w io.Writer, colored bool) error {
	output.RenderFields(w, colored, []output.Field{
		{Key: "Type", Value: r.Type},
		{Key: "Chain ID", Value: r.ChainID},
		{Key: "Signing hash", Value: r.SigningHash},
		{Key: "Raw", Value: r.Raw},
	})
	return nil
}

// TxSignResponse is the result of tx sign.
type TxSignResponse struct {
	Type    string `json:"type"`
	ChainID string `json:"chain_id"`
	From    string `json:"from"`
	Hash    string `json:"hash"`
	V       string `json:"v"`
	R       string `json:"r"`
	S       string `json:"s"`
	Raw     string `json:"raw"`
}

// RenderText implements output.TextRenderer.
func (r TxSignResponse) RenderText(w io.Writer, colored bool) error {
	output.RenderFields(w, colored, r.fields())
	return nil
}

func (r TxSignResponse) fields() []output.Field {
	return []output.Field{
		{Key: "Type", Value: r.Type},
		{Key: "Chain ID", Value: r.ChainID},
		{Key: "From", Value: r.From},
		{Key: "Hash", Value: r.Hash},
		{Key: "V", Value: r.V},
		{Key: "R", Value: r.R},
		{Key: "S", Value: r.S},
		{Key: "Raw", Value: r.Raw},
	}
}

func runTxSerialize(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	fields, err := loadTxFields(cc, txFile)
	if err != nil {
		return err
	}
	tx, err := fields.TxData()
	if err != nil {
		return err
	}
	raw, err := ethtypes.Serialize(fields)
	if err != nil {
		return err
	}

	hash := ethtypes.SigningHash(tx)
	cc.logger().Debug("serialized %s transaction: %d bytes", ethtypes.TypeName(tx.Type()), len(raw))

	return render(cmd, cc, TxSerializeResponse{
		Type:        ethtypes.TypeName(tx.Type()),
		ChainID:     tx.ChainID().String(),
		SigningHash: hexutil.Encode(hash[:]),
		Raw:         hexutil.Encode(raw),
	})
}

func runTxSign(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	fields, err := loadTxFields(cc, txFile)
	if err != nil {
		return err
	}

	signed, err := signFields(cmd, cc, fields, txKeyFile, txEIP155)
	if err != nil {
		return err
	}

	if txOut != "" {
		if err := fileutil.WriteAtomic(txOut, []byte(signed.Hex()+"\n"), 0o644); err != nil {
			return ethlerr.Wrap(err, "writing %s", txOut)
		}
		cc.logger().Debug("raw transaction written to %s", txOut)
	}

	return render(cmd, cc, newTxSignResponse(fields, signed))
}

// loadTxFields reads a record and fills in the configured chain ID when the
// record has none.
func loadTxFields(cc *CommandContext, path string) (*ethtypes.Fields, error) {
	fields, err := ethtypes.LoadFields(path)
	if err != nil {
		return nil, err
	}
	applyChainDefault(cc, fields)
	cc.logger().Debug("loaded %s: %s transaction", path, ethtypes.TypeName(fields.Type()))
	return fields, nil
}

func applyChainDefault(cc *CommandContext, fields *ethtypes.Fields) {
	if fields.ChainID == nil && cc.Cfg != nil && cc.Cfg.GetChainID() != 0 {
		fields.ChainID = new(big.Int).SetUint64(cc.Cfg.GetChainID())
	}
}

// txSigner picks the legacy v offset from the flag and configuration.
func txSigner(cc *CommandContext, eip155 bool) ethtypes.Signer {
	if eip155 || (cc.Cfg != nil && cc.Cfg.UseEIP155LegacyV()) {
		return ethtypes.NewEIP155Signer()
	}
	return ethtypes.NewSigner()
}

// signFields loads the private key, signs fields and destroys the key.
func signFields(
	cmd *cobra.Command,
	cc *CommandContext,
	fields *ethtypes.Fields,
	keyFile string,
	eip155 bool,
) (*ethtypes.SignedTx, error) {
	key, _, err := loadPrivateKey(cmd, cc, keyFile)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	signer := txSigner(cc, eip155)
	warnCompatOffset(cmd, cc, signer, fields.Type())

	signed, err := signer.Sign(fields, key.Bytes())
	cc.metrics().RecordSign(err)
	if err != nil {
		cc.logger().Error("signing failed: %v", err)
		return nil, err
	}

	cc.logger().DebugAttrs("signed transaction",
		slog.String("type", ethtypes.TypeName(signed.Type())),
		slog.String("hash", signed.Hash().Hex()),
		slog.String("from", signed.From.String()),
		slog.Int("bytes", len(signed.Raw)))
	return signed, nil
}

func warnCompatOffset(cmd *cobra.Command, cc *CommandContext, signer ethtypes.Signer, txType byte) {
	if txType != ethtypes.LegacyTxType || signer.LegacyVOffset != ethtypes.CompatLegacyVOffset {
		return
	}
	warn(cmd, cc, "legacy v uses offset %d, not the EIP-155 offset %d; pass --eip155 for standard replay protection",
		ethtypes.CompatLegacyVOffset, ethtypes.EIP155LegacyVOffset)
}

func newTxSignResponse(fields *ethtypes.Fields, signed *ethtypes.SignedTx) TxSignResponse {
	chainID := strconv.Itoa(ethtypes.DefaultChainID)
	if fields.ChainID != nil {
		chainID = fields.ChainID.String()
	}
	return TxSignResponse{
		Type:    ethtypes.TypeName(signed.Type()),
		ChainID: chainID,
		From:    signed.From.String(),
		Hash:    signed.Hash().Hex(),
		V:       hexutil.EncodeBig(signed.V),
		R:       hexutil.EncodeBig(signed.R),
		S:       hexutil.EncodeBig(signed.S),
		Raw:     signed.Hex(),
	}
}
