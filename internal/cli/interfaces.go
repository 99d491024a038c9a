package cli

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ananthanir/ethlite/internal/config"
	"github.com/ananthanir/ethlite/internal/eth/rpc"
	"github.com/ananthanir/ethlite/internal/output"
)

// Compile-time interface checks.
var (
	_ ConfigProvider = (*config.Config)(nil)
	_ LogWriter      = (*config.Logger)(nil)
	_ FormatProvider = (*output.Formatter)(nil)
	_ RPCClient      = (*rpc.Client)(nil)
)

// ConfigProvider is the read-only view of the configuration commands use.
type ConfigProvider interface {
	// GetHome returns the ethlite home directory path.
	GetHome() string

	// GetRPCURL returns the JSON-RPC endpoint.
	GetRPCURL() string

	// GetRPC returns the RPC transport settings.
	GetRPC() config.RPCConfig

	// GetChainID returns the chain ID filled into records that omit one.
	GetChainID() uint64

	// UseEIP155LegacyV reports whether legacy signatures use the EIP-155 v offset.
	UseEIP155LegacyV() bool

	// GetBatchWorkers returns the number of concurrent batch signers.
	GetBatchWorkers() int

	// IsVerbose returns true if verbose output is enabled.
	IsVerbose() bool
}

// LogWriter is the logging surface of *config.Logger.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	// DebugAttrs logs a debug-level record with key/value attributes.
	DebugAttrs(msg string, attrs ...slog.Attr)

	// Close closes the logger and releases resources.
	Close() error
}

// FormatProvider exposes the resolved output settings.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format

	// Color reports whether text output may use ANSI colors.
	Color() bool
}

// Broadcaster submits signed transactions to a node.
type Broadcaster interface {
	SendRawTransaction(ctx context.Context, rawHex string) (string, error)
}

// Caller executes read-only contract calls.
type Caller interface {
	EthCall(ctx context.Context, msg rpc.CallMsg, block string) (string, error)
}

// ChainReader reports the chain a node serves.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

//go:generate mockgen -destination=mock_rpc_test.go -package=cli . RPCClient

// RPCClient is the node surface used by the send and call commands.
type RPCClient interface {
	Broadcaster
	Caller
	ChainReader

	URL() string
	Close()
}
