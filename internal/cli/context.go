package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/config"
	"github.com/ananthanir/ethlite/internal/eth/rpc"
	"github.com/ananthanir/ethlite/internal/metrics"
	"github.com/ananthanir/ethlite/internal/output"
)

// Dialer opens an RPC client for the given endpoint.
type Dialer func(endpoint string, cp ConfigProvider) (RPCClient, error)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Cfg     ConfigProvider
	Log     LogWriter
	Fmt     FormatProvider
	Metrics *metrics.Metrics
	Dial    Dialer
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) *CommandContext {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = config.NullLogger()
	}
	if formatter == nil {
		formatter = output.NewFormatter(output.FormatText, os.Stdout)
	}
	return &CommandContext{
		Cfg:     cfg,
		Log:     logger,
		Fmt:     formatter,
		Metrics: metrics.Global,
		Dial:    dialRPC,
	}
}

// WithDialer sets the RPC dialer.
func (c *CommandContext) WithDialer(d Dialer) *CommandContext {
	c.Dial = d
	return c
}

// logger returns the configured logger or a discarding one.
func (c *CommandContext) logger() LogWriter {
	if c.Log == nil {
		return config.NullLogger()
	}
	return c.Log
}

func (c *CommandContext) metrics() *metrics.Metrics {
	if c.Metrics == nil {
		return metrics.Global
	}
	return c.Metrics
}

func (c *CommandContext) dial(endpoint string) (RPCClient, error) {
	if c.Dial == nil {
		return dialRPC(endpoint, c.Cfg)
	}
	return c.Dial(endpoint, c.Cfg)
}

type cmdContextKey struct{}

// SetCmdContext attaches cc to the command's context.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext returns the command's CommandContext, falling back to one
// built from the package globals.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(cmdContextKey{}).(*CommandContext); ok && cc != nil {
			return cc
		}
	}
	return NewCommandContext(cfg, logger, formatter)
}

// dialRPC builds a rate-limited, retrying client from the RPC settings.
func dialRPC(endpoint string, cp ConfigProvider) (RPCClient, error) {
	u, err := config.ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	settings := config.Defaults().RPC
	if cp != nil {
		settings = cp.GetRPC()
	}

	retry := rpc.DefaultRetryConfig()
	if settings.MaxAttempts > 0 {
		retry.MaxAttempts = settings.MaxAttempts
	}

	opts := []rpc.Option{
		rpc.WithRetryConfig(retry),
		rpc.WithRateLimiter(rpc.NewRateLimiter(settings.RatePerSecond, settings.Burst)),
	}
	if settings.TimeoutSeconds > 0 {
		opts = append(opts, rpc.WithTimeout(time.Duration(settings.TimeoutSeconds)*time.Second))
	}

	return rpc.NewClient(u.String(), opts...), nil
}

// baseContext returns the command's context, falling back to Background.
func baseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// contextWithTimeout bounds the command's context by d.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(baseContext(cmd), d)
}
