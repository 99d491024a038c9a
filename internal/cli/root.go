// Package cli implements the ethlite command-line interface.
//
// Command state lives in package globals set up by PersistentPreRunE and
// released in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/config"
	"github.com/ananthanir/ethlite/internal/output"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	noColor      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter

	helpOnce sync.Once
)

// Command groups shown in root help.
const (
	groupEncoding     = "encoding"
	groupTransactions = "transactions"
	groupConfig       = "config"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ethlite",
	Short: "Encode, sign and broadcast Ethereum transactions",
	Long: `Ethlite is a small toolkit for Ethereum wire formats.

It encodes RLP and ABI call data, serializes and signs legacy (EIP-155),
access list (EIP-2930) and dynamic fee (EIP-1559) transactions, and
submits them to a JSON-RPC node.`,
	Example: `  ethlite abi encode "transfer(address,uint256)" 0x3535353535353535353535353535353535353535 1000
  ethlite tx sign --file tx.json --key-file key.hex
  ethlite tx send --file tx.json --key-file key.hex --rpc http://127.0.0.1:8545`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initGlobals(); err != nil {
			return err
		}
		SetCmdContext(cmd, NewCommandContext(cfg, logger, formatter))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		cc := GetCmdContext(cmd)
		if attrs := cc.metrics().Snapshot().Attrs(); len(attrs) > 0 {
			cc.logger().DebugAttrs("run metrics", attrs...)
		}
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	helpOnce.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = formatter.FormatError(os.Stderr, err)
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return ethlerr.ExitCode(err)
}

// initGlobals loads the configuration, layers the environment and flags on
// top, and builds the logger and formatter from the result.
func initGlobals() error {
	home := resolveHome()

	var err error
	if cfg, err = loadOrDefault(home); err != nil {
		return err
	}
	config.ApplyEnvironment(cfg)
	applyFlagOverrides(cfg)

	if err = cfg.Validate(); err != nil {
		return err
	}

	logger = newLogger(cfg)

	format := output.DetectFormat(os.Stdout, output.ParseFormat(cfg.Output.DefaultFormat))
	formatter = output.NewFormatter(format, os.Stdout).
		WithColor(output.ColorEnabled(cfg.Output.Color, os.Stdout))

	logger.Debug("ethlite home %s, rpc %s, chain %d", cfg.Home, cfg.RPC.URL, cfg.Chain.ID)
	return nil
}

// newLogger opens the configured log file. Verbose runs without a log file
// log to stderr instead.
func newLogger(c *config.Config) *config.Logger {
	level := config.ParseLogLevel(c.Logging.Level)

	var l *config.Logger
	if c.Logging.File == "" && c.Output.Verbose {
		l = config.NewWriterLogger(level, os.Stderr)
	} else {
		var err error
		if l, err = config.NewLogger(level, config.ExpandHome(c.Logging.File)); err != nil {
			return config.NullLogger()
		}
	}
	l.SetJSONOutput(strings.EqualFold(c.Logging.Format, "json"))
	return l
}

// resolveHome picks the data directory: --home, then ETHLITE_HOME, then ~/.ethlite.
func resolveHome() string {
	for _, h := range []string{homeDir, os.Getenv(config.EnvHome)} {
		if h != "" {
			return config.ExpandHome(h)
		}
	}
	return config.ExpandHome(config.DefaultHome())
}

// loadOrDefault reads home's config file. A missing file yields defaults; a
// malformed one is an error.
func loadOrDefault(home string) (*config.Config, error) {
	c, err := config.Load(config.Path(home))
	if ethlerr.Is(err, ethlerr.ErrConfigNotFound) {
		c, err = config.Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	c.Home = home
	return c, nil
}

func applyFlagOverrides(c *config.Config) {
	if homeDir != "" {
		c.Home = config.ExpandHome(homeDir)
	}
	if verbose {
		c.Output.Verbose = true
		c.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		c.Output.DefaultFormat = outputFormat
	}
	if noColor {
		c.Output.Color = "never"
	}
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// out writes formatted text, ignoring write errors.
func out(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// outln writes a line, ignoring write errors.
func outln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupEncoding, Title: "Encoding:"},
		&cobra.Group{ID: groupTransactions, Title: "Transactions:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "ethlite data directory (default: ~/.ethlite)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}
