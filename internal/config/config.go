// Package config provides configuration management for ethlite.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ananthanir/ethlite/internal/fileutil"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Home    string        `yaml:"home" json:"home"`
	RPC     RPCConfig     `yaml:"rpc" json:"rpc"`
	Chain   ChainConfig   `yaml:"chain" json:"chain"`
	Signing SigningConfig `yaml:"signing" json:"signing"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RPCConfig defines the JSON-RPC endpoint used by send and call.
type RPCConfig struct {
	URL            string  `yaml:"url" json:"url"`
	TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second" json:"rate_per_second"`
	Burst          int     `yaml:"burst" json:"burst"`
	MaxAttempts    int     `yaml:"max_attempts" json:"max_attempts"`
}

// ChainConfig defines chain defaults.
type ChainConfig struct {
	// ID is filled into transaction records that omit chainId.
	ID uint64 `yaml:"id" json:"id"`
}

// SigningConfig defines signing behavior.
type SigningConfig struct {
	// EIP155LegacyV selects v = recid + chainId*2 + 35 for legacy
	// transactions instead of the compatibility offset of 8.
	EIP155LegacyV bool `yaml:"eip155_legacy_v" json:"eip155_legacy_v"`
	BatchWorkers  int  `yaml:"batch_workers" json:"batch_workers"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
	Color         string `yaml:"color" json:"color"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// Load reads configuration from path over Defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ethlerr.WithDetails(ethlerr.ErrConfigNotFound, map[string]string{"path": path})
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ethlerr.WithDetails(
			ethlerr.WithCause(ethlerr.ErrConfigInvalid, err),
			map[string]string{"path": path},
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to path atomically with 0600 permissions.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Validate checks enumerated and range-limited settings.
func (c *Config) Validate() error {
	invalid := func(key, value, hint string) error {
		return ethlerr.WithSuggestion(
			ethlerr.WithDetails(ethlerr.ErrConfigInvalid, map[string]string{"key": key, "value": value}),
			hint,
		)
	}

	if c.RPC.URL != "" {
		if _, err := ParseEndpoint(c.RPC.URL); err != nil {
			return invalid("rpc.url", c.RPC.URL, "use an http:// or https:// URL")
		}
	}
	if c.RPC.TimeoutSeconds < 0 {
		return invalid("rpc.timeout_seconds", fmt.Sprint(c.RPC.TimeoutSeconds), "use 0 for the default or a positive number")
	}
	if c.RPC.RatePerSecond < 0 {
		return invalid("rpc.rate_per_second", fmt.Sprint(c.RPC.RatePerSecond), "use 0 to disable throttling")
	}
	if c.Chain.ID == 0 {
		return invalid("chain.id", "0", "chain IDs start at 1")
	}
	if c.Signing.BatchWorkers < 0 {
		return invalid("signing.batch_workers", fmt.Sprint(c.Signing.BatchWorkers), "use 0 for the default")
	}
	switch strings.ToLower(c.Output.DefaultFormat) {
	case "", "auto", "text", "json":
	default:
		return invalid("output.default_format", c.Output.DefaultFormat, "use auto, text or json")
	}
	switch strings.ToLower(c.Output.Color) {
	case "", "auto", "always", "never":
	default:
		return invalid("output.color", c.Output.Color, "use auto, always or never")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "off", "none", "error", "debug":
	default:
		return invalid("logging.level", c.Logging.Level, "use off, error or debug")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return invalid("logging.format", c.Logging.Format, "use text or json")
	}
	return nil
}

// ParseEndpoint parses an RPC URL, requiring an http or https scheme and a host.
func ParseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ethlerr.WithDetails(ethlerr.ErrConfigInvalid, map[string]string{"url": raw})
	}
	return u, nil
}

// Path returns the config file path under home.
func Path(home string) string {
	return filepath.Join(ExpandHome(home), "config.yaml")
}

// DefaultHome returns the default ethlite home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ethlite"
	}
	return filepath.Join(home, ".ethlite")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// GetHome returns the ethlite home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetRPCURL returns the JSON-RPC endpoint.
func (c *Config) GetRPCURL() string {
	return c.RPC.URL
}

// GetChainID returns the default chain ID.
func (c *Config) GetChainID() uint64 {
	return c.Chain.ID
}

// UseEIP155LegacyV reports whether legacy transactions use the EIP-155 v offset.
func (c *Config) UseEIP155LegacyV() bool {
	return c.Signing.EIP155LegacyV
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// GetRPC returns the RPC transport settings.
func (c *Config) GetRPC() RPCConfig {
	return c.RPC
}

// GetBatchWorkers returns the number of concurrent batch signers.
func (c *Config) GetBatchWorkers() int {
	return c.Signing.BatchWorkers
}
