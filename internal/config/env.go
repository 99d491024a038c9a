package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome         = "ETHLITE_HOME"
	EnvRPC          = "ETHLITE_RPC"
	EnvChainID      = "ETHLITE_CHAIN_ID"
	EnvOutputFormat = "ETHLITE_OUTPUT_FORMAT"
	EnvVerbose      = "ETHLITE_VERBOSE"
	EnvLogLevel     = "ETHLITE_LOG_LEVEL"
	EnvLogFormat    = "ETHLITE_LOG_FORMAT"
	EnvPrivateKey   = "ETHLITE_PRIVATE_KEY" // #nosec G101 -- variable name, not a credential
	EnvNoColor      = "NO_COLOR"
)

// envBindings maps non-empty variables onto config fields, in order.
//
//nolint:gochecknoglobals // fixed lookup table
var envBindings = []struct {
	name  string
	apply func(c *Config, v string)
}{
	{EnvHome, func(c *Config, v string) { c.Home = v }},
	{EnvRPC, func(c *Config, v string) { c.RPC.URL = SanitizeURL(v) }},
	{EnvChainID, func(c *Config, v string) {
		// Unparseable or zero IDs are ignored; the file value stays.
		if id, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64); err == nil && id > 0 {
			c.Chain.ID = id
		}
	}},
	{EnvOutputFormat, func(c *Config, v string) { c.Output.DefaultFormat = strings.ToLower(v) }},
	{EnvVerbose, func(c *Config, v string) { c.Output.Verbose = parseBool(v) }},
	{EnvLogLevel, func(c *Config, v string) { c.Logging.Level = strings.ToLower(v) }},
	{EnvLogFormat, func(c *Config, v string) { c.Logging.Format = strings.ToLower(v) }},
}

// ApplyEnvironment layers ETHLITE_* variables over cfg. NO_COLOR disables
// color whenever it is set, even to an empty value.
func ApplyEnvironment(cfg *Config) {
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			b.apply(cfg, v)
		}
	}
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool accepts yes/on alongside strconv.ParseBool forms. Anything
// else is false.
func parseBool(s string) bool {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "yes", "on":
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL drops whitespace, control characters and quotes that tend to
// ride along when a URL is pasted into a shell.
func SanitizeURL(raw string) string {
	return strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f || r == '"' || r == '\'' {
			return -1
		}
		return r
	}, raw)
}
