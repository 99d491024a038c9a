package config

// DefaultRPCURL is the endpoint used when none is configured.
// A local node is assumed so that nothing is broadcast to a public
// provider without an explicit choice.
const DefaultRPCURL = "http://127.0.0.1:8545"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.ethlite",
		RPC: RPCConfig{
			URL:            DefaultRPCURL,
			TimeoutSeconds: 30,
			RatePerSecond:  5,
			Burst:          10,
			MaxAttempts:    4,
		},
		Chain: ChainConfig{
			ID: 1,
		},
		Signing: SigningConfig{
			EIP155LegacyV: false,
			BatchWorkers:  4,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level:  "error",
			File:   "~/.ethlite/ethlite.log",
			Format: "text",
		},
	}
}
