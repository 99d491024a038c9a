package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/config"
	"github.com/ananthanir/ethlite/internal/output"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage configuration",
	GroupID: groupConfig,
	Long:    `View and modify ethlite configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.ethlite/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  ethlite config init
  ethlite config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, after environment and flag overrides.`,
	Example: `  ethlite config show
  ethlite config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long:  `Get a specific configuration value by its dotted path.`,
	Example: `  ethlite config get rpc.url
  ethlite config get signing.eip155_legacy_v`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its dotted path.
The configuration file will be updated immediately.`,
	Example: `  ethlite config set rpc.url https://rpc.example.org
  ethlite config set chain.id 11155111
  ethlite config set signing.eip155_legacy_v true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

// configKey binds a dotted path to a config field.
type configKey struct {
	path string
	get  func(*config.Config) string
	set  func(*config.Config, string) error
}

// configKeys lists the settable keys in display order.
//
//nolint:gochecknoglobals // read-only lookup table
var configKeys = []configKey{
	{"home", func(c *config.Config) string { return c.Home }, setString(func(c *config.Config) *string { return &c.Home })},
	{"rpc.url", func(c *config.Config) string { return c.RPC.URL }, func(c *config.Config, v string) error {
		c.RPC.URL = config.SanitizeURL(v)
		return nil
	}},
	{"rpc.timeout_seconds", func(c *config.Config) string { return strconv.Itoa(c.RPC.TimeoutSeconds) }, setInt(func(c *config.Config) *int { return &c.RPC.TimeoutSeconds })},
	{"rpc.rate_per_second", func(c *config.Config) string { return strconv.FormatFloat(c.RPC.RatePerSecond, 'g', -1, 64) }, func(c *config.Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return badValue("rpc.rate_per_second", v)
		}
		c.RPC.RatePerSecond = f
		return nil
	}},
	{"rpc.burst", func(c *config.Config) string { return strconv.Itoa(c.RPC.Burst) }, setInt(func(c *config.Config) *int { return &c.RPC.Burst })},
	{"rpc.max_attempts", func(c *config.Config) string { return strconv.Itoa(c.RPC.MaxAttempts) }, setInt(func(c *config.Config) *int { return &c.RPC.MaxAttempts })},
	{"chain.id", func(c *config.Config) string { return strconv.FormatUint(c.Chain.ID, 10) }, func(c *config.Config, v string) error {
		id, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return badValue("chain.id", v)
		}
		c.Chain.ID = id
		return nil
	}},
	{"signing.eip155_legacy_v", func(c *config.Config) string { return strconv.FormatBool(c.Signing.EIP155LegacyV) }, setBool(func(c *config.Config) *bool { return &c.Signing.EIP155LegacyV })},
	{"signing.batch_workers", func(c *config.Config) string { return strconv.Itoa(c.Signing.BatchWorkers) }, setInt(func(c *config.Config) *int { return &c.Signing.BatchWorkers })},
	{"output.default_format", func(c *config.Config) string { return c.Output.DefaultFormat }, setString(func(c *config.Config) *string { return &c.Output.DefaultFormat })},
	{"output.color", func(c *config.Config) string { return c.Output.Color }, setString(func(c *config.Config) *string { return &c.Output.Color })},
	{"output.verbose", func(c *config.Config) string { return strconv.FormatBool(c.Output.Verbose) }, setBool(func(c *config.Config) *bool { return &c.Output.Verbose })},
	{"logging.level", func(c *config.Config) string { return c.Logging.Level }, setString(func(c *config.Config) *string { return &c.Logging.Level })},
	{"logging.file", func(c *config.Config) string { return c.Logging.File }, setString(func(c *config.Config) *string { return &c.Logging.File })},
	{"logging.format", func(c *config.Config) string { return c.Logging.Format }, setString(func(c *config.Config) *string { return &c.Logging.Format })},
}

func setString(field func(*config.Config) *string) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		*field(c) = strings.TrimSpace(v)
		return nil
	}
}

func setInt(field func(*config.Config) *int) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return badValue("", v)
		}
		*field(c) = n
		return nil
	}
}

func setBool(field func(*config.Config) *bool) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return badValue("", v)
		}
		*field(c) = b
		return nil
	}
}

func badValue(key, value string) error {
	details := map[string]string{"value": value}
	if key != "" {
		details["key"] = key
	}
	return ethlerr.WithDetails(ethlerr.ErrConfigInvalid, details)
}

func lookupConfigKey(path string) (configKey, error) {
	for _, k := range configKeys {
		if k.path == path {
			return k, nil
		}
	}
	return configKey{}, ethlerr.WithSuggestion(
		ethlerr.WithDetails(ethlerr.ErrUnknownConfigKey, map[string]string{"path": path}),
		"run 'ethlite config show' to list the keys",
	)
}

// getConfigValue retrieves a value from the config using dot notation.
func getConfigValue(c *config.Config, path string) (string, error) {
	k, err := lookupConfigKey(path)
	if err != nil {
		return "", err
	}
	return k.get(c), nil
}

// setConfigValue sets a value in the config using dot notation.
func setConfigValue(c *config.Config, path, value string) error {
	k, err := lookupConfigKey(path)
	if err != nil {
		return err
	}
	if err := k.set(c, value); err != nil {
		return ethlerr.Wrap(err, "setting %s", path)
	}
	return nil
}

// configDocument is a snapshot of the effective configuration.
type configDocument struct {
	cfg *config.Config
}

// RenderText implements output.TextRenderer.
func (d configDocument) RenderText(w io.Writer, colored bool) error {
	fields := make([]output.Field, 0, len(configKeys))
	for _, k := range configKeys {
		fields = append(fields, output.Field{Key: k.path, Value: k.get(d.cfg)})
	}
	output.RenderFields(w, colored, fields)
	return nil
}

// MarshalJSON renders the configuration itself.
func (d configDocument) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.cfg)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configPath := config.Path(cc.Cfg.GetHome())

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return ethlerr.WithSuggestion(
			ethlerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cc.Cfg.GetHome()

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	cc.logger().Debug("wrote default config to %s", configPath)

	success(cmd, cc, "Configuration initialized at %s", configPath)
	w := cmd.OutOrStdout()
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - rpc.url: JSON-RPC endpoint for send and call")
	outln(w, "  - chain.id: chain ID for records without chainId")
	outln(w, "  - signing.eip155_legacy_v: standard EIP-155 v for legacy transactions")
	outln(w, "  - output.default_format: Output format (text/json)")
	outln(w, "  - logging.level: Log level (off/error/debug)")
	outln(w, "  - logging.format: Log record format (text/json)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	c, ok := cc.Cfg.(*config.Config)
	if !ok {
		return ethlerr.WithDetails(ethlerr.ErrGeneral, map[string]string{"reason": "configuration not loaded"})
	}
	return render(cmd, cc, configDocument{cfg: c})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	c, ok := cc.Cfg.(*config.Config)
	if !ok {
		return ethlerr.WithDetails(ethlerr.ErrGeneral, map[string]string{"reason": "configuration not loaded"})
	}

	value, err := getConfigValue(c, args[0])
	if err != nil {
		return err
	}

	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	path, value := args[0], args[1]

	configPath := config.Path(cc.Cfg.GetHome())
	currentCfg, err := config.Load(configPath)
	if err != nil {
		if !ethlerr.Is(err, ethlerr.ErrConfigNotFound) {
			return err
		}
		currentCfg = config.Defaults()
		currentCfg.Home = cc.Cfg.GetHome()
	}

	if err := setConfigValue(currentCfg, path, value); err != nil {
		return err
	}
	if err := currentCfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cc.logger().Debug("config %s updated in %s", path, configPath)

	success(cmd, cc, "Set %s = %s", path, value)
	return nil
}
