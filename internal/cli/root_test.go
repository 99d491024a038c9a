package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ananthanir/ethlite/internal/config"
	"github.com/ananthanir/ethlite/internal/output"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// withGlobals isolates the root flag and state variables.
func withGlobals(t *testing.T, home string) {
	t.Helper()
	prevHome, prevOut, prevVerbose, prevNoColor := homeDir, outputFormat, verbose, noColor
	prevCfg, prevLogger, prevFormatter := cfg, logger, formatter
	t.Cleanup(func() {
		homeDir, outputFormat, verbose, noColor = prevHome, prevOut, prevVerbose, prevNoColor
		cfg, logger, formatter = prevCfg, prevLogger, prevFormatter
	})
	homeDir, outputFormat, verbose, noColor = home, "auto", false, false

	for _, key := range []string{config.EnvHome, config.EnvRPC, config.EnvChainID, config.EnvOutputFormat, config.EnvVerbose} {
		t.Setenv(key, "")
	}
	t.Setenv(config.EnvLogLevel, "off")
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(config.Path(home), []byte(content), 0o600))
}

func TestInitGlobals_Defaults(t *testing.T) {
	home := t.TempDir()
	withGlobals(t, home)

	require.NoError(t, initGlobals())
	require.NotNil(t, Config())
	assert.Equal(t, home, Config().Home)
	assert.Equal(t, uint64(1), Config().Chain.ID)
	assert.NotNil(t, Logger())
	assert.NotNil(t, Formatter())
}

func TestInitGlobals_FileEnvAndFlags(t *testing.T) {
	home := t.TempDir()
	withGlobals(t, home)
	writeConfig(t, home, `chain:
  id: 5
rpc:
  url: http://10.0.0.1:8545
signing:
  eip155_legacy_v: true
`)
	t.Setenv(config.EnvRPC, "https://rpc.example.org")
	outputFormat = "json"
	noColor = true

	require.NoError(t, initGlobals())
	c := Config()
	assert.Equal(t, uint64(5), c.Chain.ID)
	assert.True(t, c.Signing.EIP155LegacyV)
	assert.Equal(t, "https://rpc.example.org", c.RPC.URL)
	assert.Equal(t, "json", c.Output.DefaultFormat)
	assert.Equal(t, "never", c.Output.Color)
	assert.Equal(t, output.FormatJSON, Formatter().Format())
	assert.False(t, Formatter().Color())
}

func TestInitGlobals_HomeFromEnvironment(t *testing.T) {
	home := t.TempDir()
	withGlobals(t, "")
	t.Setenv(config.EnvHome, home)
	writeConfig(t, home, "chain:\n  id: 10\n")

	require.NoError(t, initGlobals())
	assert.Equal(t, home, Config().Home)
	assert.Equal(t, uint64(10), Config().Chain.ID)
}

func TestInitGlobals_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "wallet:\n  name: main\n"},
		{"zero chain id", "chain:\n  id: 0\n"},
		{"bad endpoint", "rpc:\n  url: ftp://example.org\n"},
		{"bad yaml", "chain: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			withGlobals(t, home)
			writeConfig(t, home, tt.content)

			err := initGlobals()
			require.ErrorIs(t, err, ethlerr.ErrConfigInvalid)
			assert.Equal(t, ethlerr.ExitInput, ExitCode(err))
		})
	}
}

func TestInitGlobals_InvalidOutputFlag(t *testing.T) {
	withGlobals(t, t.TempDir())
	outputFormat = "xml"

	require.ErrorIs(t, initGlobals(), ethlerr.ErrConfigInvalid)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("verbose without file", func(t *testing.T) {
		t.Parallel()
		c := config.Defaults()
		c.Logging.File = ""
		c.Logging.Level = "debug"
		c.Output.Verbose = true

		l := newLogger(c)
		assert.Equal(t, config.LogLevelDebug, l.Level())
		require.NoError(t, l.Close())
	})

	t.Run("json file", func(t *testing.T) {
		t.Parallel()
		c := config.Defaults()
		c.Logging.File = filepath.Join(t.TempDir(), "ethlite.log")
		c.Logging.Level = "debug"
		c.Logging.Format = "json"

		l := newLogger(c)
		l.DebugAttrs("signed transaction", slog.String("type", "eip1559"))
		require.NoError(t, l.Close())

		data, err := os.ReadFile(c.Logging.File)
		require.NoError(t, err)
		var rec map[string]any
		require.NoError(t, json.Unmarshal(data, &rec))
		assert.Equal(t, "signed transaction", rec["msg"])
		assert.Equal(t, "eip1559", rec["type"])
	})
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ethlerr.ExitSuccess, ExitCode(nil))
	assert.Equal(t, ethlerr.ExitInput, ExitCode(ethlerr.ErrArityMismatch))
	assert.Equal(t, ethlerr.ExitSigning, ExitCode(ethlerr.ErrSigningFailure))
	assert.Equal(t, ethlerr.ExitNetwork, ExitCode(ethlerr.ErrTxRejected))
}

// executeRoot runs the full command tree with args and returns stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	withGlobals(t, t.TempDir())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(append([]string{"--home", homeDir}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootExecute_RLPEncodeJSON(t *testing.T) {
	out, err := executeRoot(t, "-o", "json", "rlp", "encode", `["cat","dog"]`)
	require.NoError(t, err)

	var resp RLPEncodeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "0xc88363617483646f67", resp.RLP)
}

func TestRootExecute_ABISelector(t *testing.T) {
	out, err := executeRoot(t, "-o", "text", "abi", "selector", "transfer(address,uint256)")
	require.NoError(t, err)
	assert.Contains(t, out, "0xa9059cbb")
}

func TestRootExecute_Version(t *testing.T) {
	out, err := executeRoot(t, "-o", "json", "version")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")
}

func TestRootExecute_InputErrorExitCode(t *testing.T) {
	_, err := executeRoot(t, "abi", "encode", "transfer(address,uint256)", "0x01")
	require.Error(t, err)
	assert.Equal(t, ethlerr.ExitInput, ExitCode(err))
}

func TestRootExecute_ConfigRoundTrip(t *testing.T) {
	home := t.TempDir()
	withGlobals(t, home)

	run := func(args ...string) string {
		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetArgs(append([]string{"--home", home}, args...))
		require.NoError(t, rootCmd.Execute())
		return buf.String()
	}
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	run("config", "set", "chain.id", "11155111")
	assert.FileExists(t, filepath.Join(home, "config.yaml"))
	assert.Equal(t, "11155111\n", run("config", "get", "chain.id"))
}
