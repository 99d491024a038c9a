package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/ananthanir/ethlite/internal/config"
	"github.com/ananthanir/ethlite/internal/metrics"
	"github.com/ananthanir/ethlite/internal/output"
)

// testKeyHex is a throwaway key used across the signing tests.
const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318" // gitleaks:allow

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)
	return key
}

// mockConfigProvider is a fixed ConfigProvider.
type mockConfigProvider struct {
	home    string
	rpcURL  string
	chainID uint64
	eip155  bool
	workers int
	verbose bool
}

func (m *mockConfigProvider) GetHome() string   { return m.home }
func (m *mockConfigProvider) GetRPCURL() string { return m.rpcURL }
func (m *mockConfigProvider) GetRPC() config.RPCConfig {
	rpcCfg := config.Defaults().RPC
	rpcCfg.URL = m.rpcURL
	return rpcCfg
}
func (m *mockConfigProvider) GetChainID() uint64     { return m.chainID }
func (m *mockConfigProvider) UseEIP155LegacyV() bool { return m.eip155 }
func (m *mockConfigProvider) GetBatchWorkers() int   { return m.workers }
func (m *mockConfigProvider) IsVerbose() bool        { return m.verbose }

// mockFormatProvider is a fixed FormatProvider.
type mockFormatProvider struct {
	format output.Format
	color  bool
}

func (m *mockFormatProvider) Format() output.Format { return m.format }
func (m *mockFormatProvider) Color() bool           { return m.color }

// testEnv is a command wired to in-memory output.
type testEnv struct {
	cmd     *cobra.Command
	cc      *CommandContext
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T, cp ConfigProvider, format output.Format) *testEnv {
	t.Helper()

	env := &testEnv{
		cmd:     &cobra.Command{},
		stdout:  new(bytes.Buffer),
		stderr:  new(bytes.Buffer),
		metrics: &metrics.Metrics{},
	}
	env.cc = &CommandContext{
		Cfg:     cp,
		Log:     config.NullLogger(),
		Fmt:     &mockFormatProvider{format: format},
		Metrics: env.metrics,
	}
	env.cmd.SetContext(context.Background())
	env.cmd.SetOut(env.stdout)
	env.cmd.SetErr(env.stderr)
	SetCmdContext(env.cmd, env.cc)
	return env
}

// writeTestFile writes content under a temp dir and returns its path.
func writeTestFile(t *testing.T, name, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

// withTxFlags sets the shared tx flag variables and restores them afterwards.
func withTxFlags(t *testing.T, file, keyFile string, eip155 bool) {
	t.Helper()
	prevFile, prevKey, prevEIP, prevOut := txFile, txKeyFile, txEIP155, txOut
	prevRPC, prevSkip, prevWorkers := txRPC, txSkipChainCheck, batchWorkers
	t.Cleanup(func() {
		txFile, txKeyFile, txEIP155, txOut = prevFile, prevKey, prevEIP, prevOut
		txRPC, txSkipChainCheck, batchWorkers = prevRPC, prevSkip, prevWorkers
	})
	txFile, txKeyFile, txEIP155, txOut = file, keyFile, eip155, ""
	txRPC, txSkipChainCheck, batchWorkers = "", false, 0
}

// withPrompt replaces the key prompt and terminal check.
func withPrompt(t *testing.T, terminal bool, secret string) {
	t.Helper()
	prevPrompt, prevTerm := promptSecretFn, stdinIsTerminal
	t.Cleanup(func() {
		promptSecretFn, stdinIsTerminal = prevPrompt, prevTerm
	})
	stdinIsTerminal = func() bool { return terminal }
	promptSecretFn = func(prompt string) ([]byte, error) {
		if !terminal {
			return promptSecret(prompt)
		}
		return []byte(secret), nil
	}
}

// keyFile writes testKeyHex to a 0600 file.
func keyFile(t *testing.T) string {
	t.Helper()
	return writeTestFile(t, "key.hex", testKeyHex+"\n", 0o600)
}
