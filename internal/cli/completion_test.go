package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompletionCommand runs the completion command for every supported shell.
func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell  string
		marker string
	}{
		{"bash", "__start_ethlite"},
		{"zsh", "#compdef ethlite"},
		{"fish", "complete -c ethlite"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			buf := new(bytes.Buffer)
			completionCmd.SetOut(buf)
			t.Cleanup(func() { completionCmd.SetOut(nil) })

			require.NoError(t, completionCmd.RunE(completionCmd, []string{tt.shell}))
			assert.Contains(t, buf.String(), tt.marker)
		})
	}
}

// TestCompletionCommand_Args rejects unknown shells before running.
func TestCompletionCommand_Args(t *testing.T) {
	require.NoError(t, completionCmd.Args(completionCmd, []string{"zsh"}))
	require.Error(t, completionCmd.Args(completionCmd, []string{"tcsh"}))
	require.Error(t, completionCmd.Args(completionCmd, nil))
}

// TestCompletion_IncludesSubcommands checks the generated script knows the tree.
func TestCompletion_IncludesSubcommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenBashCompletion(&buf))

	script := buf.String()
	for _, name := range []string{"rlp", "abi", "tx", "call", "config"} {
		assert.Contains(t, script, name)
	}
}
