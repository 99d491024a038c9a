package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/config"
	"github.com/ananthanir/ethlite/internal/crypto"
	"github.com/ananthanir/ethlite/internal/fileutil"
	"github.com/ananthanir/ethlite/internal/output"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// Key sources, in the order they are consulted.
const (
	keySourceFile   = "file"
	keySourceEnv    = "env"
	keySourcePrompt = "prompt"
)

// loadPrivateKey reads the signing key from --key-file, then the
// environment, then an interactive prompt. The returned buffer is locked in
// memory and must be destroyed by the caller.
func loadPrivateKey(cmd *cobra.Command, cc *CommandContext, keyFile string) (*crypto.SecureBytes, string, error) {
	var (
		text   []byte
		source string
	)

	switch {
	case keyFile != "":
		data, exposed, err := fileutil.ReadSecret(keyFile)
		if err != nil {
			return nil, "", ethlerr.WithSuggestion(
				ethlerr.Wrap(ethlerr.WithCause(ethlerr.ErrInvalidPrivateKey, err), "reading key file"),
				"check the --key-file path",
			)
		}
		if exposed {
			warn(cmd, cc, "key file %s is readable by other users; chmod 600 it", keyFile)
		}
		text, source = data, keySourceFile

	case os.Getenv(config.EnvPrivateKey) != "":
		text, source = []byte(os.Getenv(config.EnvPrivateKey)), keySourceEnv

	default:
		secret, err := promptSecretFn("Private key (hex): ")
		if err != nil {
			return nil, "", err
		}
		text, source = secret, keySourcePrompt
	}

	key, err := crypto.PrivateKeyFromText(text)
	if err != nil {
		return nil, "", err
	}
	cc.logger().Debug("private key loaded from %s (memory locked: %t)", source, key.IsLocked())
	return key, source, nil
}

// warn writes a warning to the command's error stream.
func warn(cmd *cobra.Command, cc *CommandContext, format string, args ...any) {
	messages(cmd, cc).Warnf(cmd.ErrOrStderr(), format, args...)
}

// success writes a confirmation line to stdout.
func success(cmd *cobra.Command, cc *CommandContext, format string, args ...any) {
	messages(cmd, cc).Successf(cmd.OutOrStdout(), format, args...)
}

func messages(cmd *cobra.Command, cc *CommandContext) *output.Formatter {
	return output.NewFormatter(output.FormatText, cmd.ErrOrStderr()).
		WithColor(cc.Fmt != nil && cc.Fmt.Color())
}
