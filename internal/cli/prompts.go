package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/ananthanir/ethlite/internal/config"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // swapped by tests
var (
	promptSecretFn  = promptSecret
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) } //nolint:gosec // G115: fd fits in int
)

// promptSecret prompts for a secret with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptSecret(prompt string) ([]byte, error) {
	if !stdinIsTerminal() {
		return nil, ethlerr.WithSuggestion(
			ethlerr.ErrInvalidPrivateKey,
			fmt.Sprintf("no private key given; use --key-file or set %s", config.EnvPrivateKey),
		)
	}

	out(os.Stderr, "%s", prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // G115: fd fits in int
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	return secret, nil
}
