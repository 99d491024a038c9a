package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// walkCommands calls fn for cmd and then for each descendant, parents first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, child := range cmd.Commands() {
		walkCommands(child, fn)
	}
}

// enrichParentLong lists the visible subcommands of cmd at the end of its
// Long text. Leaf commands are left untouched.
func enrichParentLong(cmd *cobra.Command) {
	var visible []*cobra.Command
	width := 0
	for _, child := range cmd.Commands() {
		if !child.IsAvailableCommand() {
			continue
		}
		visible = append(visible, child)
		width = max(width, len(child.Name()))
	}
	if len(visible) == 0 {
		return
	}

	lines := make([]string, 0, len(visible))
	for _, child := range visible {
		lines = append(lines, fmt.Sprintf("  %-*s  %s", width, child.Name(), child.Short))
	}
	cmd.Long = strings.TrimRight(cmd.Long, "\n") + "\n\nSubcommands:\n" + strings.Join(lines, "\n") + "\n"
}
