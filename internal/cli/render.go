package cli

import (
	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/output"
)

// render writes v to the command's stdout in the resolved output format.
func render(cmd *cobra.Command, cc *CommandContext, v any) error {
	format, colored := output.FormatText, false
	if cc.Fmt != nil {
		format, colored = cc.Fmt.Format(), cc.Fmt.Color()
	}
	return output.Render(cmd.OutOrStdout(), format, colored, v)
}
