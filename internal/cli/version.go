package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ananthanir/ethlite/internal/version"
)

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit and build date of this binary.`,
	Example: `  ethlite version
  ethlite version -o json`,
	GroupID: groupConfig,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cc := GetCmdContext(cmd)
		return render(cmd, cc, versionInfo{Info: version.Get(), verbose: cc.Cfg != nil && cc.Cfg.IsVerbose()})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}

type versionInfo struct {
	version.Info

	verbose bool
}

// RenderText implements output.TextRenderer.
func (v versionInfo) RenderText(w io.Writer, _ bool) error {
	out(w, "ethlite %s\n", v.String())
	if v.verbose {
		out(w, "go: %s\nplatform: %s\n", v.GoVersion, v.Platform)
	}
	return nil
}
