package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	buildinfo "github.com/thoreinstein/defcheck/cmd"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, build date, and Go version of defcheck.`,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "defcheck version %s\n", buildinfo.Version)
		fmt.Fprintf(out, "  commit: %s\n", buildinfo.Commit)
		fmt.Fprintf(out, "  built:  %s\n", buildinfo.Date)
		fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
	},
}
