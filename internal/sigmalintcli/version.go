package sigmalintcli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print sigmalint version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sigmalint %s\n", Version)
		fmt.Printf("  Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
