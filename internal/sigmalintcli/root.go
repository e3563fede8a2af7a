// Package sigmalintcli is the cobra-driven command surface around the
// rule engine, structured the way the gateway's internal/cli lays out its
// root command and per-command flag variables.
package sigmalintcli

import (
	"github.com/spf13/cobra"
)

var (
	rulesPath string
	format    string
	tracePath string
)

var rootCmd = &cobra.Command{
	Use:   "sigmalint",
	Short: "Sigma rule linter and evaluator",
	Long: `sigmalint compiles Sigma detection rules and runs them against
JSON events, as a demonstration surface around the rule-matching library.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Path to a rule YAML file or a directory of rule files")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text or json")
	rootCmd.PersistentFlags().StringVar(&tracePath, "trace", "", "Path to write an evaluation trace log (optional)")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
