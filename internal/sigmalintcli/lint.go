package sigmalintcli

import (
	"fmt"
	"os"

	"github.com/gzhole/sigma"
	"github.com/gzhole/sigma/internal/rulepack"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Compile rule(s) and report build errors and tag warnings",
	Long: `lint compiles every rule under --rules (a single file or a directory)
and reports compile failures and unrecognized-tag warnings.

  sigmalint lint --rules ./rules/
  sigmalint lint --rules ./rules/process_creation_susp.yml`,
	RunE: lintCommand,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func lintCommand(cmd *cobra.Command, args []string) error {
	if rulesPath == "" {
		return fmt.Errorf("--rules is required")
	}

	results, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	failed := 0
	warned := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("FAIL  %s: %v\n", r.Path, r.Err)
			continue
		}
		warnings := r.Rule.Metadata().TagWarnings
		if len(warnings) > 0 {
			warned++
			fmt.Printf("WARN  %s: %q — unrecognized tags %v\n", r.Path, r.Rule.Title(), warnings)
			continue
		}
		fmt.Printf("OK    %s: %q\n", r.Path, r.Rule.Title())
	}

	fmt.Printf("\n%d rule(s): %d failed, %d with tag warnings\n", len(results), failed, warned)
	if failed > 0 {
		os.Exit(1)
	}
	return nil
}

// loadRules compiles every rule under path, which may be a single rule
// file or a directory of rule files.
func loadRules(path string) ([]rulepack.LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return rulepack.LoadDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rule, err := sigma.RuleFromYAML(data)
	return []rulepack.LoadResult{{Path: path, Rule: rule, Err: err}}, nil
}
