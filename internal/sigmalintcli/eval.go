package sigmalintcli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gzhole/sigma"
	"github.com/gzhole/sigma/internal/auditlog"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <event.json>",
	Short: "Evaluate rule(s) against a JSON event",
	Long: `eval compiles every rule under --rules and reports which ones match
the JSON event given as a file path argument (or "-" for stdin).

  sigmalint eval --rules ./rules/ event.json
  cat event.json | sigmalint eval --rules ./rules/process_creation.yml -`,
	Args: cobra.ExactArgs(1),
	RunE: evalCommand,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func evalCommand(cmd *cobra.Command, args []string) error {
	if rulesPath == "" {
		return fmt.Errorf("--rules is required")
	}

	results, err := loadRules(rulesPath)
	if err != nil {
		return err
	}
	var rules []*sigma.Rule
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", r.Path, r.Err)
			continue
		}
		rules = append(rules, r.Rule)
	}
	if len(rules) == 0 {
		return fmt.Errorf("no rules compiled successfully")
	}

	text, err := readEventSource(args[0])
	if err != nil {
		return err
	}
	event, err := sigma.EventFromJSON(text)
	if err != nil {
		return fmt.Errorf("parse event: %w", err)
	}

	var tracer *auditlog.Logger
	if tracePath != "" {
		tracer, err = auditlog.Open(tracePath)
		if err != nil {
			return fmt.Errorf("open trace log: %w", err)
		}
		defer tracer.Close()
	}

	type outcome struct {
		Title   string `json:"title"`
		Matched bool   `json:"matched"`
	}
	var outcomes []outcome

	matched := 0
	for _, rule := range rules {
		var isMatch bool
		if tracer != nil {
			isMatch = rule.IsMatchTraced(event, tracer)
		} else {
			isMatch = rule.IsMatch(event)
		}
		if isMatch {
			matched++
		}
		outcomes = append(outcomes, outcome{Title: rule.Title(), Matched: isMatch})
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	}

	for _, o := range outcomes {
		mark := "  "
		if o.Matched {
			mark = "* "
		}
		fmt.Printf("%s%s\n", mark, o.Title)
	}
	fmt.Printf("\n%d/%d rule(s) matched\n", matched, len(rules))
	return nil
}

func readEventSource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
