// Command sigmalint is a demonstration CLI around the rule-matching
// library: lint a rule file or directory, and evaluate rules against a
// JSON event. It is not part of the core engine (the engine consumes no
// CLI, no config files, and does no I/O on its own).
package main

import (
	"fmt"
	"os"

	"github.com/gzhole/sigma/internal/sigmalintcli"
)

func main() {
	if err := sigmalintcli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
