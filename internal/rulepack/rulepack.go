// Package rulepack loads a directory of Sigma rule files into compiled
// rules in one call. Adapted from the gateway's internal/policy LoadPacks:
// same directory-scan-and-skip-bad-files shape, retargeted from merging
// policy fragments into a base policy to simply collecting every rule a
// directory holds.
package rulepack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gzhole/sigma"
)

// LoadResult is one file's outcome: either a compiled Rule or the error
// that kept it from compiling. A rule pack routinely ships files authored
// for a different product line or a future Sigma feature; a directory load
// reports per-file failures rather than aborting the whole load.
type LoadResult struct {
	Path string
	Rule *sigma.Rule
	Err  error
}

// LoadDir reads every .yml/.yaml file directly inside dir (non-recursive,
// matching the gateway's pack-directory convention) and compiles each as a
// Sigma rule. Files are visited in name order for deterministic output.
// A file named with a leading underscore is treated as disabled and is
// skipped entirely, the same convention the gateway's pack loader uses for
// disabled policy packs.
func LoadDir(dir string) ([]LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read rule pack directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isYAMLFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var results []LoadResult
	for _, name := range names {
		baseName := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.HasPrefix(baseName, "_") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, LoadResult{Path: path, Err: fmt.Errorf("read rule file: %w", err)})
			continue
		}

		rule, err := sigma.RuleFromYAML(data)
		results = append(results, LoadResult{Path: path, Rule: rule, Err: err})
	}

	return results, nil
}

// Rules returns only the successfully compiled rules from a LoadDir result,
// in the same order.
func Rules(results []LoadResult) []*sigma.Rule {
	out := make([]*sigma.Rule, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Rule)
		}
	}
	return out
}

// Failures returns only the load results that failed to compile.
func Failures(results []LoadResult) []LoadResult {
	var out []LoadResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
