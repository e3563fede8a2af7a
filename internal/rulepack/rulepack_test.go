package rulepack

import (
	"os"
	"path/filepath"
	"testing"
)

const validRule = `
title: Test rule
detection:
    sel:
        Image: cmd.exe
    condition: sel
`

const brokenRule = `
title: Broken rule
detection:
    condition: sel
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDir_CompilesAndReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yml", validRule)
	writeFile(t, dir, "bad.yaml", brokenRule)
	writeFile(t, dir, "_disabled.yml", validRule)
	writeFile(t, dir, "notes.txt", "not a rule")

	results, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (disabled + non-yaml files skipped), got %d", len(results))
	}

	rules := Rules(results)
	if len(rules) != 1 {
		t.Fatalf("expected 1 successfully compiled rule, got %d", len(rules))
	}
	if rules[0].Title() != "Test rule" {
		t.Errorf("Title() = %q", rules[0].Title())
	}

	failures := Failures(results)
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
