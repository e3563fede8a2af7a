package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_WritesRedactedJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	logger, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer logger.Close()

	event := TraceEvent{
		RuleTitle:  "test rule",
		Matched:    true,
		Selections: map[string]bool{"sel": true},
		FieldPeeks: map[string]string{"Body": "api_key=abcd1234efgh5678"},
	}
	if err := logger.Log(event); err != nil {
		t.Fatalf("unexpected error logging: %v", err)
	}
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error reading log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "test rule") {
		t.Errorf("expected the log line to contain the rule title, got %q", text)
	}
	if strings.Contains(text, "abcd1234efgh5678") {
		t.Error("expected the secret-shaped field peek to be redacted")
	}
	if !strings.HasSuffix(text, "\n") {
		t.Error("expected a trailing newline on the log line")
	}
}
