// Package auditlog is a dependency-free, JSON-lines structured logger for
// rule evaluation traces. Adapted from the gateway's internal/logger
// AuditLogger: same append-only file, same rotate-at-size-threshold
// behavior, same redact-then-marshal order, retargeted from shell-command
// audit events to selection-match traces.
package auditlog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/gzhole/sigma/internal/redact"
)

const defaultMaxLogBytes = 10 * 1024 * 1024

// TraceEvent records one rule evaluation: which selections fired and the
// final verdict. Field values are redacted before logging since an event's
// field values (the data a rule matched against) may contain secrets.
type TraceEvent struct {
	RuleTitle  string            `json:"rule_title"`
	Matched    bool              `json:"matched"`
	Selections map[string]bool   `json:"selections"`
	FieldPeeks map[string]string `json:"field_peeks,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Logger appends TraceEvent records to a JSON-lines file, rotating it once
// it grows past defaultMaxLogBytes.
type Logger struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// Open creates or appends to the trace log at path.
func Open(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open trace log: %w", err)
	}
	return &Logger{path: path, file: file}, nil
}

func (l *Logger) rotateIfNeeded() error {
	info, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("stat trace log: %w", err)
	}
	if info.Size() < defaultMaxLogBytes {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close trace log before rotation: %w", err)
	}

	rotated := l.path + ".1"
	_ = os.Remove(rotated)
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("rotate trace log: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open fresh trace log after rotation: %w", err)
	}
	l.file = f
	return nil
}

// Log writes one trace event as a redacted JSON line.
func (l *Logger) Log(event TraceEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(); err != nil {
		fmt.Fprintf(os.Stderr, "auditlog: warning: rotation failed: %v\n", err)
	}

	for k, v := range event.FieldPeeks {
		event.FieldPeeks[k] = redact.Redact(v)
	}
	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	_, err = l.file.Write(data)
	return err
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
