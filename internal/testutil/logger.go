// Package testutil carries test doubles shared across packages: a recording
// logger and an in-memory work-record store with the same atomicity contract
// as the Postgres repository.
package testutil

import (
	"strings"
	"sync"

	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field, or nil.
func (e LogEntry) Field(key string) interface{} {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// MockLogger records every entry for assertion.  Safe for concurrent use.
type MockLogger struct {
	mu      sync.Mutex
	with    []logging.Field
	entries *[]LogEntry
}

// NewMockLogger returns an empty recording logger.
func NewMockLogger() *MockLogger {
	entries := make([]LogEntry, 0, 16)
	return &MockLogger{entries: &entries}
}

func (l *MockLogger) record(level, msg string, fields []logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := make([]logging.Field, 0, len(l.with)+len(fields))
	all = append(all, l.with...)
	all = append(all, fields...)
	*l.entries = append(*l.entries, LogEntry{Level: level, Message: msg, Fields: all})
}

func (l *MockLogger) Debug(msg string, fields ...logging.Field) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields ...logging.Field)  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields ...logging.Field)  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields ...logging.Field) { l.record("error", msg, fields) }
func (l *MockLogger) Fatal(msg string, fields ...logging.Field) { l.record("fatal", msg, fields) }

// With returns a child sharing the parent's entry sink.
func (l *MockLogger) With(fields ...logging.Field) logging.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	child := &MockLogger{entries: l.entries}
	child.with = append(append([]logging.Field{}, l.with...), fields...)
	return child
}

// Named is a no-op for the mock; entries are matched by message, not name.
func (l *MockLogger) Named(string) logging.Logger { return l }

// Entries returns a copy of everything recorded so far.
func (l *MockLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(*l.entries))
	copy(out, *l.entries)
	return out
}

// EntriesAt returns recorded entries of the given level.
func (l *MockLogger) EntriesAt(level string) []LogEntry {
	var out []LogEntry
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports whether any recorded message at level contains substr.
func (l *MockLogger) HasEntry(level, substr string) bool {
	for _, e := range l.EntriesAt(level) {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
