// Package logging wraps charmbracelet/log the way Streamy's
// internal/infrastructure/logging wraps it: a thin adapter exposing
// Debug/Info/Warn/Error plus WithFields(...) for structured fields,
// switchable between human-readable and JSON output via Options.JSON. Every
// kernel component logs through this rather than the standard
// library's log package.
package logging

import (
	"io"
	"os"
	"sort"
	"strings"

	cblog "github.com/charmbracelet/log"
)

// Options configures a Logger at construction time.
type Options struct {
	Writer   io.Writer
	Level    string // debug|info|warn|error, default info
	JSON     bool
	Fields   map[string]any
	Reporter string // component name, e.g. "executor", "reverter"
}

// Logger is the structured logger every kernel package depends on.
type Logger struct {
	base   *cblog.Logger
	fields []any
}

// New constructs a Logger from Options.
func New(opts Options) (*Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	cblogOpts := cblog.Options{
		Level:           level,
		ReportTimestamp: true,
	}
	if opts.JSON {
		cblogOpts.Formatter = cblog.JSONFormatter
	}

	base := cblog.NewWithOptions(w, cblogOpts)

	var fields []any
	if opts.Reporter != "" {
		fields = append(fields, "component", opts.Reporter)
	}
	fields = append(fields, mapToFields(opts.Fields)...)

	return &Logger{base: base, fields: fields}, nil
}

// NewNop returns a Logger that discards everything, for tests and for
// actions exercised outside of a full install run.
func NewNop() *Logger {
	l, _ := New(Options{Writer: io.Discard})
	return l
}

// WithFields returns a derived Logger that always includes the supplied
// fields, without mutating the receiver.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return l
	}
	next := append([]any(nil), l.fields...)
	next = append(next, mapToFields(fields)...)
	return &Logger{base: l.base, fields: next}
}

func (l *Logger) Debug(msg string) { l.log(cblog.DebugLevel, msg) }
func (l *Logger) Info(msg string)  { l.log(cblog.InfoLevel, msg) }
func (l *Logger) Warn(msg string)  { l.log(cblog.WarnLevel, msg) }

// Error logs msg with err attached as a field, if non-nil.
func (l *Logger) Error(err error, msg string) {
	if l == nil || l.base == nil {
		return
	}
	fields := append([]any(nil), l.fields...)
	if err != nil {
		fields = append(fields, "error", err)
	}
	l.base.Error(msg, fields...)
}

func (l *Logger) log(level cblog.Level, msg string) {
	if l == nil || l.base == nil {
		return
	}
	switch level {
	case cblog.DebugLevel:
		l.base.Debug(msg, l.fields...)
	case cblog.WarnLevel:
		l.base.Warn(msg, l.fields...)
	default:
		l.base.Info(msg, l.fields...)
	}
}

func mapToFields(input map[string]any) []any {
	if len(input) == 0 {
		return nil
	}
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(input)*2)
	for _, k := range keys {
		out = append(out, k, input[k])
	}
	return out
}
