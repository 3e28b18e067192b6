// Package logging builds the lab's leveled slog.Logger and the optional
// JSONL session journal.
//   - NewLogger writes operational output (stderr by default)
//   - Journal appends lab events (launches, landings, measured periods,
//     challenge results) to <data_dir>/journal.jsonl
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug and is used for per-tick values.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps "info", "debug" or "trace" (any case) to a slog.Level.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// Trace logs at LevelTrace.
func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// Journal writes lab events as JSON lines. A nil Journal is valid and
// every method on it is a no-op.
type Journal struct {
	mu     sync.Mutex
	file   *os.File
	logger *slog.Logger
	err    error
}

// OpenJournal opens dir/journal.jsonl for append. It returns nil if the
// file cannot be opened.
func OpenJournal(dir string) *Journal {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "journal.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return &Journal{file: f}
}

// WithLogger sets where the first journal failure is reported.
func (j *Journal) WithLogger(l *slog.Logger) *Journal {
	if j != nil {
		j.logger = l
	}
	return j
}

// Err is the first error the journal hit, if any.
func (j *Journal) Err() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// fail records err. Only the first failure is logged.
func (j *Journal) fail(err error) {
	if j.err != nil {
		return
	}
	j.err = err
	if j.logger != nil {
		j.logger.Warn("journal: write failed, further errors suppressed", "path", j.file.Name(), "err", err)
	}
}

// Log appends event with a "time" field added. The caller's map is not
// mutated.
func (j *Journal) Log(event map[string]any) {
	if j == nil || j.file == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		j.fail(err)
		return
	}
	data = append(data, '\n')
	if _, err := j.file.Write(data); err != nil {
		j.fail(err)
	}
}

func (j *Journal) Close() {
	if j == nil || j.file == nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.file.Close()
	j.file = nil
}
