// Package debuglog writes migration decisions as JSON lines to a file.
// A nil or disabled Logger accepts every call and writes nothing.
package debuglog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultPath is the fixed path for debug logs.
const DefaultPath = "gridshift-debug.log"

// Logger logs engine events to a file.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	enabled bool
	seq     int
}

// Open creates the log file at path and writes a start entry.
// When enabled is false it returns a disabled logger.
func Open(enabled bool, path string) (*Logger, error) {
	if !enabled {
		return &Logger{}, nil
	}
	if path == "" {
		path = DefaultPath
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating debug log: %w", err)
	}

	l := &Logger{w: f, closer: f, enabled: true}
	l.Log("DEBUG_START", map[string]any{
		"log_file": path,
		"time":     time.Now().Format(time.RFC3339),
	})
	return l, nil
}

// New returns an enabled logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, enabled: true}
}

// Enabled reports whether entries are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled && l.w != nil
}

// Close writes an end entry and closes the file.
func (l *Logger) Close() error {
	if !l.Enabled() {
		return nil
	}
	l.Log("DEBUG_END", map[string]any{
		"time": time.Now().Format(time.RFC3339),
	})
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Log writes a structured entry.
func (l *Logger) Log(event string, data map[string]any) {
	if !l.Enabled() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	entry := map[string]any{
		"seq":   l.seq,
		"ts":    time.Now().Format("15:04:05.000"),
		"event": event,
	}
	for k, v := range data {
		entry[k] = v
	}

	b, _ := json.Marshal(entry)
	_, _ = fmt.Fprintf(l.w, "%s\n", b)
}

// Error logs an error with the operation it came from.
func (l *Logger) Error(op string, err error) {
	if !l.Enabled() || err == nil {
		return
	}
	l.Log("ERROR", map[string]any{
		"op":    op,
		"error": err.Error(),
	})
}
