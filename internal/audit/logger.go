package audit

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Shrike-Security/shrike-guard-go/guard"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
	Source     string    `json:"source"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	ThreatType string    `json:"threat_type,omitempty"`
	Severity   string    `json:"severity,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	FailMode   string    `json:"fail_mode,omitempty"`
	DurationMS float64   `json:"duration_ms,omitempty"`
}

// Logger writes JSON-line audit log entries.
type Logger struct {
	mu     sync.Mutex
	writer io.Writer
	enc    *json.Encoder
}

// NewLogger creates a new audit logger writing to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{
		writer: w,
		enc:    json.NewEncoder(w),
	}
}

// NewFileLogger creates a logger that writes to a file at the given path.
// Creates the file if it doesn't exist, appends if it does.
func NewFileLogger(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return NewLogger(f), nil
}

// NewStderrLogger creates a logger that writes to stderr.
func NewStderrLogger() *Logger {
	return NewLogger(os.Stderr)
}

// Log writes a single audit entry as a JSON line.
func (l *Logger) Log(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

// OnEvent records a scan decision. It satisfies guard.Observer so the
// logger can be registered directly on an interceptor. Write errors are
// swallowed; audit logging must never interfere with request handling.
func (l *Logger) OnEvent(ev guard.Event) {
	_ = l.Log(Entry{
		Timestamp:  ev.Timestamp,
		RequestID:  ev.RequestID,
		Source:     ev.Source,
		Kind:       string(ev.Kind),
		Status:     string(ev.Status),
		ThreatType: ev.ThreatType,
		Severity:   ev.Severity,
		Confidence: ev.Confidence,
		Reason:     ev.Reason,
		FailMode:   string(ev.FailMode),
		DurationMS: float64(ev.Duration) / 1e6,
	})
}

// NopLogger returns a logger that discards all entries.
func NopLogger() *Logger {
	return NewLogger(io.Discard)
}
