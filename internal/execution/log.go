package execution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Severity grades a log entry.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// ParseSeverity maps a name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityInfo, SeverityWarn, SeverityError:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// Logger is the log sink blocks write to.
//
// Contract:
//   - Logging is best-effort; Log must not panic.
//   - The message is final text; the sink does not format it further.
type Logger interface {
	Log(message string, severity Severity)
}

// BlockTracker is implemented by sinks that tag entries with the index of
// the block that wrote them. The run loop calls SetBlock before each block.
type BlockTracker interface {
	SetBlock(index int)
}

// Entry is one recorded log line.
type Entry struct {
	Seq      int64    `json:"seq"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Block    int      `json:"block"` // index of the block that logged, -1 outside blocks
}

// Recorder keeps entries in memory, stamped with logical sequence numbers.
//
// Thread-safety: safe for concurrent use. Entries are appended in call order.
type Recorder struct {
	mu      sync.Mutex
	clock   *Clock
	block   int
	entries []Entry
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{clock: NewClock(), block: -1}
}

// Log implements Logger.
func (r *Recorder) Log(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Seq:      r.clock.Next(),
		Severity: severity,
		Message:  message,
		Block:    r.block,
	})
}

// SetBlock records which block subsequent entries belong to.
func (r *Recorder) SetBlock(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.block = index
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// SlogLogger forwards entries to a slog.Logger.
type SlogLogger struct {
	Logger *slog.Logger
}

// Log implements Logger.
func (l SlogLogger) Log(message string, severity Severity) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), severity.level(), message, "source", "script")
}

func (s Severity) level() slog.Level {
	switch s {
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Tee fans entries out to several sinks.
type Tee []Logger

// Log implements Logger.
func (t Tee) Log(message string, severity Severity) {
	for _, l := range t {
		if l != nil {
			l.Log(message, severity)
		}
	}
}

// SetBlock forwards to every sink that tracks blocks.
func (t Tee) SetBlock(index int) {
	for _, l := range t {
		if bt, ok := l.(BlockTracker); ok {
			bt.SetBlock(index)
		}
	}
}

// discard drops everything; used when a Context is built without a sink.
type discard struct{}

func (discard) Log(string, Severity) {}
