// Package notify delivers user-facing notifications about lock activity.
//
// Notifications are fire-and-forget: a Sink never returns an error and
// never blocks the sync loop on delivery.
package notify

import (
	"sync"

	"github.com/Iron-Ham/lfslocker/internal/logging"
)

// Level is the urgency of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Sink receives notifications.
type Sink interface {
	Info(message string)
	Warning(message string)
	Error(message string)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Info(string)    {}
func (Nop) Warning(string) {}
func (Nop) Error(string)   {}

// LogSink writes notifications to a logger. Used when desktop
// notifications are disabled or unavailable.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a sink that logs at the matching level.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &LogSink{logger: logger.With("component", "notify")}
}

func (s *LogSink) Info(message string)    { s.logger.Info(message) }
func (s *LogSink) Warning(message string) { s.logger.Warn(message) }
func (s *LogSink) Error(message string)   { s.logger.Error(message) }

// Multi fans out to several sinks in order.
type Multi []Sink

func (m Multi) Info(message string) {
	for _, s := range m {
		s.Info(message)
	}
}

func (m Multi) Warning(message string) {
	for _, s := range m {
		s.Warning(message)
	}
}

func (m Multi) Error(message string) {
	for _, s := range m {
		s.Error(message)
	}
}

// Message is one recorded notification.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification in memory. It backs tests and the
// dry-run status report.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Info(message string)    { r.add(LevelInfo, message) }
func (r *Recorder) Warning(message string) { r.add(LevelWarning, message) }
func (r *Recorder) Error(message string)   { r.add(LevelError, message) }

func (r *Recorder) add(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: text})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset clears recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

// Ensure implementations satisfy Sink at compile time.
var (
	_ Sink = Nop{}
	_ Sink = (*LogSink)(nil)
	_ Sink = Multi(nil)
	_ Sink = (*Recorder)(nil)
	_ Sink = (*Desktop)(nil)
)
