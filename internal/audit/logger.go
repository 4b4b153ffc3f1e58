package audit

import (
	"github.com/rs/zerolog"
)

// Event levels
const (
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

// Event is a single audit record emitted for security-relevant actions
type Event struct {
	Level    string
	UserID   string
	Action   string
	Resource string
	Success  bool
	ErrorMsg string
	Metadata string
}

// Logger emits structured audit events through the process logger
type Logger struct {
	log zerolog.Logger
}

// NewLogger creates an audit logger on top of the given zerolog logger
func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Str("component", "audit").Logger()}
}

// Log emits one audit event
func (l *Logger) Log(e *Event) {
	var evt *zerolog.Event
	switch e.Level {
	case LevelCritical, LevelError:
		evt = l.log.Error()
	case LevelWarning:
		evt = l.log.Warn()
	default:
		evt = l.log.Info()
	}

	evt = evt.
		Str("action", e.Action).
		Str("resource", e.Resource).
		Bool("success", e.Success)

	if e.UserID != "" {
		evt = evt.Str("userId", e.UserID)
	}
	if e.ErrorMsg != "" {
		evt = evt.Str("error", e.ErrorMsg)
	}
	if e.Metadata != "" {
		evt = evt.Str("metadata", e.Metadata)
	}

	evt.Msg("audit")
}
