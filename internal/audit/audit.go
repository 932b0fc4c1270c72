package audit

import (
	"context"
	"log/slog"

	"github.com/codex-k8s/autoinstall-validator/internal/report"
)

// Event types.
const (
	TypeValidate = "validate"
	TypeOpen     = "open"
	TypeSave     = "save"
)

// Event represents an audit entry for a validation run or a file operation.
type Event struct {
	// Type describes the event kind.
	Type string
	// Source names the caller (cli, session, mcp).
	Source string
	// File is the file involved, if any.
	File string
	// Outcome is the kind of the terminal report.
	Outcome string
	// Location is the path of a validation failure.
	Location string
	// Changed is true when corrections were applied.
	Changed bool
	// Reason provides additional context.
	Reason string
}

// Logger records audit events.
type Logger interface {
	// Record stores an audit event.
	Record(ctx context.Context, event Event)
}

// StdLogger writes audit events to slog.
type StdLogger struct {
	logger *slog.Logger
}

// New returns a StdLogger.
func New(logger *slog.Logger) *StdLogger {
	return &StdLogger{logger: logger}
}

// Record logs an audit event.
func (l *StdLogger) Record(ctx context.Context, event Event) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.InfoContext(ctx, "audit",
		"type", event.Type,
		"source", event.Source,
		"file", event.File,
		"outcome", event.Outcome,
		"location", event.Location,
		"changed", event.Changed,
		"reason", event.Reason,
	)
}

// FromReports builds an event from the reports of one operation. The last
// report is the terminal one.
func FromReports(eventType, source, file string, reports []report.Report) Event {
	event := Event{Type: eventType, Source: source, File: file}
	for _, r := range reports {
		if r.Kind == report.KindHeaderAdded || r.Kind == report.KindVersionAdded {
			event.Changed = true
		}
	}
	if len(reports) == 0 {
		return event
	}
	last := reports[len(reports)-1]
	event.Outcome = last.Kind
	event.Reason = last.Message
	if last.Kind == report.KindValidationError {
		event.Location = last.Location()
	}
	return event
}
