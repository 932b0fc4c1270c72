package session

import (
	"context"
	"log/slog"

	"github.com/codex-k8s/autoinstall-validator/internal/audit"
	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
	"github.com/codex-k8s/autoinstall-validator/internal/buffer"
	"github.com/codex-k8s/autoinstall-validator/internal/report"
)

const auditSource = "session"

// Session holds the buffer of an interactive run.
type Session struct {
	// Buffer is the current text.
	Buffer string
	// Path is the file the buffer was last opened from or saved to.
	Path string

	validator *autoinstall.Validator
	logger    *slog.Logger
	audit     audit.Logger
}

// New returns a session starting with text.
func New(v *autoinstall.Validator, text string, logger *slog.Logger, auditLogger audit.Logger) *Session {
	return &Session{Buffer: text, validator: v, logger: logger, audit: auditLogger}
}

// Open replaces the buffer with the content of path.
func (s *Session) Open(ctx context.Context, path string) []report.Report {
	text, err := buffer.Open(path)
	if err != nil {
		return s.finish(ctx, audit.TypeOpen, path, []report.Report{report.FromError(err)})
	}
	s.Buffer = text
	s.Path = path
	return s.finish(ctx, audit.TypeOpen, path, []report.Report{report.Loaded(path)})
}

// Validate runs the validate-and-correct procedure and keeps the corrected text.
func (s *Session) Validate(ctx context.Context) []report.Report {
	res := s.validator.Run(s.Buffer)
	s.Buffer = res.Text
	return s.finish(ctx, audit.TypeValidate, s.Path, report.FromResult(res))
}

// Save writes the buffer to path.
func (s *Session) Save(ctx context.Context, path string) []report.Report {
	written, err := buffer.Save(path, s.Buffer, s.validator.Rules().Marker)
	if err != nil {
		return s.finish(ctx, audit.TypeSave, path, []report.Report{report.FromError(err)})
	}
	s.Path = written
	return s.finish(ctx, audit.TypeSave, written, []report.Report{report.Saved(written)})
}

func (s *Session) finish(ctx context.Context, eventType, file string, reports []report.Report) []report.Report {
	event := audit.FromReports(eventType, auditSource, file, reports)
	if s.logger != nil {
		s.logger.Debug("session operation", "type", eventType, "file", file, "outcome", event.Outcome)
	}
	if s.audit != nil {
		s.audit.Record(ctx, event)
	}
	return reports
}
