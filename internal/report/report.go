package report

import (
	"errors"

	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
	"github.com/codex-k8s/autoinstall-validator/internal/buffer"
)

// Report kinds. Each kind is also a message key in the template bundles.
const (
	KindHeaderAdded     = "header_added"
	KindVersionAdded    = "version_added"
	KindSyntaxError     = "syntax_error"
	KindValidationError = "validation_error"
	KindValid           = "valid"
	KindUnexpectedError = "unexpected_error"
	KindIOError         = "io_error"
	KindFileLoaded      = "file_loaded"
	KindFileSaved       = "file_saved"
)

// Report statuses.
const (
	StatusSuccess = "success"
	StatusNotice  = "notice"
	StatusError   = "error"
)

// Kinds lists every report kind.
var Kinds = []string{
	KindHeaderAdded,
	KindVersionAdded,
	KindSyntaxError,
	KindValidationError,
	KindValid,
	KindUnexpectedError,
	KindIOError,
	KindFileLoaded,
	KindFileSaved,
}

// Report is a single user-facing message.
type Report struct {
	// Kind identifies the message.
	Kind string `json:"kind"`
	// Status is success, notice or error.
	Status string `json:"status"`
	// Message carries diagnostic details.
	Message string `json:"message,omitempty"`
	// Path holds the keys leading to a validation failure.
	Path []string `json:"path,omitempty"`
	// Line is the line of a syntax error.
	Line int `json:"line,omitempty"`
	// File is the file involved in an IO report.
	File string `json:"file,omitempty"`
}

// Location renders Path as a dotted key path.
func (r Report) Location() string {
	return autoinstall.FormatPath(r.Path)
}

// Failed reports whether r is an error report.
func (r Report) Failed() bool {
	return r.Status == StatusError
}

// Response is the JSON document returned by the MCP tool and `validate --json`.
type Response struct {
	// Status is the status of the terminal report.
	Status string `json:"status"`
	// Valid is true when the document passed the schema.
	Valid bool `json:"valid"`
	// Changed is true when corrections were applied.
	Changed bool `json:"changed"`
	// Content is the corrected buffer.
	Content string `json:"content"`
	// Reports lists correction notices followed by the terminal report.
	Reports []Report `json:"reports"`
}

// FromResult converts a procedure result into ordered reports.
func FromResult(res autoinstall.Result) []Report {
	reports := make([]Report, 0, len(res.Corrections)+1)
	for _, c := range res.Corrections {
		switch c {
		case autoinstall.CorrectionHeader:
			reports = append(reports, Report{Kind: KindHeaderAdded, Status: StatusNotice})
		case autoinstall.CorrectionVersion:
			reports = append(reports, Report{Kind: KindVersionAdded, Status: StatusNotice})
		}
	}
	if res.Err == nil {
		return append(reports, Report{Kind: KindValid, Status: StatusSuccess})
	}
	return append(reports, FromError(res.Err))
}

// FromError classifies err into a terminal error report.
func FromError(err error) Report {
	var syntaxErr *autoinstall.SyntaxError
	var validationErr *autoinstall.ValidationError
	var ioErr *buffer.IOError
	switch {
	case errors.As(err, &syntaxErr):
		return Report{Kind: KindSyntaxError, Status: StatusError, Message: syntaxErr.Message, Line: syntaxErr.Line}
	case errors.As(err, &validationErr):
		path := validationErr.Path
		if path == nil {
			path = []string{}
		}
		return Report{Kind: KindValidationError, Status: StatusError, Message: validationErr.Message, Path: path}
	case errors.As(err, &ioErr):
		return Report{Kind: KindIOError, Status: StatusError, Message: ioErr.Err.Error(), File: ioErr.Path}
	default:
		var unexpected *autoinstall.UnexpectedError
		if errors.As(err, &unexpected) {
			err = unexpected.Err
		}
		return Report{Kind: KindUnexpectedError, Status: StatusError, Message: err.Error()}
	}
}

// NewResponse builds the JSON response for a procedure result.
func NewResponse(res autoinstall.Result) Response {
	reports := FromResult(res)
	return Response{
		Status:  reports[len(reports)-1].Status,
		Valid:   res.Valid(),
		Changed: res.Changed(),
		Content: res.Text,
		Reports: reports,
	}
}

// Loaded reports a successful file open.
func Loaded(path string) Report {
	return Report{Kind: KindFileLoaded, Status: StatusSuccess, File: path}
}

// Saved reports a successful file save.
func Saved(path string) Report {
	return Report{Kind: KindFileSaved, Status: StatusSuccess, File: path}
}

// AnyFailed reports whether any report is an error.
func AnyFailed(reports []Report) bool {
	for _, r := range reports {
		if r.Failed() {
			return true
		}
	}
	return false
}
