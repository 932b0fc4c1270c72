package autoinstall

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrRootNotObject is reported when the document root is not a mapping.
var ErrRootNotObject = errors.New("root is not an object")

// ErrMultipleDocuments is reported when the stream holds more than one YAML document.
var ErrMultipleDocuments = errors.New("multiple documents are not supported")

var lineRe = regexp.MustCompile(`line (\d+)`)

// SyntaxError means the text is not a YAML mapping.
type SyntaxError struct {
	// Message is the parser diagnostic.
	Message string
	// Line is the 1-based line reported by the parser, 0 when unknown.
	Line int
	// Err is the underlying error.
	Err error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 && !strings.Contains(e.Message, "line ") {
		return fmt.Sprintf("syntax error: line %d: %s", e.Line, e.Message)
	}
	return "syntax error: " + e.Message
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func newSyntaxError(err error) *SyntaxError {
	msg := strings.TrimSpace(strings.TrimPrefix(err.Error(), "yaml: "))
	msg = strings.TrimSpace(strings.TrimPrefix(msg, "unmarshal errors:"))
	line := 0
	if m := lineRe.FindStringSubmatch(msg); m != nil {
		line, _ = strconv.Atoi(m[1])
	}
	return &SyntaxError{Message: msg, Line: line, Err: err}
}

// ValidationError is the first schema violation found in a document.
type ValidationError struct {
	// Message describes the violation.
	Message string
	// Path holds the keys leading to the offending node, empty for the root.
	Path []string
	// Keyword is the schema keyword that failed.
	Keyword string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error at %s: %s", e.Location(), e.Message)
}

// Location renders Path as a dotted key path.
func (e *ValidationError) Location() string {
	return FormatPath(e.Path)
}

// UnexpectedError wraps failures outside the syntax and validation classes.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return "unexpected error: " + e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// FormatPath joins a key path with dots; the root renders as "(root)".
func FormatPath(path []string) string {
	if len(path) == 0 {
		return "(root)"
	}
	return strings.Join(path, ".")
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var syntaxErr *SyntaxError
	var validationErr *ValidationError
	var unexpectedErr *UnexpectedError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &validationErr), errors.As(err, &unexpectedErr):
		return err
	default:
		return &UnexpectedError{Err: err}
	}
}
