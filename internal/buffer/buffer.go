package buffer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/codex-k8s/autoinstall-validator/internal/autoinstall"
)

// DefaultExtension is appended to save paths that have no extension.
const DefaultExtension = ".yaml"

// YAMLExtensions lists the extensions offered by the open filter.
var YAMLExtensions = []string{".yaml", ".yml"}

// File operations reported in IOError.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// IOError reports a failed file open or save. The in-memory buffer is not affected.
type IOError struct {
	// Op is OpRead or OpWrite.
	Op string
	// Path is the file path involved.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// HasYAMLExtension reports whether path ends with one of YAMLExtensions.
func HasYAMLExtension(path string) bool {
	return slices.Contains(YAMLExtensions, strings.ToLower(filepath.Ext(path)))
}

// byteOrderMark is dropped from read text so the marker line can lead.
const byteOrderMark = "\ufeff"

// Open reads the whole file at path as UTF-8 text.
func Open(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &IOError{Op: OpRead, Path: path, Err: fmt.Errorf("path is empty")}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", &IOError{Op: OpRead, Path: path, Err: err}
	}
	if !utf8.Valid(raw) {
		return "", &IOError{Op: OpRead, Path: path, Err: fmt.Errorf("file is not valid UTF-8")}
	}
	return strings.TrimPrefix(string(raw), byteOrderMark), nil
}

// Read reads text from r, typically stdin.
func Read(r io.Reader, name string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", &IOError{Op: OpRead, Path: name, Err: err}
	}
	if !utf8.Valid(raw) {
		return "", &IOError{Op: OpRead, Path: name, Err: fmt.Errorf("input is not valid UTF-8")}
	}
	return strings.TrimPrefix(string(raw), byteOrderMark), nil
}

// Save writes text to path and returns the path actually written. The marker
// line is enforced, a trailing newline is added and DefaultExtension is
// appended when path has no extension.
func Save(path, text, marker string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &IOError{Op: OpWrite, Path: path, Err: fmt.Errorf("path is empty")}
	}
	if filepath.Ext(path) == "" {
		path += DefaultExtension
	}
	content, _ := autoinstall.EnsureHeader(text, marker)
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", &IOError{Op: OpWrite, Path: path, Err: err}
	}
	return path, nil
}
