package autoinstall

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SchemaURL identifies the embedded schema.
const SchemaURL = "https://codex-k8s.github.io/autoinstall-validator/autoinstall.schema.json"

//go:embed schemas/autoinstall.schema.json
var schemaJSON []byte

var printer = message.NewPrinter(language.English)

// SchemaJSON returns a copy of the embedded JSON Schema document.
func SchemaJSON() []byte {
	return bytes.Clone(schemaJSON)
}

// Validator runs the validate-and-correct procedure with fixed rules and schema.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	rules  Rules
	schema *jsonschema.Schema
}

// New compiles the embedded schema and returns a Validator.
func New(rules Rules) (*Validator, error) {
	if strings.TrimSpace(rules.Marker) == "" {
		return nil, fmt.Errorf("marker is required")
	}
	if rules.Section == "" || rules.VersionKey == "" {
		return nil, fmt.Errorf("section and version key are required")
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Validator{rules: rules, schema: schema}, nil
}

// Rules returns the rules the validator was built with.
func (v *Validator) Rules() Rules {
	return v.rules
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(SchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(SchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Check validates a JSON-compatible instance and returns the first violation.
func (v *Validator) Check(instance any) error {
	err := v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &UnexpectedError{Err: err}
	}
	return firstViolation(verr)
}

// firstViolation picks the shallowest leaf error so the report is stable
// regardless of the order the validator visited properties in.
func firstViolation(root *jsonschema.ValidationError) *ValidationError {
	var leaves []*jsonschema.ValidationError
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(root)

	slices.SortStableFunc(leaves, func(a, b *jsonschema.ValidationError) int {
		if len(a.InstanceLocation) != len(b.InstanceLocation) {
			return len(a.InstanceLocation) - len(b.InstanceLocation)
		}
		if c := strings.Compare(strings.Join(a.InstanceLocation, "/"), strings.Join(b.InstanceLocation, "/")); c != 0 {
			return c
		}
		return strings.Compare(keyword(a), keyword(b))
	})

	first := leaves[0]
	return &ValidationError{
		Message: first.ErrorKind.LocalizedString(printer),
		Path:    slices.Clone(first.InstanceLocation),
		Keyword: keyword(first),
	}
}

func keyword(e *jsonschema.ValidationError) string {
	if e.ErrorKind == nil {
		return ""
	}
	path := e.ErrorKind.KeywordPath()
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}
