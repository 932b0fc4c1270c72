package autoinstall

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Document is a parsed autoinstall buffer.
type Document struct {
	// Value is the JSON-compatible form of the root mapping, used for schema checks.
	Value map[string]any

	text    string
	marker  string
	header  string
	node    *yaml.Node
	spliced string
}

// Parse parses text into a Document. The marker line, when present, is kept
// aside so that Encode can write it back verbatim.
func Parse(text, marker string) (*Document, error) {
	header, body := splitHeader(text, marker)

	dec := yaml.NewDecoder(strings.NewReader(body))
	var node yaml.Node
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Message: ErrRootNotObject.Error(), Err: ErrRootNotObject}
		}
		return nil, newSyntaxError(err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, &SyntaxError{Message: ErrMultipleDocuments.Error(), Line: extra.Line, Err: ErrMultipleDocuments}
	} else if !errors.Is(err, io.EOF) {
		return nil, newSyntaxError(err)
	}

	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, newSyntaxError(err)
	}
	normalized, err := normalizeValue(raw)
	if err != nil {
		return nil, &UnexpectedError{Err: fmt.Errorf("normalize document: %w", err)}
	}
	root, ok := normalized.(map[string]any)
	if !ok {
		return nil, &SyntaxError{Message: ErrRootNotObject.Error(), Line: node.Line, Err: ErrRootNotObject}
	}

	return &Document{Value: root, text: text, marker: marker, header: header, node: &node}, nil
}

// Render returns the text of the document after InjectVersion. The source text
// edited in place is preferred, so comments and formatting stay as written.
// Otherwise the node tree is encoded.
func (d *Document) Render() (string, error) {
	if d.spliced == "" {
		return d.Encode()
	}
	if !strings.HasSuffix(d.spliced, "\n") {
		return d.spliced + "\n", nil
	}
	return d.spliced, nil
}

// Encode serializes the node tree with key order, head and line comments
// preserved. yaml.v3 may move or drop foot comments.
func (d *Document) Encode() (string, error) {
	untagMergeKeys(d.node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.node); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if d.header == "" {
		return buf.String(), nil
	}
	return d.header + "\n" + buf.String(), nil
}

// splitHeader separates the marker line from the body. The body keeps the
// line break so parser line numbers match the original text.
func splitHeader(text, marker string) (string, string) {
	if marker == "" || !strings.HasPrefix(text, marker) {
		return "", text
	}
	idx := strings.IndexByte(text, '\n')
	if idx < 0 {
		return text, ""
	}
	return strings.TrimRight(text[:idx], "\r"), text[idx:]
}

func (d *Document) root() *yaml.Node {
	if d.node == nil || len(d.node.Content) == 0 {
		return nil
	}
	return resolve(d.node.Content[0])
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	_, value := lookupPair(mapping, key)
	return resolve(value)
}

// lookupPair returns the key node and the unresolved value node of key.
func lookupPair(mapping *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if k := mapping.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
			return k, mapping.Content[i+1]
		}
	}
	return nil, nil
}

// untagMergeKeys drops the explicit !!merge tag the encoder would print on
// "<<" keys. The plain key resolves to a merge again on parse.
func untagMergeKeys(node *yaml.Node) {
	if node == nil {
		return
	}
	if node.Kind == yaml.ScalarNode && node.Value == "<<" && node.Tag == "!!merge" {
		node.Tag = ""
	}
	for _, child := range node.Content {
		untagMergeKeys(child)
	}
}
