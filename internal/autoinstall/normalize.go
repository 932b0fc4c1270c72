package autoinstall

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// InjectVersion adds the default version as the first key of the section when
// the section is a mapping without one. It reports whether the document changed.
// Render returns the resulting text.
func (d *Document) InjectVersion(rules Rules) bool {
	section, ok := d.Value[rules.Section].(map[string]any)
	if !ok {
		return false
	}
	if _, exists := section[rules.VersionKey]; exists {
		return false
	}
	key, raw := lookupPair(d.root(), rules.Section)
	node := resolve(raw)
	if node == nil || node.Kind != yaml.MappingNode {
		return false
	}

	version := strconv.Itoa(rules.DefaultVersion)
	entry := rules.VersionKey + ": " + version
	var (
		spliced string
		inPlace bool
	)
	if raw == node {
		spliced, inPlace = spliceEntry(d.text, key, node, entry)
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: rules.VersionKey}
	valueNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: version}
	node.Content = append([]*yaml.Node{keyNode, valueNode}, node.Content...)
	section[rules.VersionKey] = json.Number(version)

	if inPlace && d.decodesToValue(spliced) {
		d.spliced = spliced
	}
	return true
}

// spliceEntry inserts entry as the first pair of the section mapping directly
// in text. Block sections get a new line after the section key, indented like
// the first existing key. Flow sections get the pair right after "{".
func spliceEntry(text string, key, section *yaml.Node, entry string) (string, bool) {
	lines := strings.SplitAfter(text, "\n")

	if section.Style&yaml.FlowStyle != 0 {
		idx := section.Line - 1
		if idx < 0 || idx >= len(lines) {
			return "", false
		}
		runes := []rune(lines[idx])
		col := section.Column - 1
		if col < 0 || col >= len(runes) || runes[col] != '{' {
			return "", false
		}
		if len(section.Content) > 0 {
			entry += ", "
		}
		lines[idx] = string(runes[:col+1]) + entry + string(runes[col+1:])
		return strings.Join(lines, ""), true
	}

	if key == nil || len(section.Content) == 0 {
		return "", false
	}
	first := section.Content[0]
	if key.Line < 1 || key.Line > len(lines) || first.Line <= key.Line || first.Column < 1 {
		return "", false
	}
	keyLine := lines[key.Line-1]
	if !strings.HasSuffix(keyLine, "\n") {
		return "", false
	}
	eol := "\n"
	if strings.HasSuffix(keyLine, "\r\n") {
		eol = "\r\n"
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:key.Line]...)
	out = append(out, strings.Repeat(" ", first.Column-1)+entry+eol)
	out = append(out, lines[key.Line:]...)
	return strings.Join(out, ""), true
}

// decodesToValue reports whether text parses to the current in-memory value.
func (d *Document) decodesToValue(text string) bool {
	doc, err := Parse(text, d.marker)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(doc.Value, d.Value)
}

// normalizeValue converts a decoded YAML tree into the types produced by a
// JSON decoder with UseNumber.
func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			normalized, err := normalizeValue(val)
			if err != nil {
				return nil, err
			}
			out[key] = normalized
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			keyStr, err := scalarKey(key)
			if err != nil {
				return nil, err
			}
			normalized, err := normalizeValue(val)
			if err != nil {
				return nil, err
			}
			out[keyStr] = normalized
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			normalized, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = normalized
		}
		return out, nil
	case int:
		return json.Number(strconv.Itoa(v)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float64:
		return normalizeFloat(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case []byte:
		return string(v), nil
	default:
		return value, nil
	}
}

func normalizeFloat(v float64) any {
	switch {
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	case math.IsNaN(v):
		return ".nan"
	default:
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64))
	}
}

func scalarKey(key any) (string, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case nil:
		return "null", nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(k), nil
	case time.Time:
		return k.Format(time.RFC3339Nano), nil
	default:
		return "", fmt.Errorf("mapping key must be a scalar, got %T", key)
	}
}
