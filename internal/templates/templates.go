package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"
)

//go:embed data/*.json
var files embed.FS

// DefaultLang is used when the requested language has no bundle. Its
// messages also back keys missing from other bundles.
const DefaultLang = "en"

// Languages lists the available bundles.
var Languages = []string{"en", "pt"}

// Renderer renders localized messages by key.
type Renderer interface {
	// Render returns a localized message by key.
	Render(key string, data any) (string, error)
}

// Bundle holds the parsed messages of one language.
type Bundle struct {
	lang     string
	messages map[string]*template.Template
	fallback *Bundle
}

// Load returns the bundle for lang. Region and encoding suffixes are
// ignored, so "pt_BR.UTF-8" and "pt-BR" select "pt".
func Load(lang string) (*Bundle, error) {
	lang = Normalize(lang)
	b, err := parse(lang)
	if err != nil {
		return nil, err
	}
	if lang != DefaultLang {
		if b.fallback, err = parse(DefaultLang); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Normalize maps a locale string to one of Languages.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if idx := strings.IndexAny(lang, "_-."); idx > 0 {
		lang = lang[:idx]
	}
	if !slices.Contains(Languages, lang) {
		return DefaultLang
	}
	return lang
}

func parse(lang string) (*Bundle, error) {
	raw, err := files.ReadFile("data/" + lang + ".json")
	if err != nil {
		return nil, fmt.Errorf("read messages %s: %w", lang, err)
	}
	var texts map[string]string
	if err := json.Unmarshal(raw, &texts); err != nil {
		return nil, fmt.Errorf("parse messages %s: %w", lang, err)
	}

	b := &Bundle{lang: lang, messages: make(map[string]*template.Template, len(texts))}
	for key, text := range texts {
		tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse message %s/%s: %w", lang, key, err)
		}
		b.messages[key] = tmpl
	}
	return b, nil
}

// Lang returns the bundle language.
func (b *Bundle) Lang() string {
	if b == nil {
		return ""
	}
	return b.lang
}

// Keys returns the message keys of the bundle, sorted.
func (b *Bundle) Keys() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.messages))
}

// Render renders a message by key with the supplied data.
func (b *Bundle) Render(key string, data any) (string, error) {
	if b == nil {
		return "", fmt.Errorf("messages bundle is nil")
	}
	tmpl, ok := b.messages[key]
	if !ok {
		if b.fallback != nil {
			return b.fallback.Render(key, data)
		}
		return "", fmt.Errorf("message not found: %s", key)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render message %s: %w", key, err)
	}
	return out.String(), nil
}
