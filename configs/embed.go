package configs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

// DefaultSample is the document an edit session starts from.
const DefaultSample = "server.yaml"

//go:embed *.yaml
var embeddedSamples embed.FS

// Names returns the list of embedded sample filenames.
func Names() []string {
	entries, err := fs.Glob(embeddedSamples, "*.yaml")
	if err != nil {
		return nil
	}
	sort.Strings(entries)
	return entries
}

// Load returns the embedded sample by filename.
func Load(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("sample name is empty")
	}
	data, err := fs.ReadFile(embeddedSamples, name)
	if err != nil {
		return "", fmt.Errorf("read embedded sample %q: %w", name, err)
	}
	return string(data), nil
}
