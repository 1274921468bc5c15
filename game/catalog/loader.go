package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_terms.yaml
var embeddedTerms []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// document is the on-disk layout shared by the JSON and YAML formats.
type document struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Terms []Term `json:"terms" yaml:"terms"`
}

// Format identifies a catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Parse decodes a catalog document.
func Parse(data []byte, format Format) ([]Term, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalog format %q", format)
	}
	return doc.Terms, nil
}

// LoadFile reads and indexes a catalog file.
func LoadFile(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	terms, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("catalog %s contains no terms", path)
	}

	return New(terms), nil
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		terms, err := Parse(embeddedTerms, FormatYAML)
		if err != nil {
			// The embedded file is part of the build; a parse failure is a programming error.
			panic(err)
		}
		defaultCatalog = New(terms)
	})
	return defaultCatalog
}
