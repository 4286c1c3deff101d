// Package gridfile loads parameter grids from YAML or JSON documents.
package gridfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
)

// Sentinel errors.
var (
	// ErrSchema is matched by every schema violation.
	ErrSchema = errors.New("grid does not match schema")
	// ErrUnsupportedFormat is returned for unknown file extensions or format names.
	ErrUnsupportedFormat = errors.New("unsupported grid format")
)

// Schema is the JSON schema grid documents are validated against.
//
//go:embed schema.json
var Schema []byte

// Format is a grid document encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Grid is a named list of configuration dictionaries.
type Grid struct {
	Name        string
	Description string
	configs     []paramspace.Config
}

// Configs returns the grid's configuration dictionaries.
func (g *Grid) Configs() []paramspace.Config {
	out := make([]paramspace.Config, len(g.configs))
	copy(out, g.configs)

	return out
}

// Build creates a space from the grid.
func (g *Grid) Build(opts ...paramspace.Option) (*paramspace.Space, error) {
	return paramspace.NewFrom(g.configs, opts...)
}

// Issue is one schema violation.
type Issue struct {
	Field       string `json:"field"       yaml:"field"`
	Description string `json:"description" yaml:"description"`
}

// SchemaError lists every schema violation in a document. It matches ErrSchema.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Description)
	}

	return fmt.Sprintf("%s: %s", ErrSchema, strings.Join(parts, "; "))
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Load reads and validates a grid file.
func Load(path string) (*Grid, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid: %w", err)
	}
	defer f.Close()

	grid, parseErr := Parse(f, format)
	if parseErr != nil {
		return nil, fmt.Errorf("%s: %w", path, parseErr)
	}

	return grid, nil
}

// Parse decodes and validates a grid document.
func Parse(r io.Reader, format Format) (*Grid, error) {
	doc, err := Decode(r, format)
	if err != nil {
		return nil, err
	}

	validateErr := Validate(doc)
	if validateErr != nil {
		return nil, validateErr
	}

	return fromDocument(doc), nil
}

// Decode reads a document without validating it.
func Decode(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}

	var doc any

	switch format {
	case FormatYAML:
		yamlErr := yaml.Unmarshal(data, &doc)
		if yamlErr != nil {
			return nil, fmt.Errorf("decode yaml: %w", yamlErr)
		}

		doc = normalize(doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		jsonErr := dec.Decode(&doc)
		if jsonErr != nil {
			return nil, fmt.Errorf("decode json: %w", jsonErr)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return doc, nil
}

// Validate checks a decoded document against Schema. Violations are
// returned as a *SchemaError.
func Validate(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(Schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate grid: %w", err)
	}

	if result.Valid() {
		return nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, resErr := range result.Errors() {
		issues = append(issues, Issue{Field: resErr.Field(), Description: resErr.Description()})
	}

	return &SchemaError{Issues: issues}
}

func fromDocument(doc any) *Grid {
	m, _ := doc.(map[string]any)

	grid := &Grid{}
	grid.Name, _ = m["name"].(string)
	grid.Description, _ = m["description"].(string)

	list, _ := m["configs"].([]any)
	for _, item := range list {
		cfg, _ := item.(map[string]any)
		grid.configs = append(grid.configs, paramspace.Config(cfg))
	}

	return grid
}

// normalize turns YAML mappings with non-string keys into string-keyed maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}

		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}

		return out
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}

		return t
	default:
		return v
	}
}
