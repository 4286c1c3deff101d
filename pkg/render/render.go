// Package render writes spaces, rows and hydrated configurations as tables,
// JSON or YAML.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
)

// ErrUnknownFormat is returned for unsupported output format names.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported format names.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(name))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}

	return f, nil
}

// Summary describes a space.
type Summary struct {
	Name   string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Rows   int                    `json:"rows"           yaml:"rows"`
	Stores []paramspace.StoreInfo `json:"stores"         yaml:"stores"`
}

// SummaryOf builds the summary of space.
func SummaryOf(name string, space *paramspace.Space) Summary {
	return Summary{Name: name, Rows: space.Len(), Stores: space.Describe()}
}

// Entry is one row of a space, optionally hydrated.
type Entry struct {
	Index  int            `json:"index"            yaml:"index"`
	Row    string         `json:"row"              yaml:"row"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Page is a window of rows.
type Page struct {
	Total  int     `json:"total"  yaml:"total"`
	Offset int     `json:"offset" yaml:"offset"`
	Rows   []Entry `json:"rows"   yaml:"rows"`
}

// PageOf returns up to limit rows starting at offset. A limit of zero
// returns every remaining row. With hydrate set each entry carries its
// hydrated configuration.
func PageOf(space *paramspace.Space, offset, limit int, hydrate bool) (Page, error) {
	total := space.Len()
	offset = min(max(offset, 0), total)

	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}

	page := Page{Total: total, Offset: offset, Rows: make([]Entry, 0, end-offset)}

	for i := offset; i < end; i++ {
		row, err := space.Row(i)
		if err != nil {
			return Page{}, err
		}

		entry := Entry{Index: i, Row: row.String()}

		if hydrate {
			cfg, hydrateErr := space.HydrateRow(row)
			if hydrateErr != nil {
				return Page{}, fmt.Errorf("row %d: %w", i, hydrateErr)
			}

			entry.Config = cfg
		}

		page.Rows = append(page.Rows, entry)
	}

	return page, nil
}

// Renderer writes values to an output in one format.
type Renderer struct {
	out    io.Writer
	format Format
}

// New creates a renderer.
func New(out io.Writer, format Format) *Renderer {
	return &Renderer{out: out, format: format}
}

// Summary writes a space summary.
func (r *Renderer) Summary(s Summary) error {
	if r.format != FormatTable {
		return r.encode(s)
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Parameter", "Kind", "Size"})

	for _, st := range s.Stores {
		tbl.AppendRow(table.Row{st.Name, st.Kind, humanize.Comma(int64(st.Size))})
	}

	tbl.AppendFooter(table.Row{"Rows", "", humanize.Comma(int64(s.Rows))})

	title := "space"
	if s.Name != "" {
		title = s.Name
	}

	return r.printf("%s\n%s\n", title, tbl.Render())
}

// Page writes a window of rows.
func (r *Renderer) Page(p Page) error {
	if r.format != FormatTable {
		return r.encode(p)
	}

	tbl := newTable()

	hydrated := len(p.Rows) > 0 && p.Rows[0].Config != nil
	if hydrated {
		tbl.AppendHeader(table.Row{"Index", "Row", "Config"})
	} else {
		tbl.AppendHeader(table.Row{"Index", "Row"})
	}

	for _, e := range p.Rows {
		if hydrated {
			tbl.AppendRow(table.Row{e.Index, e.Row, Compact(e.Config)})
		} else {
			tbl.AppendRow(table.Row{e.Index, e.Row})
		}
	}

	tbl.AppendFooter(table.Row{pageFooter(p)})

	return r.printf("%s\n", tbl.Render())
}

// Value writes a hydrated configuration or constructed object. Tables show
// maps as sorted key/value rows and anything else with its %v form.
func (r *Renderer) Value(v any) error {
	if r.format != FormatTable {
		return r.encode(v)
	}

	m, ok := v.(map[string]any)
	if !ok {
		return r.printf("%v\n", v)
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Parameter", "Value"})

	for _, k := range slices.Sorted(maps.Keys(m)) {
		tbl.AppendRow(table.Row{k, Compact(m[k])})
	}

	return r.printf("%s\n", tbl.Render())
}

// Lookup writes the index of a row.
func (r *Renderer) Lookup(index int, row paramspace.Row) error {
	if r.format != FormatTable {
		return r.encode(Entry{Index: index, Row: row.String()})
	}

	return r.printf("%d\n", index)
}

// Compact formats v as single-line JSON, falling back to %v.
func Compact(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(data)
}

func (r *Renderer) encode(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.format)
	}
}

func (r *Renderer) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(r.out, format, args...)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault

	return tbl
}

func pageFooter(p Page) string {
	if len(p.Rows) == 0 {
		return fmt.Sprintf("0 of %s rows", humanize.Comma(int64(p.Total)))
	}

	first := p.Offset + 1
	last := p.Offset + len(p.Rows)

	return fmt.Sprintf("%s-%s of %s rows",
		humanize.Comma(int64(first)), humanize.Comma(int64(last)), humanize.Comma(int64(p.Total)))
}
