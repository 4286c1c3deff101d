package paramspace

import (
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/Sumatoshi-tech/paramspace/pkg/alg/intern"
)

// Config is one configuration dictionary: parameter names mapped to lists of
// candidate values. A list holds either leaf values or nested Configs.
type Config map[string]any

// Space is a combinatorial parameter space with dense integer indexing.
//
// Every appended configuration is expanded into the Cartesian product of its
// value lists; each combination is stored as a Row of (name-index,
// value-index) pairs and addressed by its row index. Names, values and rows
// are interned, so indices are stable for the lifetime of the space.
//
// A Space is not safe for concurrent mutation. Reads (hydration, lookups)
// may run concurrently with each other when no Append is in progress.
type Space struct {
	names  *intern.Table[string, string]
	values map[string]store
	rows   *intern.Table[Row, string]
	opts   options
}

// New creates an empty space.
func New(opts ...Option) *Space {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return newSpace(o)
}

// NewFrom creates a space and extends it with configs.
func NewFrom(configs []Config, opts ...Option) (*Space, error) {
	s := New(opts...)

	_, err := s.Extend(configs)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func newSpace(o options) *Space {
	return &Space{
		names:  intern.NewComparable[string](),
		values: make(map[string]store),
		rows:   intern.New(rowKey),
		opts:   o,
	}
}

// child creates a nested space sharing this space's settings. Progress is
// only reported by the top-level space.
func (s *Space) child() *Space {
	o := s.opts
	o.progress = nil

	return newSpace(o)
}

// Len returns the number of distinct rows.
func (s *Space) Len() int { return s.rows.Len() }

// Row returns a copy of the row stored at index.
func (s *Space) Row(index int) (Row, error) {
	row, err := s.rows.At(index)
	if err != nil {
		return nil, fmt.Errorf("row: %w", err)
	}

	return slices.Clone(row), nil
}

// Rows iterates over copies of all rows in index order.
func (s *Space) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, row := range s.rows.All() {
			if !yield(i, slices.Clone(row)) {
				return
			}
		}
	}
}

// IndexOf returns the index of row, or ErrNotFound if it was never interned.
func (s *Space) IndexOf(row Row) (int, error) {
	idx, err := s.rows.IndexOf(row)
	if err != nil {
		return 0, fmt.Errorf("row %s: %w", row, ErrNotFound)
	}

	return idx, nil
}

// Names returns the parameter names of this level in index order.
func (s *Space) Names() []string {
	return s.names.Items()
}

// Describe returns the value store of every parameter in name-index order.
func (s *Space) Describe() []StoreInfo {
	infos := make([]StoreInfo, 0, s.names.Len())

	for _, name := range s.names.All() {
		st := s.values[name]

		kind := StoreValues
		if _, nested := st.(*Space); nested {
			kind = StoreNested
		}

		infos = append(infos, StoreInfo{Name: name, Kind: kind, Size: st.Len()})
	}

	return infos
}

// Values returns the interned values of a scalar parameter in index order.
func (s *Space) Values(name string) ([]any, error) {
	st, ok := s.values[name]
	if !ok {
		return nil, fmt.Errorf("parameter %q: %w", name, ErrNotFound)
	}

	leaf, ok := st.(*leafStore)
	if !ok {
		return nil, fmt.Errorf("%w: parameter %q is nested", ErrInvalidConfig, name)
	}

	out := make([]any, 0, leaf.Len())
	for _, v := range leaf.table.All() {
		out = append(out, v.Interface())
	}

	return out, nil
}

// Nested returns the nested space of a parameter, if it has one.
func (s *Space) Nested(name string) (*Space, bool) {
	sub, ok := s.values[name].(*Space)

	return sub, ok
}

// asMap reports whether v is a configuration dictionary and returns it.
func asMap(v any) (Config, bool) {
	switch tv := v.(type) {
	case Config:
		return tv, true
	case map[string]any:
		return Config(tv), true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	out := make(Config, rv.Len())

	iterator := rv.MapRange()
	for iterator.Next() {
		out[iterator.Key().String()] = iterator.Value().Interface()
	}

	return out, true
}

// asList reports whether v is list-like and returns its elements.
func asList(v any) ([]any, bool) {
	switch tv := v.(type) {
	case []any:
		return tv, true
	case []Config:
		out := make([]any, len(tv))
		for i, c := range tv {
			out[i] = c
		}

		return out, true
	case nil, string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}
