package paramspace

import (
	"fmt"

	"github.com/Sumatoshi-tech/paramspace/pkg/alg/intern"
)

// StoreKind tells how a parameter's values are stored.
type StoreKind string

const (
	// StoreValues holds scalar and tuple values.
	StoreValues StoreKind = "values"
	// StoreNested holds a nested parameter space.
	StoreNested StoreKind = "nested"
)

// store is the value store of one parameter: either a leaf table of values
// or a nested *Space. Hydration and encoding recurse through it uniformly.
type store interface {
	Len() int
	hydrate(index int, construct bool) (any, error)
	encode(value any) (int, error)
}

type leafStore struct {
	table *intern.Table[Value, string]
}

func newLeafStore() *leafStore {
	return &leafStore{table: intern.New(valueKey)}
}

func (ls *leafStore) Len() int { return ls.table.Len() }

func (ls *leafStore) hydrate(index int, _ bool) (any, error) {
	v, err := ls.table.At(index)
	if err != nil {
		return nil, err
	}

	return v.Interface(), nil
}

func (ls *leafStore) encode(value any) (int, error) {
	v, err := ValueOf(value)
	if err != nil {
		return 0, err
	}

	return ls.table.IndexOf(v)
}

func (s *Space) hydrate(index int, construct bool) (any, error) {
	row, err := s.rows.At(index)
	if err != nil {
		return nil, err
	}

	if construct {
		return s.ConstructRow(row)
	}

	return s.HydrateRow(row)
}

func (s *Space) encode(value any) (int, error) {
	cfg, ok := asMap(value)
	if !ok {
		return 0, fmt.Errorf("%w: expected nested configuration, got %T", ErrNotFound, value)
	}

	row, err := s.Encode(cfg)
	if err != nil {
		return 0, err
	}

	return s.rows.IndexOf(row)
}

// StoreInfo describes the value store of one parameter.
type StoreInfo struct {
	Name string    `json:"name" yaml:"name"`
	Kind StoreKind `json:"kind" yaml:"kind"`
	Size int       `json:"size" yaml:"size"`
}
