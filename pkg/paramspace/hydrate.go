package paramspace

import (
	"fmt"
	"maps"
	"slices"
)

// HydratePair decodes one (name-index, value-index) pair into a single-entry
// map. Nested values are hydrated recursively.
func (s *Space) HydratePair(nameIndex, valueIndex int) (map[string]any, error) {
	name, value, err := s.hydratePair(nameIndex, valueIndex, false)
	if err != nil {
		return nil, err
	}

	return map[string]any{name: value}, nil
}

func (s *Space) hydratePair(nameIndex, valueIndex int, construct bool) (string, any, error) {
	name, err := s.names.At(nameIndex)
	if err != nil {
		return "", nil, fmt.Errorf("parameter name: %w", err)
	}

	st, ok := s.values[name]
	if !ok {
		return "", nil, fmt.Errorf("parameter %q has no values: %w", name, ErrNotFound)
	}

	value, err := st.hydrate(valueIndex, construct)
	if err != nil {
		return "", nil, fmt.Errorf("parameter %q: %w", name, err)
	}

	return name, value, nil
}

// HydrateRow decodes a row into a configuration map. Pairs are merged in
// storage order; a later pair overwrites an earlier one with the same name.
func (s *Space) HydrateRow(row Row) (map[string]any, error) {
	return s.decode(row, false)
}

// HydrateIndex decodes the row stored at index.
func (s *Space) HydrateIndex(index int) (map[string]any, error) {
	row, err := s.Row(index)
	if err != nil {
		return nil, err
	}

	return s.HydrateRow(row)
}

// ConstructRow decodes a row and, when it carries the class key, constructs
// the object it describes. Nested rows are constructed first, so a parent
// constructor receives already built children.
//
// The class key is removed and its value resolved through the configured
// Resolver; the constructor is called with the remaining entries. Resolution
// problems are reported as ErrClassResolution. Constructor errors are
// returned unchanged. A row without the class key yields its map.
func (s *Space) ConstructRow(row Row) (any, error) {
	hydrated, err := s.decode(row, true)
	if err != nil {
		return nil, err
	}

	return s.construct(hydrated)
}

// ConstructIndex constructs the row stored at index.
func (s *Space) ConstructIndex(index int) (any, error) {
	row, err := s.Row(index)
	if err != nil {
		return nil, err
	}

	return s.ConstructRow(row)
}

func (s *Space) decode(row Row, construct bool) (map[string]any, error) {
	err := row.Validate()
	if err != nil {
		return nil, err
	}

	hydrated := make(map[string]any, row.Len())

	for nameIndex, valueIndex := range row.Pairs() {
		name, value, pairErr := s.hydratePair(nameIndex, valueIndex, construct)
		if pairErr != nil {
			return nil, pairErr
		}

		hydrated[name] = value
	}

	return hydrated, nil
}

func (s *Space) construct(hydrated map[string]any) (any, error) {
	raw, ok := hydrated[s.opts.classKey]
	if !ok {
		return hydrated, nil
	}

	path, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string, got %T", ErrClassResolution, s.opts.classKey, raw)
	}

	if s.opts.resolver == nil {
		return nil, fmt.Errorf("%w: %q: no resolver configured", ErrClassResolution, path)
	}

	ctor, err := s.opts.resolver.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrClassResolution, path, err)
	}

	if ctor == nil {
		return nil, fmt.Errorf("%w: %q: resolver returned no constructor", ErrClassResolution, path)
	}

	delete(hydrated, s.opts.classKey)

	return ctor(hydrated)
}

// Encode is the inverse of HydrateRow: it encodes a hydrated configuration
// back into its row without modifying the space. Every name and value must
// already be interned, otherwise ErrNotFound is returned. The row itself is
// not required to be interned; use IndexOf for that.
func (s *Space) Encode(hydrated map[string]any) (Row, error) {
	names := slices.Sorted(maps.Keys(hydrated))
	row := make(Row, 0, 2*len(names))

	for _, name := range names {
		nameIndex, err := s.names.IndexOf(name)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, ErrNotFound)
		}

		valueIndex, err := s.values[name].encode(hydrated[name])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}

		row = append(row, nameIndex, valueIndex)
	}

	return row, nil
}
