// Package intern provides a generic append-only interning table that maps
// distinct items to dense, stable integer indices and back.
package intern

import (
	"errors"
	"fmt"
	"iter"
)

// Sentinel lookup errors.
var (
	// ErrNotFound is returned when an item was never interned.
	ErrNotFound = errors.New("item not interned")
	// ErrOutOfRange is returned when an index does not address an item.
	ErrOutOfRange = errors.New("index out of range")
)

// Table is an ordered, deduplicated collection of items.
//
// Items are identified by a key derived with the table's key function, so
// items that are not comparable themselves (slices, tuples) can still be
// interned through a canonical key. Indices are assigned sequentially on
// first insertion and never change afterwards.
//
// A Table is not safe for concurrent mutation. Concurrent readers are fine
// as long as no writer is active.
type Table[T any, K comparable] struct {
	key   func(T) K
	items []T
	index map[K]int
}

// New creates a table keyed by key and seeds it with items, in order.
func New[T any, K comparable](key func(T) K, items ...T) *Table[T, K] {
	t := &Table[T, K]{
		key:   key,
		items: make([]T, 0, len(items)),
		index: make(map[K]int, len(items)),
	}

	t.Extend(items)

	return t
}

// NewComparable creates a table whose items are their own keys.
func NewComparable[T comparable](items ...T) *Table[T, T] {
	return New(identity[T], items...)
}

func identity[T any](v T) T { return v }

// Append interns item and returns its index. An item that is already present
// keeps its index and the table is left unchanged.
func (t *Table[T, K]) Append(item T) int {
	k := t.key(item)

	if idx, ok := t.index[k]; ok {
		return idx
	}

	idx := len(t.items)
	t.items = append(t.items, item)
	t.index[k] = idx

	return idx
}

// Extend appends every item in order and returns the index of each one,
// aligned with items.
func (t *Table[T, K]) Extend(items []T) []int {
	indices := make([]int, len(items))

	for i, item := range items {
		indices[i] = t.Append(item)
	}

	return indices
}

// IndexOf returns the index of item or ErrNotFound.
func (t *Table[T, K]) IndexOf(item T) (int, error) {
	idx, ok := t.index[t.key(item)]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNotFound, item)
	}

	return idx, nil
}

// At returns the item stored at index or ErrOutOfRange.
func (t *Table[T, K]) At(index int) (T, error) {
	if index < 0 || index >= len(t.items) {
		var zero T

		return zero, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, index, len(t.items))
	}

	return t.items[index], nil
}

// Contains reports whether item has been interned.
func (t *Table[T, K]) Contains(item T) bool {
	_, ok := t.index[t.key(item)]

	return ok
}

// Len returns the number of distinct items.
func (t *Table[T, K]) Len() int {
	return len(t.items)
}

// All iterates over index/item pairs in insertion order.
func (t *Table[T, K]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, item := range t.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Items returns a copy of the items in insertion order.
func (t *Table[T, K]) Items() []T {
	out := make([]T, len(t.items))
	copy(out, t.items)

	return out
}
