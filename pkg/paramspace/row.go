package paramspace

import (
	"encoding/binary"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Row is one point of a parameter space, encoded as alternating
// (name-index, value-index) pairs ordered by parameter name.
type Row []int

// Key returns a compact canonical encoding of the row for interning.
func (r Row) Key() string {
	buf := make([]byte, 0, len(r)*2)

	for _, v := range r {
		buf = binary.AppendVarint(buf, int64(v))
	}

	return string(buf)
}

// Pairs iterates over the (name-index, value-index) pairs of the row.
// A trailing unpaired integer is ignored; use Validate to reject it.
func (r Row) Pairs() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for i := 0; i+1 < len(r); i += 2 {
			if !yield(r[i], r[i+1]) {
				return
			}
		}
	}
}

// Len returns the number of pairs in the row.
func (r Row) Len() int { return len(r) / 2 }

// Validate checks that the row has even length and no negative index.
func (r Row) Validate() error {
	if len(r)%2 != 0 {
		return fmt.Errorf("%w: odd length %d", ErrInvalidRow, len(r))
	}

	for i, v := range r {
		if v < 0 {
			return fmt.Errorf("%w: negative index %d at position %d", ErrInvalidRow, v, i)
		}
	}

	return nil
}

// String formats the row as comma separated integers, e.g. "0,1,1,4".
func (r Row) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, ",")
}

// ParseRow parses the comma separated form produced by Row.String.
// Whitespace around integers is ignored. The result is validated.
func ParseRow(s string) (Row, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Row{}, nil
	}

	fields := strings.Split(s, ",")
	row := make(Row, len(fields))

	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRow, s, err)
		}

		row[i] = n
	}

	validateErr := row.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return row, nil
}

func rowKey(r Row) string { return r.Key() }

func valueKey(v Value) string { return v.Key() }
