package paramspace

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/paramspace/pkg/alg/intern"
)

// Sentinel errors. Match with errors.Is.
var (
	// ErrInvalidConfig is returned when a configuration is malformed: a value
	// is not a list, a list mixes nested configurations with scalars, or a
	// parameter changes shape between appends.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTooManyCombinations is returned when a configuration expands past the
	// configured combination limit.
	ErrTooManyCombinations = fmt.Errorf("%w: too many combinations", ErrInvalidConfig)

	// ErrInvalidRow is returned for rows of odd length or with negative indices.
	ErrInvalidRow = fmt.Errorf("%w: malformed row", ErrInvalidConfig)

	// ErrClassResolution is returned when a class path cannot be resolved
	// into a constructor.
	ErrClassResolution = errors.New("class resolution failed")

	// ErrNotFound is returned when a name, value or row was never interned.
	ErrNotFound = intern.ErrNotFound

	// ErrOutOfRange is returned when an index does not address an entry.
	ErrOutOfRange = intern.ErrOutOfRange
)
