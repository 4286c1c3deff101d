// Package registry maps class paths to constructors and implements
// paramspace.Resolver.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
)

// Sentinel errors.
var (
	// ErrDuplicate is returned when a path is registered twice.
	ErrDuplicate = errors.New("class path already registered")
	// ErrUnknownClass is returned when a path has no constructor and no fallback applies.
	ErrUnknownClass = errors.New("unknown class path")
	// ErrNilConstructor is returned when registering a nil constructor.
	ErrNilConstructor = errors.New("nil constructor")
)

// FallbackFunc resolves paths that were not registered explicitly.
type FallbackFunc func(path string) (paramspace.Constructor, error)

// Registry is a concurrency-safe class path registry.
type Registry struct {
	mu       sync.RWMutex
	ctors    map[string]paramspace.Constructor
	fallback FallbackFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithFallback sets a resolver used for unregistered paths.
func WithFallback(fn FallbackFunc) Option {
	return func(r *Registry) {
		r.fallback = fn
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{ctors: make(map[string]paramspace.Constructor)}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register binds path to ctor.
func (r *Registry) Register(path string, ctor paramspace.Constructor) error {
	if ctor == nil {
		return fmt.Errorf("%w: %q", ErrNilConstructor, path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ctors[path]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, path)
	}

	r.ctors[path] = ctor

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(path string, ctor paramspace.Constructor) {
	err := r.Register(path, ctor)
	if err != nil {
		panic(err)
	}
}

// Resolve implements paramspace.Resolver.
func (r *Registry) Resolve(path string) (paramspace.Constructor, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[path]
	r.mu.RUnlock()

	if ok {
		return ctor, nil
	}

	if r.fallback != nil {
		return r.fallback(path)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownClass, path)
}

// Paths returns the registered paths in sorted order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.ctors))
	for p := range r.ctors {
		paths = append(paths, p)
	}

	slices.Sort(paths)

	return paths
}

// Struct returns a constructor that decodes keyword arguments into a new *T.
//
// Field names are matched through `mapstructure` tags. Unknown keyword
// arguments are an error, as are values that cannot be converted to the
// field type.
func Struct[T any]() paramspace.Constructor {
	return func(kwargs map[string]any) (any, error) {
		out := new(T)

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      out,
			ErrorUnused: true,
			TagName:     "mapstructure",
		})
		if err != nil {
			return nil, fmt.Errorf("create decoder: %w", err)
		}

		decodeErr := decoder.Decode(kwargs)
		if decodeErr != nil {
			return nil, fmt.Errorf("decode %T: %w", out, decodeErr)
		}

		return out, nil
	}
}

// Object is a generic description of a constructed class: its path and the
// keyword arguments it was built with.
type Object struct {
	Class  string         `json:"class"  yaml:"class"`
	Params map[string]any `json:"params" yaml:"params"`
}

// Describe is a FallbackFunc that builds an *Object for any path.
func Describe(path string) (paramspace.Constructor, error) {
	return func(kwargs map[string]any) (any, error) {
		return &Object{Class: path, Params: kwargs}, nil
	}, nil
}

// String renders the object as a call, e.g. `pkg.Cls(a=1, b="x")`, with
// keyword arguments in sorted order.
func (o *Object) String() string {
	var sb strings.Builder

	sb.WriteString(o.Class)
	sb.WriteByte('(')

	for i, k := range slices.Sorted(maps.Keys(o.Params)) {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(k)
		sb.WriteByte('=')

		if s, ok := o.Params[k].(string); ok {
			sb.WriteString(strconv.Quote(s))
		} else {
			fmt.Fprintf(&sb, "%v", o.Params[k])
		}
	}

	sb.WriteByte(')')

	return sb.String()
}
