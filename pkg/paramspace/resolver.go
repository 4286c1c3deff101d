package paramspace

// DefaultClassKey is the reserved configuration key naming the class path
// used to construct an object from a hydrated row.
const DefaultClassKey = "@class"

// Constructor builds an object from hydrated keyword arguments.
type Constructor func(kwargs map[string]any) (any, error)

// Resolver turns a class path such as "sklearn.ensemble.RandomForestRegressor"
// into a Constructor.
type Resolver interface {
	Resolve(path string) (Constructor, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(path string) (Constructor, error)

// Resolve calls f(path).
func (f ResolverFunc) Resolve(path string) (Constructor, error) {
	return f(path)
}
