package paramspace

import "log/slog"

// ProgressFunc receives expansion progress: rows produced so far in the
// current append and the total expected for it.
type ProgressFunc func(done, total int)

// progressStep is how many rows are produced between progress callbacks.
const progressStep = 4096

type options struct {
	logger          *slog.Logger
	resolver        Resolver
	progress        ProgressFunc
	classKey        string
	maxCombinations int
}

func defaultOptions() options {
	return options{
		logger:   slog.New(slog.DiscardHandler),
		classKey: DefaultClassKey,
	}
}

// Option configures a Space.
type Option func(*options)

// WithLogger sets the logger used for expansion diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithResolver sets the resolver used by ConstructRow and ConstructIndex.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithProgress reports expansion progress of the top-level space.
// Nested spaces do not report.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithClassKey overrides the reserved class path key (default "@class").
func WithClassKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.classKey = key
		}
	}
}

// WithMaxCombinations rejects any configuration, at any nesting level, whose
// expansion would exceed n rows. Zero disables the limit.
func WithMaxCombinations(n int) Option {
	return func(o *options) {
		o.maxCombinations = max(n, 0)
	}
}
