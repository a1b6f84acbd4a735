package visgraph

// DefaultMaxNodes caps graph size; the full build is O(V²) segment tests
// each costing O(obstacle edges).
const DefaultMaxNodes = 1000

// DefaultProgressEvery is how many pair checks pass between progress lines.
const DefaultProgressEvery = 10000

// Options configures graph construction.
type Options struct {
	MaxNodes      int  // reject scenes with more nodes than this
	ProgressEvery int  // log a progress line every N pair checks
	Quiet         bool // suppress build logging
}

// Option mutates Options.
type Option func(*Options)

// WithMaxNodes overrides DefaultMaxNodes. Non-positive values keep the default.
func WithMaxNodes(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxNodes = n
		}
	}
}

// WithProgressEvery overrides DefaultProgressEvery. Non-positive values keep
// the default.
func WithProgressEvery(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ProgressEvery = n
		}
	}
}

// WithQuiet disables build logging.
func WithQuiet() Option {
	return func(o *Options) { o.Quiet = true }
}

func newOptions(opts []Option) Options {
	o := Options{
		MaxNodes:      DefaultMaxNodes,
		ProgressEvery: DefaultProgressEvery,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
