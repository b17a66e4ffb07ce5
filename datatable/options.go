package datatable

import (
	"time"
)

type tableOptions struct {
	logger    *Logger
	detectors []TypeDetector
	accessors map[int]Accessor
	renders   map[int]RenderFunc
	now       func() time.Time
	id        string
}

// Option configures a Table at construction.
type Option func(*tableOptions)

// WithLogger sets the logger. If nil is passed, log output is discarded.
func WithLogger(l *Logger) Option {
	return func(o *tableOptions) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithTypeDetectors replaces the ordered list of type detectors used for
// columns with no declared type.
func WithTypeDetectors(d ...TypeDetector) Option {
	return func(o *tableOptions) {
		o.detectors = d
	}
}

// WithAccessor sets the data accessor of a column, overriding the
// configured data option.
func WithAccessor(col int, a Accessor) Option {
	return func(o *tableOptions) {
		if o.accessors == nil {
			o.accessors = make(map[int]Accessor)
		}
		o.accessors[col] = a
	}
}

// WithRender sets the render transform of a column.
func WithRender(col int, fn RenderFunc) Option {
	return func(o *tableOptions) {
		if o.renders == nil {
			o.renders = make(map[int]RenderFunc)
		}
		o.renders[col] = fn
	}
}

// WithClock sets the time source used for saved state.
func WithClock(now func() time.Time) Option {
	return func(o *tableOptions) {
		o.now = now
	}
}

// WithID sets the instance id reported in logs. By default a random UUID
// is used.
func WithID(id string) Option {
	return func(o *tableOptions) {
		o.id = id
	}
}
