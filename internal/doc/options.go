package doc

import (
	"go.uber.org/zap"

	"github.com/dshills/tabstorm/internal/doc/node"
	"github.com/dshills/tabstorm/internal/event"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 1000
	DefaultMaxFixupDepth  = 8
)

// Option configures a Document during creation.
type Option func(*Document)

// WithRoot sets the initial document tree. The root must be detached.
func WithRoot(root *node.Node) Option {
	return func(d *Document) {
		if root != nil && root.Parent() == nil {
			d.root = root
		}
	}
}

// WithSchema sets the structural schema used by position queries.
func WithSchema(s *Schema) Option {
	return func(d *Document) {
		if s != nil {
			d.schema = s
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(d *Document) {
		if max > 0 {
			d.maxUndoEntries = max
		}
	}
}

// WithMaxFixupDepth bounds how deeply change handlers may nest repair
// transactions.
func WithMaxFixupDepth(depth int) Option {
	return func(d *Document) {
		if depth > 0 {
			d.maxFixupDepth = depth
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithBus shares an existing event bus instead of creating one.
func WithBus(bus event.Bus) Option {
	return func(d *Document) {
		if bus != nil {
			d.bus = bus
		}
	}
}

// WithReadOnly creates a read-only document.
// Transactions will return ErrReadOnly.
func WithReadOnly() Option {
	return func(d *Document) {
		d.readOnly = true
	}
}
