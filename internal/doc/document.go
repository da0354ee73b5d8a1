package doc

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/tabstorm/internal/doc/history"
	"github.com/dshills/tabstorm/internal/doc/node"
	"github.com/dshills/tabstorm/internal/event"
)

// Document is an editable node tree with transactional, undoable mutation and
// synchronous change notification.
type Document struct {
	root      *node.Node
	history   *history.History
	schema    *Schema
	bus       event.Bus
	logger    *zap.Logger
	selection Selection

	maxUndoEntries int
	maxFixupDepth  int
	readOnly       bool
	closed         bool

	revision uint64

	// tx is the open transaction, if any.
	tx *Tx
	// depth counts change dispatches in progress.
	depth int
	// recordFixups is false while an undo, redo or load is being dispatched.
	recordFixups bool
}

// New creates a Document with the given options. Without WithRoot it starts
// with an empty root node.
func New(opts ...Option) *Document {
	d := &Document{
		maxUndoEntries: DefaultMaxUndoEntries,
		maxFixupDepth:  DefaultMaxFixupDepth,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.root == nil {
		d.root = node.New(node.KindRoot, nil)
	}
	if d.schema == nil {
		d.schema = DefaultSchema()
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.bus == nil {
		d.bus = event.NewBus(event.WithLogger(d.logger))
	}
	d.history = history.NewHistory(d.maxUndoEntries)
	d.selection = SelectionIn(d.root)
	return d
}

// Root returns the document root.
func (d *Document) Root() *node.Node { return d.root }

// Schema returns the document schema.
func (d *Document) Schema() *Schema { return d.schema }

// Bus returns the event bus the document publishes on.
func (d *Document) Bus() event.Bus { return d.bus }

// Logger returns the document logger.
func (d *Document) Logger() *zap.Logger { return d.logger }

// History returns the undo history.
func (d *Document) History() *history.History { return d.history }

// Revision returns the number of changes published so far.
func (d *Document) Revision() uint64 { return d.revision }

// IsReadOnly reports whether the document rejects writes.
func (d *Document) IsReadOnly() bool { return d.readOnly }

// IsClosed reports whether Close has been called.
func (d *Document) IsClosed() bool { return d.closed }

// InTransaction reports whether a transaction is open.
func (d *Document) InTransaction() bool { return d.tx != nil }

// CanUndo reports whether there is a change to undo.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether there is an undone change to redo.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// Contains reports whether n is attached under the document root.
func (d *Document) Contains(n *node.Node) bool {
	return n != nil && n.IsDescendantOf(d.root)
}

func (d *Document) checkWritable() error {
	if d.closed {
		return ErrClosed
	}
	if d.readOnly {
		return ErrReadOnly
	}
	return nil
}

// RunAtomic runs fn inside one transaction. A call made while a transaction
// is open joins it. A call made by a change handler during dispatch opens a
// fixup transaction.
func (d *Document) RunAtomic(ctx context.Context, name string, fn func(*Tx) error) error {
	if err := d.checkWritable(); err != nil {
		return err
	}
	if d.tx != nil {
		return fn(d.tx)
	}

	origin := history.OriginCommand
	if d.depth > 0 {
		origin = history.OriginFixup
		if d.depth > d.maxFixupDepth {
			d.logger.Warn("fixup depth exceeded, dropping transaction",
				zap.String("transaction", name),
				zap.Int("depth", d.depth),
				zap.Int("max_depth", d.maxFixupDepth))
			return fmt.Errorf("%s: %w", name, ErrFixupDepthExceeded)
		}
	}

	tx := &Tx{doc: d, batch: history.NewBatch(name)}
	d.tx = tx
	err := runBody(tx, fn)
	d.tx = nil
	tx.done = true

	if err != nil {
		if rbErr := tx.batch.Revert(); rbErr != nil {
			d.logger.Error("transaction rollback failed",
				zap.String("transaction", name),
				zap.Error(rbErr))
			err = errors.Join(err, rbErr)
		}
		return err
	}
	if tx.batch.IsEmpty() {
		return nil
	}

	switch {
	case origin == history.OriginCommand:
		d.history.Push(tx.batch)
	case d.recordFixups:
		d.history.AppendToLast(tx.batch.Ops...)
	}
	d.publishChange(ctx, tx.batch, origin)
	return nil
}

func runBody(tx *Tx, fn func(*Tx) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTransactionPanic, r)
		}
	}()
	return fn(tx)
}

// publishChange bumps the revision and dispatches doc.changed. Handler
// failures are logged; they never undo a committed transaction.
func (d *Document) publishChange(ctx context.Context, b *history.Batch, origin history.Origin) {
	d.revision++
	change := Change{
		Name:     b.Name,
		Origin:   origin,
		OpCount:  b.Len(),
		Revision: d.revision,
		Depth:    d.depth,
	}

	prevRecord := d.recordFixups
	switch origin {
	case history.OriginCommand:
		d.recordFixups = true
	case history.OriginUndo, history.OriginRedo, history.OriginLoad:
		d.recordFixups = false
	}
	d.depth++
	defer func() {
		d.depth--
		d.recordFixups = prevRecord
	}()

	d.logger.Debug("document changed",
		zap.String("transaction", change.Name),
		zap.Stringer("origin", change.Origin),
		zap.Int("ops", change.OpCount),
		zap.Uint64("revision", change.Revision))

	if err := d.bus.Publish(ctx, event.NewEvent(TopicChanged, change, EventSource)); err != nil {
		d.logger.Warn("change handler failed",
			zap.String("transaction", change.Name),
			zap.Error(err))
	}
}

// Undo reverts the most recent change as one unit.
func (d *Document) Undo(ctx context.Context) error {
	return d.replay(ctx, history.OriginUndo)
}

// Redo re-applies the most recently undone change as one unit.
func (d *Document) Redo(ctx context.Context) error {
	return d.replay(ctx, history.OriginRedo)
}

func (d *Document) replay(ctx context.Context, origin history.Origin) error {
	if err := d.checkWritable(); err != nil {
		return err
	}
	if d.tx != nil || d.depth > 0 {
		return ErrTransactionOpen
	}

	var (
		b   *history.Batch
		err error
	)
	if origin == history.OriginUndo {
		b, err = d.history.Undo()
	} else {
		b, err = d.history.Redo()
	}
	if err != nil {
		return err
	}
	d.publishChange(ctx, b, origin)
	return nil
}

// Load replaces the whole tree, clears history and resets the selection to
// the end of the new document.
func (d *Document) Load(ctx context.Context, root *node.Node) error {
	if d.closed {
		return ErrClosed
	}
	if root == nil {
		return ErrNilRoot
	}
	if root.Parent() != nil {
		return fmt.Errorf("load: %w", node.ErrHasParent)
	}
	if d.tx != nil || d.depth > 0 {
		return ErrTransactionOpen
	}

	d.root = root
	d.history.Clear()
	d.selection = SelectionIn(root)

	count := 0
	root.Walk(func(*node.Node) node.WalkAction {
		count++
		return node.WalkContinue
	})

	loaded := Loaded{Revision: d.revision + 1, Nodes: count}
	if err := d.bus.Publish(ctx, event.NewEvent(TopicLoaded, loaded, EventSource)); err != nil {
		d.logger.Warn("load handler failed", zap.Error(err))
	}
	d.publishChange(ctx, history.NewBatch("load"), history.OriginLoad)
	return nil
}

// Close publishes doc.closed and rejects all later writes. It is safe to
// call more than once.
func (d *Document) Close(ctx context.Context) error {
	if d.closed {
		return nil
	}
	if d.tx != nil {
		return ErrTransactionOpen
	}
	d.closed = true
	d.history.Clear()
	if err := d.bus.Publish(ctx, event.NewEvent(TopicClosed, Closed{Revision: d.revision}, EventSource)); err != nil {
		d.logger.Warn("close handler failed", zap.Error(err))
	}
	return nil
}

// OnChange subscribes fn to doc.changed.
func (d *Document) OnChange(fn func(context.Context, Change) error, opts ...event.SubscriptionOption) (event.Subscription, error) {
	return d.bus.Subscribe(TopicChanged, event.AsHandlerFunc(func(ctx context.Context, ev event.Event[Change]) error {
		return fn(ctx, ev.Payload)
	}), opts...)
}
