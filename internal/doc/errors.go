package doc

import (
	"errors"

	"github.com/dshills/tabstorm/internal/doc/history"
)

// Errors returned by document operations.
var (
	// ErrClosed indicates a write was attempted after Close.
	ErrClosed = errors.New("document is closed")

	// ErrReadOnly indicates a write was attempted on a read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrTransactionPanic wraps a panic recovered from a transaction body.
	ErrTransactionPanic = errors.New("transaction panicked")

	// ErrTransactionOpen indicates undo, redo or load was attempted inside a transaction.
	ErrTransactionOpen = errors.New("transaction in progress")

	// ErrTxDone indicates a transaction handle was used after it finished.
	ErrTxDone = errors.New("transaction already finished")

	// ErrFixupDepthExceeded indicates change handlers kept editing the document
	// past the configured recursion limit.
	ErrFixupDepthExceeded = errors.New("fixup depth exceeded")

	// ErrNilRoot indicates a nil root was passed to Load.
	ErrNilRoot = errors.New("nil document root")

	// ErrSelectionDetached indicates a selection outside the document tree.
	ErrSelectionDetached = errors.New("selection is not inside the document")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
)
