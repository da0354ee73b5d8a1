// Package history provides undo/redo for document tree edits.
//
// Every tree mutation made through a transaction is captured as an
// Operation that knows how to apply and revert itself:
//   - InsertOp: a node was inserted under a parent
//   - RemoveOp: a node was detached from its parent
//   - MoveOp: a node was relocated, possibly to another parent
//   - SetAttrOp: an attribute was set or cleared
//
// Operations recorded by one transaction form a Batch, the unit of undo.
// The History type keeps bounded undo/redo stacks of batches:
//
//	h := history.NewHistory(1000)
//	h.Push(batch)
//
//	b, err := h.Undo() // reverts every op in batch, last first
//	b, err = h.Redo()  // re-applies them in order
//
// Operations hold node pointers rather than positions where they can, so a
// batch still reverts correctly after sibling edits that shifted indexes.
package history
