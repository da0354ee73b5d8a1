// Package doc provides the editable document that hosts structured widgets.
//
// A Document owns a node tree, an undo history and an event bus. Every
// mutation goes through RunAtomic, which collects the tree operations of one
// transaction into a single undo entry and publishes a single change event
// once the transaction has closed:
//
//	err := d.RunAtomic(ctx, "insert paragraph", func(tx *doc.Tx) error {
//		return tx.Append(d.Root(), node.NewParagraph("hello"))
//	})
//
// If the body returns an error or panics, every operation it applied is
// reverted and nothing is recorded or published.
//
// # Post-change repairs
//
// Handlers subscribed to TopicChanged may open their own transactions while
// the change is being dispatched. Those transactions are fixups: their
// operations are folded into the undo entry of the change that triggered
// them, so one undo step reverts the edit together with its repairs. Fixups
// made while an undo or redo is being dispatched are applied but not
// recorded. Recursion is bounded by WithMaxFixupDepth.
//
// # Concurrency
//
// A Document is not safe for concurrent use. The host serializes all edits
// through one logical thread of control, and change handlers run
// synchronously inside the call that produced the change.
package doc
