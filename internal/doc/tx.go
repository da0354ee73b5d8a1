package doc

import (
	"reflect"

	"github.com/dshills/tabstorm/internal/doc/history"
	"github.com/dshills/tabstorm/internal/doc/node"
)

// Tx is the handle of an open transaction. Every primitive records an
// operation so the whole transaction can be reverted or undone.
type Tx struct {
	doc   *Document
	batch *history.Batch
	done  bool
}

// Document returns the document the transaction edits.
func (tx *Tx) Document() *Document { return tx.doc }

// Name returns the transaction name.
func (tx *Tx) Name() string { return tx.batch.Name }

// OpCount returns the number of operations applied so far.
func (tx *Tx) OpCount() int { return tx.batch.Len() }

func (tx *Tx) apply(op history.Operation) error {
	if tx.done {
		return ErrTxDone
	}
	if err := op.Apply(); err != nil {
		return err
	}
	tx.batch.Add(op)
	return nil
}

// Insert places n under parent at index.
func (tx *Tx) Insert(parent *node.Node, index int, n *node.Node) error {
	if parent == nil || n == nil {
		return node.ErrNilNode
	}
	if index < 0 || index > parent.ChildCount() {
		return node.ErrIndexOutOfRange
	}
	return tx.apply(&history.InsertOp{Parent: parent, Index: index, Node: n})
}

// Append places n after the last child of parent.
func (tx *Tx) Append(parent *node.Node, n *node.Node) error {
	if parent == nil {
		return node.ErrNilNode
	}
	return tx.Insert(parent, parent.ChildCount(), n)
}

// Remove detaches n from its parent.
func (tx *Tx) Remove(n *node.Node) error {
	if n == nil {
		return node.ErrNilNode
	}
	if tx.done {
		return ErrTxDone
	}
	op, err := history.NewRemoveOp(n)
	if err != nil {
		return err
	}
	return tx.apply(op)
}

// Move relocates n to newParent at index, where index counts positions in
// newParent after n has been detached.
func (tx *Tx) Move(n, newParent *node.Node, index int) error {
	if n == nil || newParent == nil {
		return node.ErrNilNode
	}
	if tx.done {
		return ErrTxDone
	}
	if newParent.IsDescendantOf(n) {
		return node.ErrCycle
	}
	count := newParent.ChildCount()
	if n.Parent() == newParent {
		count--
	}
	if index < 0 || index > count {
		return node.ErrIndexOutOfRange
	}
	op, err := history.NewMoveOp(n, newParent, index)
	if err != nil {
		return err
	}
	if op.FromParent == newParent && op.FromIndex == index {
		return nil
	}
	return tx.apply(op)
}

// SetAttr sets an attribute. Writing the value already present records nothing.
func (tx *Tx) SetAttr(n *node.Node, key string, value any) error {
	if n == nil {
		return node.ErrNilNode
	}
	if cur, ok := n.Attr(key); ok && sameValue(cur, value) {
		return nil
	}
	return tx.apply(&history.SetAttrOp{Node: n, Key: key, Value: value})
}

// RemoveAttr clears an attribute. Clearing an absent attribute records nothing.
func (tx *Tx) RemoveAttr(n *node.Node, key string) error {
	if n == nil {
		return node.ErrNilNode
	}
	if !n.HasAttr(key) {
		return nil
	}
	return tx.apply(&history.SetAttrOp{Node: n, Key: key, Clear: true})
}

// sameValue compares a stored attribute with a value about to be written.
func sameValue(cur, value any) bool {
	return reflect.DeepEqual(cur, node.Normalize(value))
}
