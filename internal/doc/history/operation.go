package history

import (
	"fmt"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Operation is a single recorded tree mutation.
type Operation interface {
	// Apply performs (or re-performs) the mutation.
	Apply() error

	// Revert undoes the mutation.
	Revert() error

	// Description returns a human-readable description.
	Description() string
}

// clampIndex keeps a recorded index valid for the parent's current child list.
func clampIndex(parent *node.Node, i int) int {
	if i < 0 {
		return 0
	}
	if n := parent.ChildCount(); i > n {
		return n
	}
	return i
}

// InsertOp inserts Node under Parent at Index.
type InsertOp struct {
	Parent *node.Node
	Index  int
	Node   *node.Node
}

// Apply inserts the node.
func (op *InsertOp) Apply() error {
	if err := op.Parent.InsertChild(clampIndex(op.Parent, op.Index), op.Node); err != nil {
		return fmt.Errorf("insert %s: %w", op.Node.Kind(), err)
	}
	return nil
}

// Revert detaches the inserted node.
func (op *InsertOp) Revert() error {
	if _, err := op.Parent.RemoveChild(op.Node); err != nil {
		return fmt.Errorf("revert insert %s: %w", op.Node.Kind(), err)
	}
	return nil
}

// Description returns a human-readable description.
func (op *InsertOp) Description() string {
	return fmt.Sprintf("Insert %s at %d", op.Node.Kind(), op.Index)
}

// RemoveOp detaches Node from Parent. Index is filled in by Apply.
type RemoveOp struct {
	Parent *node.Node
	Index  int
	Node   *node.Node
}

// NewRemoveOp creates a remove operation for an attached node.
func NewRemoveOp(n *node.Node) (*RemoveOp, error) {
	p := n.Parent()
	if p == nil {
		return nil, fmt.Errorf("remove detached %s: %w", n.Kind(), node.ErrNotAChild)
	}
	return &RemoveOp{Parent: p, Index: p.IndexOf(n), Node: n}, nil
}

// Apply detaches the node.
func (op *RemoveOp) Apply() error {
	i, err := op.Parent.RemoveChild(op.Node)
	if err != nil {
		return fmt.Errorf("remove %s: %w", op.Node.Kind(), err)
	}
	op.Index = i
	return nil
}

// Revert puts the node back where it was.
func (op *RemoveOp) Revert() error {
	if err := op.Parent.InsertChild(clampIndex(op.Parent, op.Index), op.Node); err != nil {
		return fmt.Errorf("revert remove %s: %w", op.Node.Kind(), err)
	}
	return nil
}

// Description returns a human-readable description.
func (op *RemoveOp) Description() string {
	return fmt.Sprintf("Remove %s at %d", op.Node.Kind(), op.Index)
}

// MoveOp relocates Node to ToParent at ToIndex. ToIndex is a position in the
// target list after the node has been detached.
type MoveOp struct {
	Node       *node.Node
	FromParent *node.Node
	FromIndex  int
	ToParent   *node.Node
	ToIndex    int
}

// NewMoveOp creates a move operation for an attached node.
func NewMoveOp(n, toParent *node.Node, toIndex int) (*MoveOp, error) {
	from := n.Parent()
	if from == nil {
		return nil, fmt.Errorf("move detached %s: %w", n.Kind(), node.ErrNotAChild)
	}
	return &MoveOp{
		Node:       n,
		FromParent: from,
		FromIndex:  from.IndexOf(n),
		ToParent:   toParent,
		ToIndex:    toIndex,
	}, nil
}

// Apply moves the node to its target position.
func (op *MoveOp) Apply() error {
	return relocate(op.Node, op.ToParent, op.ToIndex)
}

// Revert moves the node back to its source position.
func (op *MoveOp) Revert() error {
	return relocate(op.Node, op.FromParent, op.FromIndex)
}

// Description returns a human-readable description.
func (op *MoveOp) Description() string {
	return fmt.Sprintf("Move %s from %d to %d", op.Node.Kind(), op.FromIndex, op.ToIndex)
}

func relocate(n, parent *node.Node, index int) error {
	cur := n.Parent()
	if cur == nil {
		return fmt.Errorf("move %s: %w", n.Kind(), node.ErrNotAChild)
	}
	i, err := cur.RemoveChild(n)
	if err != nil {
		return fmt.Errorf("move %s: %w", n.Kind(), err)
	}
	if err := parent.InsertChild(clampIndex(parent, index), n); err != nil {
		// Put it back so a failed move leaves the tree untouched.
		_ = cur.InsertChild(i, n)
		return fmt.Errorf("move %s: %w", n.Kind(), err)
	}
	return nil
}

// SetAttrOp sets (or, with Clear, removes) an attribute on Node.
// Old and HadOld are captured by Apply.
type SetAttrOp struct {
	Node   *node.Node
	Key    string
	Value  any
	Clear  bool
	Old    any
	HadOld bool
}

// Apply writes the attribute.
func (op *SetAttrOp) Apply() error {
	if op.Clear {
		op.Old, op.HadOld = op.Node.RemoveAttr(op.Key)
		return nil
	}
	op.Old, op.HadOld = op.Node.SetAttr(op.Key, op.Value)
	return nil
}

// Revert restores the previous attribute state.
func (op *SetAttrOp) Revert() error {
	if op.HadOld {
		op.Node.SetAttr(op.Key, op.Old)
	} else {
		op.Node.RemoveAttr(op.Key)
	}
	return nil
}

// Description returns a human-readable description.
func (op *SetAttrOp) Description() string {
	if op.Clear {
		return fmt.Sprintf("Clear %s.%s", op.Node.Kind(), op.Key)
	}
	return fmt.Sprintf("Set %s.%s=%v", op.Node.Kind(), op.Key, op.Value)
}
