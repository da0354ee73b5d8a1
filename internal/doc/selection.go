package doc

import (
	"fmt"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Selection is a collapsed edit position: the gap before child Offset of Parent.
type Selection struct {
	Parent *node.Node
	Offset int
}

// SelectionAt returns the position just before n.
func SelectionAt(n *node.Node) Selection {
	if p := n.Parent(); p != nil {
		return Selection{Parent: p, Offset: p.IndexOf(n)}
	}
	return Selection{Parent: n}
}

// SelectionIn returns the position at the end of n's children.
func SelectionIn(n *node.Node) Selection {
	return Selection{Parent: n, Offset: n.ChildCount()}
}

// SetSelection moves the edit position. The parent must be inside the document.
func (d *Document) SetSelection(sel Selection) error {
	if sel.Parent == nil || !sel.Parent.IsDescendantOf(d.root) {
		return ErrSelectionDetached
	}
	if sel.Offset < 0 || sel.Offset > sel.Parent.ChildCount() {
		return fmt.Errorf("selection offset %d: %w", sel.Offset, node.ErrIndexOutOfRange)
	}
	d.selection = sel
	return nil
}

// Selection returns the current edit position. A position left dangling by
// a removal falls back to the end of the document.
func (d *Document) Selection() Selection {
	sel := d.selection
	if sel.Parent == nil || !sel.Parent.IsDescendantOf(d.root) {
		return SelectionIn(d.root)
	}
	if sel.Offset > sel.Parent.ChildCount() {
		sel.Offset = sel.Parent.ChildCount()
	}
	return sel
}

// FindSelectionAncestor returns the closest ancestor-or-self of the
// selection parent with the given kind, or nil.
func (d *Document) FindSelectionAncestor(kind node.Kind) *node.Node {
	return d.Selection().Parent.FindAncestor(kind)
}

// FindInsertionPoint walks outward from the selection until it reaches a
// parent that allows kind. The returned index is the selection offset when
// the selection parent itself allows kind, otherwise the position just after
// the block the selection was in.
func (d *Document) FindInsertionPoint(kind node.Kind) (parent *node.Node, index int, ok bool) {
	sel := d.Selection()
	p, i := sel.Parent, sel.Offset
	for p != nil {
		if d.schema.IsAllowed(p.Kind(), kind) {
			return p, i, true
		}
		up := p.Parent()
		if up == nil {
			break
		}
		i = up.IndexOf(p) + 1
		p = up
	}
	return nil, 0, false
}
