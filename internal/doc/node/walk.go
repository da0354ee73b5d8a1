package node

// WalkAction tells Walk how to continue after visiting a node.
type WalkAction int

const (
	// WalkContinue descends into the node's children.
	WalkContinue WalkAction = iota
	// WalkSkip skips the node's children but continues with its siblings.
	WalkSkip
	// WalkStop ends the walk.
	WalkStop
)

// Walk visits n and its descendants depth-first in document order.
// It returns false if the walk was stopped.
func (n *Node) Walk(fn func(*Node) WalkAction) bool {
	switch fn(n) {
	case WalkStop:
		return false
	case WalkSkip:
		return true
	}
	// Iterate over a snapshot so fn may reorder children of visited nodes.
	for _, c := range n.Children() {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindAll returns every node of the given kind in n's subtree, n included,
// in document order.
func (n *Node) FindAll(kind Kind) []*Node {
	var out []*Node
	n.Walk(func(x *Node) WalkAction {
		if x.kind == kind {
			out = append(out, x)
		}
		return WalkContinue
	})
	return out
}

// FindChild returns the first direct child of the given kind.
func (n *Node) FindChild(kind Kind) *Node {
	for _, c := range n.children {
		if c.kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns the direct children of the given kind, in order.
func (n *Node) ChildrenOf(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// FindAncestor returns the closest ancestor-or-self of the given kind.
func (n *Node) FindAncestor(kind Kind) *Node {
	for p := n; p != nil; p = p.parent {
		if p.kind == kind {
			return p
		}
	}
	return nil
}

// Root returns the top of the tree that contains n.
func (n *Node) Root() *Node {
	p := n
	for p.parent != nil {
		p = p.parent
	}
	return p
}

// IsDescendantOf reports whether ancestor is n or one of n's ancestors.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Path returns the child-index path from the tree root to n.
func (n *Node) Path() []int {
	var rev []int
	for p := n; p.parent != nil; p = p.parent {
		rev = append(rev, p.parent.IndexOf(p))
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}

// Resolve follows a child-index path from n.
func (n *Node) Resolve(path []int) (*Node, error) {
	cur := n
	for _, i := range path {
		next := cur.Child(i)
		if next == nil {
			return nil, ErrPathNotFound
		}
		cur = next
	}
	return cur, nil
}

// TextContent concatenates the text of every text leaf under n.
func (n *Node) TextContent() string {
	var s []byte
	n.Walk(func(x *Node) WalkAction {
		if x.kind == KindText {
			s = append(s, x.text...)
		}
		return WalkContinue
	})
	return string(s)
}
