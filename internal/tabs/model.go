package tabs

import (
	"fmt"
	"sort"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Node kinds that make up a tab container.
const (
	KindContainer     node.Kind = "Container"
	KindHeaderList    node.Kind = "HeaderList"
	KindTabHeader     node.Kind = "TabHeader"
	KindContentList   node.Kind = "ContentList"
	KindTabPanel      node.Kind = "TabPanel"
	KindAppendControl node.Kind = "AppendControl"

	KindTabTitle        node.Kind = "TabTitle"
	KindTabControls     node.Kind = "TabControls"
	KindMoveLeftButton  node.Kind = "MoveLeftButton"
	KindMoveRightButton node.Kind = "MoveRightButton"
	KindDeleteButton    node.Kind = "DeleteButton"
	KindAppendButton    node.Kind = "AppendButton"
)

// Attribute names.
const (
	AttrContainerID = "containerId"
	AttrSlotIndex   = "slotIndex"
	AttrIsActive    = "isActive"
)

// ContainerID returns the containerId attribute of n, or "".
func ContainerID(n *node.Node) string {
	id, _ := n.StringAttr(AttrContainerID)
	return id
}

// SlotIndex returns the slotIndex attribute of n. Negative values are rejected.
func SlotIndex(n *node.Node) (int, bool) {
	i, ok := n.IntAttr(AttrSlotIndex)
	if !ok || i < 0 {
		return 0, false
	}
	return i, true
}

// IsActive reports the isActive attribute of n.
func IsActive(n *node.Node) bool {
	return n.BoolAttr(AttrIsActive)
}

// stampsID reports whether a node of this kind carries its container's id.
func stampsID(k node.Kind) bool {
	switch k {
	case KindTabHeader, KindTabPanel, KindAppendControl, KindAppendButton:
		return true
	}
	return false
}

// Parts is a read-only view of a container's structure. Headers and panels
// are listed in document order; pairing is always by slot index.
type Parts struct {
	Container     *node.Node
	HeaderList    *node.Node
	ContentList   *node.Node
	Headers       []*node.Node
	Panels        []*node.Node
	AppendControl *node.Node
}

// ResolveParts reads the structure of a container node.
func ResolveParts(container *node.Node) (*Parts, error) {
	if container == nil || !container.Is(KindContainer) {
		return nil, fmt.Errorf("%v: %w", container, ErrMalformedContainer)
	}
	p := &Parts{
		Container:   container,
		HeaderList:  container.FindChild(KindHeaderList),
		ContentList: container.FindChild(KindContentList),
	}
	if p.HeaderList == nil || p.ContentList == nil {
		return nil, fmt.Errorf("container %q: %w", ContainerID(container), ErrMalformedContainer)
	}
	p.Headers = p.HeaderList.ChildrenOf(KindTabHeader)
	p.Panels = p.ContentList.ChildrenOf(KindTabPanel)
	p.AppendControl = p.HeaderList.FindChild(KindAppendControl)
	return p, nil
}

// ID returns the container id.
func (p *Parts) ID() string { return ContainerID(p.Container) }

// TabCount returns the number of tabs, counted by header.
func (p *Parts) TabCount() int { return len(p.Headers) }

// Header returns the header with the given slot index, or nil.
func (p *Parts) Header(slot int) *node.Node { return bySlot(p.Headers, slot) }

// Panel returns the panel with the given slot index, or nil.
func (p *Parts) Panel(slot int) *node.Node { return bySlot(p.Panels, slot) }

func bySlot(nodes []*node.Node, slot int) *node.Node {
	for _, n := range nodes {
		if s, ok := SlotIndex(n); ok && s == slot {
			return n
		}
	}
	return nil
}

// Slots returns the header slot indexes in header order.
func (p *Parts) Slots() []int {
	out := make([]int, 0, len(p.Headers))
	for _, h := range p.Headers {
		if s, ok := SlotIndex(h); ok {
			out = append(out, s)
		}
	}
	return out
}

// NextFreeSlot returns the smallest non-negative slot not used by a header.
func (p *Parts) NextFreeSlot() int {
	used := p.Slots()
	sort.Ints(used)
	next := 0
	for _, s := range used {
		if s == next {
			next++
		} else if s > next {
			break
		}
	}
	return next
}

// ActiveSlot returns the slot of the first active header in header order.
func (p *Parts) ActiveSlot() (int, bool) {
	for _, h := range p.Headers {
		if IsActive(h) {
			return SlotIndex(h)
		}
	}
	return 0, false
}

// indexOf returns the position of n within nodes, or -1.
func indexOf(nodes []*node.Node, n *node.Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}

// ownedBy reports whether container is the nearest Container ancestor of n.
func ownedBy(n, container *node.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Is(KindContainer) {
			return p == container
		}
	}
	return false
}

// findContainers returns every container in the tree, in document order.
func findContainers(root *node.Node) []*node.Node {
	return root.FindAll(KindContainer)
}
