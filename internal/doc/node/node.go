// Package node provides the generic typed tree that backs a document.
//
// A Node is a kind tag, an ordered list of children and an attribute map.
// Text leaves additionally carry a string payload. Node identity is the
// pointer: two nodes with identical content are still different nodes.
//
// The mutation methods on Node (InsertChild, RemoveChild, SetAttr, ...) are
// the raw primitives used by the transaction layer in package doc. Code that
// edits a live document must go through doc.Tx so the change is recorded,
// undoable and observed as one unit.
package node

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the type of a node.
type Kind string

// Kinds every document understands. Feature packages define their own.
const (
	KindRoot      Kind = "Root"
	KindParagraph Kind = "Paragraph"
	KindText      Kind = "Text"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Node is one element of a document tree.
type Node struct {
	kind     Kind
	attrs    map[string]any
	children []*Node
	parent   *Node
	text     string
}

// New creates a detached node with the given attributes and children.
// Children that already have a parent are skipped.
func New(kind Kind, attrs map[string]any, children ...*Node) *Node {
	n := &Node{kind: kind}
	for k, v := range attrs {
		n.SetAttr(k, v)
	}
	for _, c := range children {
		if c == nil || c.parent != nil {
			continue
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// NewText creates a detached text leaf.
func NewText(text string) *Node {
	return &Node{kind: KindText, text: text}
}

// NewParagraph creates a paragraph holding a single text leaf.
func NewParagraph(text string) *Node {
	return New(KindParagraph, nil, NewText(text))
}

// Kind returns the node kind.
func (n *Node) Kind() Kind {
	return n.kind
}

// Is reports whether the node is non-nil and of the given kind.
func (n *Node) Is(kind Kind) bool {
	return n != nil && n.kind == kind
}

// Parent returns the parent node, or nil for a detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Text returns the text payload. Only text leaves carry one.
func (n *Node) Text() string {
	return n.text
}

// SetText replaces the text payload.
func (n *Node) SetText(text string) {
	n.text = text
}

// ============================================================================
// Children
// ============================================================================

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the child at index i, or nil if i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	if child == nil || child.parent != n {
		return -1
	}
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// InsertChild inserts child at index i. The child must be detached.
func (n *Node) InsertChild(i int, child *Node) error {
	if child == nil {
		return fmt.Errorf("insert nil child: %w", ErrNilNode)
	}
	if child.parent != nil {
		return ErrHasParent
	}
	if i < 0 || i > len(n.children) {
		return fmt.Errorf("insert at %d of %d: %w", i, len(n.children), ErrIndexOutOfRange)
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
	return nil
}

// AppendChild adds child at the end of the child list.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertChild(len(n.children), child)
}

// RemoveChildAt detaches and returns the child at index i.
func (n *Node) RemoveChildAt(i int) (*Node, error) {
	if i < 0 || i >= len(n.children) {
		return nil, fmt.Errorf("remove at %d of %d: %w", i, len(n.children), ErrIndexOutOfRange)
	}
	child := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	return child, nil
}

// RemoveChild detaches child and returns the index it occupied.
func (n *Node) RemoveChild(child *Node) (int, error) {
	i := n.IndexOf(child)
	if i < 0 {
		return -1, ErrNotAChild
	}
	_, err := n.RemoveChildAt(i)
	return i, err
}

// ============================================================================
// Attributes
// ============================================================================

// Attr returns the raw attribute value.
func (n *Node) Attr(key string) (any, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// HasAttr reports whether the attribute is set.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.attrs[key]
	return ok
}

// StringAttr returns a string attribute. Non-string values are formatted.
func (n *Node) StringAttr(key string) (string, bool) {
	v, ok := n.attrs[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case int:
		return strconv.Itoa(s), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return fmt.Sprint(v), true
	}
}

// IntAttr returns an integer attribute. Numeric strings are accepted so
// documents produced by lenient serializers still resolve.
func (n *Node) IntAttr(key string) (int, bool) {
	v, ok := n.attrs[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case int:
		return x, true
	case string:
		i, err := strconv.Atoi(x)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// BoolAttr returns a boolean attribute. A missing attribute reads as false.
func (n *Node) BoolAttr(key string) bool {
	v, ok := n.attrs[key]
	if !ok {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	default:
		return false
	}
}

// AttrKeys returns the attribute names in sorted order.
func (n *Node) AttrKeys() []string {
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Attrs returns a copy of the attribute map.
func (n *Node) Attrs() map[string]any {
	out := make(map[string]any, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

// SetAttr sets an attribute and returns the previous value, if any.
// Integer types are normalized to int.
func (n *Node) SetAttr(key string, value any) (old any, had bool) {
	if n.attrs == nil {
		n.attrs = make(map[string]any)
	}
	old, had = n.attrs[key]
	n.attrs[key] = Normalize(value)
	return old, had
}

// RemoveAttr clears an attribute and returns its previous value, if any.
func (n *Node) RemoveAttr(key string) (old any, had bool) {
	old, had = n.attrs[key]
	delete(n.attrs, key)
	return old, had
}

// Normalize converts integer types and integral floats to int, the form
// attribute values are stored in.
func Normalize(value any) any {
	switch x := value.(type) {
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case float64:
		if x == float64(int(x)) {
			return int(x)
		}
		return x
	default:
		return value
	}
}

// ============================================================================
// Copying
// ============================================================================

// Clone returns a detached deep copy of n.
func (n *Node) Clone() *Node {
	c := &Node{kind: n.kind, text: n.text}
	if len(n.attrs) > 0 {
		c.attrs = make(map[string]any, len(n.attrs))
		for k, v := range n.attrs {
			c.attrs[k] = v
		}
	}
	for _, child := range n.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// String returns a compact debug representation of the node (not its subtree).
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.kind == KindText {
		return fmt.Sprintf("Text(%q)", n.text)
	}
	return fmt.Sprintf("%s%v[%d]", n.kind, n.attrs, len(n.children))
}
