package doc

import (
	"sort"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Schema records which node kinds may appear as direct children of which.
// Position queries use it to decide where a block may be inserted.
type Schema struct {
	allowed map[node.Kind]map[node.Kind]bool
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{allowed: make(map[node.Kind]map[node.Kind]bool)}
}

// DefaultSchema allows paragraphs at the top level and text inside paragraphs.
// Features extend it with their own kinds.
func DefaultSchema() *Schema {
	s := NewSchema()
	s.Allow(node.KindRoot, node.KindParagraph)
	s.Allow(node.KindParagraph, node.KindText)
	return s
}

// Allow permits each of children directly under parent.
func (s *Schema) Allow(parent node.Kind, children ...node.Kind) {
	set, ok := s.allowed[parent]
	if !ok {
		set = make(map[node.Kind]bool)
		s.allowed[parent] = set
	}
	for _, c := range children {
		set[c] = true
	}
}

// Disallow revokes a permission granted by Allow.
func (s *Schema) Disallow(parent, child node.Kind) {
	delete(s.allowed[parent], child)
}

// IsAllowed reports whether child may appear directly under parent.
func (s *Schema) IsAllowed(parent, child node.Kind) bool {
	return s.allowed[parent][child]
}

// AllowedChildren returns the kinds permitted under parent, sorted.
func (s *Schema) AllowedChildren(parent node.Kind) []node.Kind {
	out := make([]node.Kind, 0, len(s.allowed[parent]))
	for k := range s.allowed[parent] {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
