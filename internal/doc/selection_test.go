package doc

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tabstorm/internal/doc/node"
)

const (
	kindBox   node.Kind = "Box"
	kindInner node.Kind = "Inner"
)

func TestSchema(t *testing.T) {
	s := DefaultSchema()
	assert.True(t, s.IsAllowed(node.KindRoot, node.KindParagraph))
	assert.False(t, s.IsAllowed(node.KindRoot, kindBox))

	s.Allow(node.KindRoot, kindBox, kindInner)
	s.Disallow(node.KindRoot, kindInner)
	if diff := cmp.Diff([]node.Kind{kindBox, node.KindParagraph}, s.AllowedChildren(node.KindRoot)); diff != "" {
		t.Errorf("AllowedChildren mismatch (-want +got):\n%s", diff)
	}
}

func TestFindInsertionPoint(t *testing.T) {
	// Root > [p0, Box > Inner > p1]
	p0 := node.NewParagraph("p0")
	p1 := node.NewParagraph("p1")
	inner := node.New(kindInner, nil, p1)
	box := node.New(kindBox, nil, inner)
	root := node.New(node.KindRoot, nil, p0, box)

	schema := DefaultSchema()
	schema.Allow(node.KindRoot, kindBox)
	schema.Allow(kindBox, kindInner)
	schema.Allow(kindInner, node.KindParagraph)
	d := New(WithRoot(root), WithSchema(schema))

	tests := []struct {
		name       string
		sel        Selection
		kind       node.Kind
		wantParent *node.Node
		wantIndex  int
		wantOK     bool
	}{
		{"root allows box directly", Selection{Parent: root, Offset: 1}, kindBox, root, 1, true},
		{"inside paragraph climbs to root", Selection{Parent: p0, Offset: 0}, kindBox, root, 1, true},
		{"inside nested body climbs past box", Selection{Parent: p1, Offset: 1}, kindBox, root, 2, true},
		{"paragraph allowed in inner", Selection{Parent: p1, Offset: 0}, node.KindParagraph, inner, 1, true},
		{"nothing allows unknown kind", Selection{Parent: p1, Offset: 0}, "Unknown", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, d.SetSelection(tt.sel))
			parent, index, ok := d.FindInsertionPoint(tt.kind)
			assert.Equal(t, tt.wantOK, ok)
			assert.Same(t, tt.wantParent, parent)
			assert.Equal(t, tt.wantIndex, index)
		})
	}

	require.NoError(t, d.SetSelection(Selection{Parent: p1}))
	assert.Same(t, box, d.FindSelectionAncestor(kindBox))
	assert.Nil(t, d.FindSelectionAncestor("Unknown"))
}

func TestSelectionValidation(t *testing.T) {
	ctx := context.Background()
	p := node.NewParagraph("a")
	root := node.New(node.KindRoot, nil, p)
	d := New(WithRoot(root))

	assert.ErrorIs(t, d.SetSelection(Selection{Parent: node.NewParagraph("detached")}), ErrSelectionDetached)
	assert.ErrorIs(t, d.SetSelection(Selection{Parent: root, Offset: 5}), node.ErrIndexOutOfRange)

	require.NoError(t, d.SetSelection(SelectionAt(p)))
	assert.Equal(t, Selection{Parent: root, Offset: 0}, d.Selection())

	require.NoError(t, d.SetSelection(SelectionIn(p)))
	require.NoError(t, d.RunAtomic(ctx, "remove", func(tx *Tx) error {
		return tx.Remove(p)
	}))
	assert.Equal(t, Selection{Parent: root, Offset: 0}, d.Selection(), "dangling selection falls back to the document end")
}
