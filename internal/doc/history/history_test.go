package history

import (
	"errors"
	"testing"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Helper to build a root with three labelled paragraphs.
func newTestTree() (*node.Node, []*node.Node) {
	ps := []*node.Node{node.NewParagraph("a"), node.NewParagraph("b"), node.NewParagraph("c")}
	return node.New(node.KindRoot, nil, ps...), ps
}

func apply(t *testing.T, b *Batch, op Operation) {
	t.Helper()
	if err := op.Apply(); err != nil {
		t.Fatalf("apply %s: %v", op.Description(), err)
	}
	b.Add(op)
}

func TestInsertOpRoundTrip(t *testing.T) {
	root, _ := newTestTree()
	op := &InsertOp{Parent: root, Index: 1, Node: node.NewParagraph("x")}

	if err := op.Apply(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "axbc" {
		t.Errorf("after apply = %q, want %q", got, "axbc")
	}
	if err := op.Revert(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "abc" {
		t.Errorf("after revert = %q, want %q", got, "abc")
	}
}

func TestRemoveOpRestoresPosition(t *testing.T) {
	root, ps := newTestTree()
	op, err := NewRemoveOp(ps[1])
	if err != nil {
		t.Fatal(err)
	}
	if err := op.Apply(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "ac" {
		t.Errorf("after apply = %q", got)
	}
	if err := op.Revert(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "abc" {
		t.Errorf("after revert = %q", got)
	}

	if _, err := NewRemoveOp(node.NewParagraph("detached")); !errors.Is(err, node.ErrNotAChild) {
		t.Errorf("detached remove err = %v", err)
	}
}

func TestMoveOpRoundTrip(t *testing.T) {
	root, ps := newTestTree()
	op, err := NewMoveOp(ps[0], root, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := op.Apply(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "bca" {
		t.Errorf("after apply = %q, want bca", got)
	}
	if err := op.Revert(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "abc" {
		t.Errorf("after revert = %q, want abc", got)
	}
}

func TestSetAttrOpRestoresAbsence(t *testing.T) {
	n := node.New("Thing", map[string]any{"keep": 1})

	set := &SetAttrOp{Node: n, Key: "new", Value: true}
	_ = set.Apply()
	overwrite := &SetAttrOp{Node: n, Key: "keep", Value: 2}
	_ = overwrite.Apply()
	unset := &SetAttrOp{Node: n, Key: "keep", Clear: true}
	_ = unset.Apply()

	if n.HasAttr("keep") || !n.BoolAttr("new") {
		t.Fatalf("unexpected attrs %v", n.Attrs())
	}

	_ = unset.Revert()
	_ = overwrite.Revert()
	_ = set.Revert()

	if v, _ := n.IntAttr("keep"); v != 1 {
		t.Errorf("keep = %d, want 1", v)
	}
	if n.HasAttr("new") {
		t.Error("new should be absent after revert")
	}
}

func TestBatchRevertOrder(t *testing.T) {
	root, ps := newTestTree()
	b := NewBatch("shuffle")

	mv, _ := NewMoveOp(ps[2], root, 0) // c a b
	apply(t, b, mv)
	rm, _ := NewRemoveOp(ps[0]) // c b
	apply(t, b, rm)
	apply(t, b, &InsertOp{Parent: root, Index: 2, Node: node.NewParagraph("z")}) // c b z

	if got := root.TextContent(); got != "cbz" {
		t.Fatalf("after ops = %q", got)
	}
	if err := b.Revert(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "abc" {
		t.Errorf("after revert = %q, want abc", got)
	}
	if err := b.Apply(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "cbz" {
		t.Errorf("after re-apply = %q, want cbz", got)
	}
}

func TestBatchApplyRollsBackOnFailure(t *testing.T) {
	root, ps := newTestTree()
	b := NewBatch("broken")
	b.Add(&InsertOp{Parent: root, Index: 0, Node: node.NewParagraph("x")})
	// Inserting an attached node fails.
	b.Add(&InsertOp{Parent: root, Index: 0, Node: ps[0]})

	if err := b.Apply(); !errors.Is(err, node.ErrHasParent) {
		t.Fatalf("err = %v, want ErrHasParent", err)
	}
	if got := root.TextContent(); got != "abc" {
		t.Errorf("tree changed after failed apply: %q", got)
	}
}

func TestHistoryUndoRedo(t *testing.T) {
	root, _ := newTestTree()
	h := NewHistory(10)

	if _, err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("empty undo err = %v", err)
	}
	if _, err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("empty redo err = %v", err)
	}

	b := NewBatch("insert x")
	apply(t, b, &InsertOp{Parent: root, Index: 3, Node: node.NewParagraph("x")})
	h.Push(b)
	h.Push(NewBatch("empty"))

	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount = %d, want 1 (empty batch ignored)", h.UndoCount())
	}
	info, ok := h.PeekUndo()
	if !ok || info.Description != "insert x" || info.OpCount != 1 {
		t.Errorf("PeekUndo = %+v, %v", info, ok)
	}

	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "abc" {
		t.Errorf("after undo = %q", got)
	}
	if !h.CanRedo() || h.CanUndo() {
		t.Error("expected redo only")
	}
	if _, err := h.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "abcx" {
		t.Errorf("after redo = %q", got)
	}
}

func TestHistoryAppendToLast(t *testing.T) {
	root, ps := newTestTree()
	h := NewHistory(10)

	if h.AppendToLast(&SetAttrOp{Node: ps[0], Key: "k", Value: 1}) {
		t.Error("AppendToLast on empty history should report false")
	}

	b := NewBatch("edit")
	apply(t, b, &InsertOp{Parent: root, Index: 0, Node: node.NewParagraph("x")})
	h.Push(b)

	fix := &SetAttrOp{Node: ps[0], Key: "fixed", Value: true}
	_ = fix.Apply()
	if !h.AppendToLast(fix) {
		t.Fatal("AppendToLast should extend the last entry")
	}

	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	if ps[0].HasAttr("fixed") {
		t.Error("fixup op should be undone with its batch")
	}
	if got := root.TextContent(); got != "abc" {
		t.Errorf("after undo = %q", got)
	}
}

func TestHistoryMaxEntries(t *testing.T) {
	root, _ := newTestTree()
	h := NewHistory(2)

	for i := 0; i < 5; i++ {
		b := NewBatch("insert")
		apply(t, b, &InsertOp{Parent: root, Index: 0, Node: node.NewParagraph("x")})
		h.Push(b)
	}
	if h.UndoCount() != 2 {
		t.Errorf("UndoCount = %d, want 2", h.UndoCount())
	}
	if h.MaxEntries() != 2 {
		t.Errorf("MaxEntries = %d", h.MaxEntries())
	}

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("Clear should empty both stacks")
	}
	if NewHistory(0).MaxEntries() != DefaultMaxEntries {
		t.Error("non-positive limit should fall back to the default")
	}
}
