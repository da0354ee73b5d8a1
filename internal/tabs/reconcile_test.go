package tabs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/doc/codec"
	"github.com/dshills/tabstorm/internal/doc/node"
	"github.com/dshills/tabstorm/internal/event"
)

func deactivateAll(p *Parts) func(tx *doc.Tx) error {
	return func(tx *doc.Tx) error {
		for _, n := range append(append([]*node.Node{}, p.Headers...), p.Panels...) {
			if err := tx.SetAttr(n, AttrIsActive, false); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestActiveRepairPicksFirstHeader(t *testing.T) {
	fx := newFixture(t, nil)
	id := fx.create(t, 3)
	require.NoError(t, fx.cmds.Move(fx.ctx, MoveParams{ContainerID: id, SlotIndex: 2, Direction: Left}))
	require.NoError(t, fx.cmds.Move(fx.ctx, MoveParams{ContainerID: id, SlotIndex: 2, Direction: Left}))
	p := fx.parts(t, id)
	require.Equal(t, []int{2, 0, 1}, slotsOf(p.Headers))

	undoDepth := fx.doc.History().UndoCount()
	fx.edit(t, deactivateAll(p))

	assertActive(t, fx.parts(t, id), 2)
	fx.requireHealthy(t)
	assert.Equal(t, undoDepth+1, fx.doc.History().UndoCount(), "repair folds into the raw edit")

	require.NoError(t, fx.doc.Undo(fx.ctx))
	assertActive(t, fx.parts(t, id), 0)
}

func TestActiveRepairByDirectPass(t *testing.T) {
	fx := newFixture(t, nil)
	id := fx.create(t, 2)
	p := fx.parts(t, id)
	require.NoError(t, fx.f.Stop())

	fx.edit(t, deactivateAll(p))
	require.Empty(t, activeOf(p.Headers))

	rep, err := fx.f.Reconciler().Reconcile(fx.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, rep.Activated)
	assertActive(t, p, 0)

	again, err := fx.f.Reconciler().Reconcile(fx.ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed(), "second run is a no-op")
}

func TestActiveRepairCollapsesDuplicates(t *testing.T) {
	fx := newFixture(t, nil)
	id := fx.create(t, 3)
	p := fx.parts(t, id)

	fx.edit(t, func(tx *doc.Tx) error {
		for _, n := range []*node.Node{p.Headers[1], p.Headers[2], p.Panels[2]} {
			if err := tx.SetAttr(n, AttrIsActive, true); err != nil {
				return err
			}
		}
		return nil
	})
	assertActive(t, fx.parts(t, id), 0)
}

func TestActiveRepairRepairsPanelMismatch(t *testing.T) {
	fx := newFixture(t, nil)
	id := fx.create(t, 2)
	p := fx.parts(t, id)

	fx.edit(t, func(tx *doc.Tx) error {
		if err := tx.SetAttr(p.Panels[0], AttrIsActive, false); err != nil {
			return err
		}
		return tx.SetAttr(p.Panels[1], AttrIsActive, true)
	})
	assertActive(t, fx.parts(t, id), 0)
}

func TestEmptiedContainerIsRemoved(t *testing.T) {
	fx := newFixture(t, nil)
	keep := fx.create(t, 2)
	id := fx.create(t, 2)
	p := fx.parts(t, id)

	var removed []string
	_, err := fx.doc.Bus().Subscribe(TopicContainerRemoved, event.AsHandlerFunc(func(ctx context.Context, ev event.Event[ContainerEvent]) error {
		removed = append(removed, ev.Payload.ContainerID)
		return nil
	}))
	require.NoError(t, err)

	fx.edit(t, func(tx *doc.Tx) error {
		for _, n := range append(append([]*node.Node{}, p.Headers...), p.Panels...) {
			if err := tx.Remove(n); err != nil {
				return err
			}
		}
		return nil
	})

	assert.False(t, fx.doc.Contains(p.Container))
	_, ok := fx.f.Registry().Resolve(id)
	assert.False(t, ok)
	assert.Equal(t, []string{keep}, fx.f.Registry().IDs())
	assert.Equal(t, []string{id}, removed)
	fx.requireHealthy(t)

	_, err = fx.cmds.Add(fx.ctx, AddParams{ContainerID: id})
	assert.ErrorIs(t, err, ErrContainerNotFound)

	again, err := fx.f.Reconciler().Reconcile(fx.ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed())
}

func TestIDPropagationRepair(t *testing.T) {
	fx := newFixture(t, nil)
	id := fx.create(t, 2)
	p := fx.parts(t, id)
	button := p.AppendControl.FindChild(KindAppendButton)

	fx.edit(t, func(tx *doc.Tx) error {
		for _, n := range []*node.Node{p.Headers[0], p.Panels[1], p.AppendControl, button} {
			if err := tx.RemoveAttr(n, AttrContainerID); err != nil {
				return err
			}
		}
		return tx.SetAttr(p.Headers[1], AttrContainerID, "tabs-wrong")
	})

	for _, n := range []*node.Node{p.Headers[0], p.Headers[1], p.Panels[1], p.AppendControl, button} {
		assert.Equal(t, id, ContainerID(n), "%s", n.Kind())
	}
	fx.requireHealthy(t)
}

func TestRegistryRepopulationAfterLoad(t *testing.T) {
	fx := newFixture(t, nil)
	fx.create(t, 2)

	src := node.New(node.KindRoot, nil,
		node.NewParagraph("before"),
		BuildContainer("tabs-stored", 2, DefaultTemplates()),
	)
	raw, err := codec.Encode(src)
	require.NoError(t, err)
	loaded, err := codec.Decode(raw)
	require.NoError(t, err)

	var repopulated []RepopulatedEvent
	_, err = fx.doc.Bus().Subscribe(TopicRegistryRepopulated, event.AsHandlerFunc(func(ctx context.Context, ev event.Event[RepopulatedEvent]) error {
		repopulated = append(repopulated, ev.Payload)
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, fx.doc.Load(fx.ctx, loaded))

	n, ok := fx.f.Registry().Resolve("tabs-stored")
	require.True(t, ok)
	assert.Same(t, loaded.Child(1), n)
	assert.Equal(t, []string{"tabs-stored"}, fx.f.Registry().IDs(), "previous document's containers are gone")
	require.Len(t, repopulated, 1)
	assert.Equal(t, []string{"tabs-stored"}, repopulated[0].IDs)
	fx.requireHealthy(t)

	_, err = fx.cmds.Add(fx.ctx, AddParams{ContainerID: "tabs-stored"})
	require.NoError(t, err)
}

func TestOrphanedContainerBecomesStable(t *testing.T) {
	fx := newFixture(t, nil)
	require.NoError(t, fx.f.Stop())

	c := BuildContainer("tabs-orphan", 2, DefaultTemplates())
	fx.edit(t, func(tx *doc.Tx) error { return tx.Append(fx.doc.Root(), c) })
	assert.Equal(t, StateOrphaned, fx.f.State("tabs-orphan"))

	rep, err := fx.f.Reconciler().Reconcile(fx.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tabs-orphan"}, rep.Registered)
	assert.Equal(t, StateStable, fx.f.State("tabs-orphan"))
}

func TestCommandsRescanUnknownContainers(t *testing.T) {
	fx := newFixture(t, nil)
	require.NoError(t, fx.f.Stop())

	c := BuildContainer("tabs-late", 1, DefaultTemplates())
	fx.edit(t, func(tx *doc.Tx) error { return tx.Append(fx.doc.Root(), c) })

	slot, err := fx.cmds.Add(fx.ctx, AddParams{ContainerID: "tabs-late"})
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
}

func TestPastedCopyGetsFreshID(t *testing.T) {
	fx := newFixture(t, nil)
	id := fx.create(t, 2)
	orig, _ := fx.f.Registry().Resolve(id)

	copyNode := orig.Clone()
	fx.edit(t, func(tx *doc.Tx) error { return tx.Append(fx.doc.Root(), copyNode) })

	copyID := ContainerID(copyNode)
	assert.NotEqual(t, id, copyID)
	assert.Equal(t, id, ContainerID(orig), "registered original keeps its id")

	cp, err := ResolveParts(copyNode)
	require.NoError(t, err)
	for _, n := range append(cp.Headers, cp.Panels...) {
		assert.Equal(t, copyID, ContainerID(n))
	}
	n, ok := fx.f.Registry().Resolve(copyID)
	require.True(t, ok)
	assert.Same(t, copyNode, n)
	fx.requireHealthy(t)

	// One undo removes the paste together with its re-stamp.
	require.NoError(t, fx.doc.Undo(fx.ctx))
	assert.Equal(t, []string{id}, fx.f.Registry().IDs())
	fx.requireHealthy(t)
}

func TestNestedContainersKeepSeparateIDs(t *testing.T) {
	outer := BuildContainer("tabs-outer", 1, DefaultTemplates())
	inner := BuildContainer("tabs-inner", 1, DefaultTemplates())
	outerParts, err := ResolveParts(outer)
	require.NoError(t, err)
	require.NoError(t, outerParts.Panels[0].AppendChild(inner))

	root := node.New(node.KindRoot, nil, outer)
	fx := newFixture(t, []doc.Option{doc.WithRoot(root)})

	innerParts, err := ResolveParts(inner)
	require.NoError(t, err)
	assert.Equal(t, "tabs-inner", ContainerID(innerParts.Headers[0]))
	assert.Equal(t, []string{"tabs-inner", "tabs-outer"}, fx.f.Registry().IDs())
	fx.requireHealthy(t)
}

func TestReconcileOnReadOnlyDocumentOnlyRegisters(t *testing.T) {
	c := BuildContainer("tabs-ro", 2, DefaultTemplates())
	parts, err := ResolveParts(c)
	require.NoError(t, err)
	parts.Headers[0].SetAttr(AttrIsActive, false)
	parts.Panels[0].SetAttr(AttrIsActive, false)

	fx := newFixture(t, []doc.Option{doc.WithRoot(node.New(node.KindRoot, nil, c)), doc.WithReadOnly()})
	assert.Empty(t, activeOf(parts.Headers), "read-only tree is not repaired")
	_, ok := fx.f.Registry().Resolve("tabs-ro")
	assert.True(t, ok)
}

func TestCloseClearsRegistry(t *testing.T) {
	fx := newFixture(t, nil)
	fx.create(t, 2)
	require.NoError(t, fx.doc.Close(fx.ctx))
	assert.Zero(t, fx.f.Registry().Len())
}
