package tabs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/doc/node"
)

// Direction is the direction of a tab move.
type Direction int

const (
	// Left moves a tab one position toward the start.
	Left Direction = -1
	// Right moves a tab one position toward the end.
	Right Direction = 1
)

// Valid reports whether d is Left or Right.
func (d Direction) Valid() bool { return d == Left || d == Right }

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// CreateParams are the parameters of Create. A nil TabCount uses the
// configured default.
type CreateParams struct {
	TabCount *int
}

// AddParams are the parameters of Add.
type AddParams struct {
	ContainerID string
}

// DeleteParams are the parameters of Delete.
type DeleteParams struct {
	ContainerID string
	SlotIndex   int
}

// MoveParams are the parameters of Move.
type MoveParams struct {
	ContainerID string
	SlotIndex   int
	Direction   Direction
}

// SetActiveParams are the parameters of SetActive.
type SetActiveParams struct {
	ContainerID string
	SlotIndex   int
}

// Commands are the five mutating tab operations. Each runs in exactly one
// document transaction; a failed precondition returns before any write.
type Commands struct {
	f *Feature
}

// IsEnabled reports whether the document accepts a container at the current
// edit position.
func (c *Commands) IsEnabled() bool {
	d := c.f.doc
	if d.IsClosed() || d.IsReadOnly() {
		return false
	}
	_, _, ok := d.FindInsertionPoint(KindContainer)
	return ok
}

// Create inserts a new container at the edit position and returns its id.
func (c *Commands) Create(ctx context.Context, p CreateParams) (string, error) {
	const cmd = "create"
	s := c.f.Settings()

	count := s.DefaultTabCount
	if p.TabCount != nil {
		count = *p.TabCount
	}
	if count < 1 || count > s.MaxTabs {
		return "", c.fail(cmd, fmt.Errorf("%d not in 1..%d: %w", count, s.MaxTabs, ErrInvalidTabCount),
			zap.Int("tab_count", count))
	}
	if !c.IsEnabled() {
		return "", c.fail(cmd, ErrDisabled)
	}
	parent, index, _ := c.f.doc.FindInsertionPoint(KindContainer)

	id, err := c.f.mint()
	if err != nil {
		return "", c.fail(cmd, err)
	}

	container := BuildContainer(id, count, s.Templates)
	err = c.run(ctx, "tabs.create", id, func(tx *doc.Tx) error {
		if err := tx.Insert(parent, index, container); err != nil {
			return err
		}
		if err := c.f.registry.Register(id, container); err != nil {
			return err
		}
		parts, err := ResolveParts(container)
		if err != nil {
			return err
		}
		return setActiveSlot(tx, parts, 0)
	})
	if err != nil {
		if n, ok := c.f.registry.Resolve(id); ok && n == container {
			c.f.registry.Unregister(id)
		}
		return "", c.fail(cmd, err, zap.String("container_id", id))
	}

	if p := container.Parent(); p != nil {
		_ = c.f.doc.SetSelection(doc.Selection{Parent: p, Offset: p.IndexOf(container) + 1})
	}
	c.f.logger.Debug("container created", zap.String("container_id", id), zap.Int("tab_count", count))
	publish(ctx, c.f, TopicContainerCreated, ContainerEvent{ContainerID: id, TabCount: count})
	return id, nil
}

// Add appends a tab in the smallest free slot, makes it active and returns
// the slot.
func (c *Commands) Add(ctx context.Context, p AddParams) (int, error) {
	const cmd = "add"
	idField := zap.String("container_id", p.ContainerID)
	if !c.IsEnabled() {
		return 0, c.fail(cmd, ErrDisabled, idField)
	}
	parts, err := c.resolve(ctx, p.ContainerID)
	if err != nil {
		return 0, c.fail(cmd, err, idField)
	}
	s := c.f.Settings()
	if parts.TabCount() >= s.MaxTabs {
		return 0, c.fail(cmd, ErrTabLimit, idField, zap.Int("tab_count", parts.TabCount()))
	}

	slot := parts.NextFreeSlot()
	header, panel := BuildTabPair(slot, p.ContainerID, s.Templates)
	err = c.run(ctx, "tabs.add", p.ContainerID, func(tx *doc.Tx) error {
		if err := setActiveSlot(tx, parts, -1); err != nil {
			return err
		}
		at := parts.HeaderList.ChildCount()
		if parts.AppendControl != nil {
			at = parts.HeaderList.IndexOf(parts.AppendControl)
		}
		if err := tx.Insert(parts.HeaderList, at, header); err != nil {
			return err
		}
		return tx.Append(parts.ContentList, panel)
	})
	if err != nil {
		return 0, c.fail(cmd, err, idField, zap.Int("slot_index", slot))
	}

	c.f.logger.Debug("tab added", idField, zap.Int("slot_index", slot))
	publish(ctx, c.f, TopicTabAdded, TabEvent{ContainerID: p.ContainerID, SlotIndex: slot, ActiveSlot: slot})
	return slot, nil
}

// Delete removes the tab at a slot. Removing the last tab removes the whole
// container and unregisters it.
func (c *Commands) Delete(ctx context.Context, p DeleteParams) error {
	const cmd = "delete"
	fields := []zap.Field{zap.String("container_id", p.ContainerID), zap.Int("slot_index", p.SlotIndex)}
	if !c.IsEnabled() {
		return c.fail(cmd, ErrDisabled, fields...)
	}
	parts, err := c.resolve(ctx, p.ContainerID)
	if err != nil {
		return c.fail(cmd, err, fields...)
	}
	header, panel := parts.Header(p.SlotIndex), parts.Panel(p.SlotIndex)
	if header == nil || panel == nil {
		return c.fail(cmd, ErrSlotNotFound, fields...)
	}

	if parts.TabCount() <= 1 {
		err := c.run(ctx, "tabs.delete", p.ContainerID, func(tx *doc.Tx) error {
			if err := tx.Remove(parts.Container); err != nil {
				return err
			}
			c.f.registry.Unregister(p.ContainerID)
			return nil
		})
		if err != nil {
			_ = c.f.registry.Register(p.ContainerID, parts.Container)
			return c.fail(cmd, err, fields...)
		}
		c.f.logger.Debug("container removed", fields...)
		publish(ctx, c.f, TopicContainerRemoved, ContainerEvent{ContainerID: p.ContainerID})
		return nil
	}

	wasActive := IsActive(header)
	replacement := -1
	if wasActive {
		pos := indexOf(parts.Headers, header)
		var next *node.Node
		if pos > 0 {
			next = parts.Headers[pos-1]
		} else {
			next = parts.Headers[1]
		}
		if s, ok := SlotIndex(next); ok {
			replacement = s
		}
	}

	err = c.run(ctx, "tabs.delete", p.ContainerID, func(tx *doc.Tx) error {
		if err := tx.Remove(header); err != nil {
			return err
		}
		if err := tx.Remove(panel); err != nil {
			return err
		}
		if replacement < 0 {
			return nil
		}
		rest, err := ResolveParts(parts.Container)
		if err != nil {
			return err
		}
		return setActiveSlot(tx, rest, replacement)
	})
	if err != nil {
		return c.fail(cmd, err, fields...)
	}

	active := -1
	if rest, err := ResolveParts(parts.Container); err == nil {
		if s, ok := rest.ActiveSlot(); ok {
			active = s
		}
	}
	c.f.logger.Debug("tab deleted", append(fields, zap.Int("active_slot", active))...)
	publish(ctx, c.f, TopicTabDeleted, TabEvent{ContainerID: p.ContainerID, SlotIndex: p.SlotIndex, ActiveSlot: active})
	return nil
}

// Move shifts the tab at a slot one position left or right in both lists.
// Slot indexes are unchanged; only document order changes.
func (c *Commands) Move(ctx context.Context, p MoveParams) error {
	const cmd = "move"
	fields := []zap.Field{
		zap.String("container_id", p.ContainerID),
		zap.Int("slot_index", p.SlotIndex),
		zap.Stringer("direction", p.Direction),
	}
	if !p.Direction.Valid() {
		return c.fail(cmd, ErrInvalidDirection, fields...)
	}
	if !c.IsEnabled() {
		return c.fail(cmd, ErrDisabled, fields...)
	}
	parts, err := c.resolve(ctx, p.ContainerID)
	if err != nil {
		return c.fail(cmd, err, fields...)
	}
	// Pair by slot attribute on every call, never by position.
	header, panel := parts.Header(p.SlotIndex), parts.Panel(p.SlotIndex)
	if header == nil || panel == nil {
		return c.fail(cmd, ErrSlotNotFound, fields...)
	}

	step := int(p.Direction)
	ht := indexOf(parts.Headers, header) + step
	pt := indexOf(parts.Panels, panel) + step
	if ht < 0 || ht >= len(parts.Headers) || pt < 0 || pt >= len(parts.Panels) {
		return c.fail(cmd, ErrMoveOutOfBounds, fields...)
	}
	// Taking the neighbour's current index works in both directions because
	// Tx.Move counts positions after the moved node is detached.
	headerAt := parts.HeaderList.IndexOf(parts.Headers[ht])
	panelAt := parts.ContentList.IndexOf(parts.Panels[pt])

	err = c.run(ctx, "tabs.move", p.ContainerID, func(tx *doc.Tx) error {
		if err := tx.Move(header, parts.HeaderList, headerAt); err != nil {
			return err
		}
		return tx.Move(panel, parts.ContentList, panelAt)
	})
	if err != nil {
		return c.fail(cmd, err, fields...)
	}

	active, _ := parts.ActiveSlot()
	c.f.logger.Debug("tab moved", fields...)
	publish(ctx, c.f, TopicTabMoved, TabEvent{
		ContainerID: p.ContainerID,
		SlotIndex:   p.SlotIndex,
		ActiveSlot:  active,
		Direction:   p.Direction,
	})
	return nil
}

// SetActive makes the pair at a slot the only active one.
func (c *Commands) SetActive(ctx context.Context, p SetActiveParams) error {
	const cmd = "set_active"
	fields := []zap.Field{zap.String("container_id", p.ContainerID), zap.Int("slot_index", p.SlotIndex)}
	if !c.IsEnabled() {
		return c.fail(cmd, ErrDisabled, fields...)
	}
	parts, err := c.resolve(ctx, p.ContainerID)
	if err != nil {
		return c.fail(cmd, err, fields...)
	}
	if parts.Header(p.SlotIndex) == nil || parts.Panel(p.SlotIndex) == nil {
		return c.fail(cmd, ErrSlotNotFound, fields...)
	}

	err = c.run(ctx, "tabs.set_active", p.ContainerID, func(tx *doc.Tx) error {
		return setActiveSlot(tx, parts, p.SlotIndex)
	})
	if err != nil {
		return c.fail(cmd, err, fields...)
	}
	publish(ctx, c.f, TopicTabActivated, TabEvent{ContainerID: p.ContainerID, SlotIndex: p.SlotIndex, ActiveSlot: p.SlotIndex})
	return nil
}

// resolve finds the live container for id. An unknown or stale id triggers
// one registry rescan before giving up.
func (c *Commands) resolve(ctx context.Context, id string) (*Parts, error) {
	if id == "" {
		return nil, ErrContainerNotFound
	}
	n, ok := c.lookup(id)
	if !ok {
		c.f.reconciler.syncRegistry(ctx, &Report{})
		if n, ok = c.lookup(id); !ok {
			return nil, fmt.Errorf("%q: %w", id, ErrContainerNotFound)
		}
	}
	return ResolveParts(n)
}

func (c *Commands) lookup(id string) (*node.Node, bool) {
	n, ok := c.f.registry.Resolve(id)
	if !ok || !c.f.attached(n) || ContainerID(n) != id {
		return nil, false
	}
	return n, true
}

// run opens the command transaction, marking the container as building
// while the body runs.
func (c *Commands) run(ctx context.Context, name, id string, fn func(*doc.Tx) error) error {
	return c.f.doc.RunAtomic(ctx, name, func(tx *doc.Tx) error {
		c.f.building[id] = true
		defer delete(c.f.building, id)
		return fn(tx)
	})
}

func (c *Commands) fail(cmd string, err error, fields ...zap.Field) error {
	c.f.logger.Warn("tabs command aborted",
		append([]zap.Field{zap.String("command", cmd), zap.Error(err)}, fields...)...)
	return fmt.Errorf("tabs %s: %w", cmd, err)
}

// setActiveSlot marks exactly the header and panel at slot active. A slot
// that matches nothing deactivates every tab.
func setActiveSlot(tx *doc.Tx, parts *Parts, slot int) error {
	for _, list := range [][]*node.Node{parts.Headers, parts.Panels} {
		for _, n := range list {
			s, ok := SlotIndex(n)
			if err := tx.SetAttr(n, AttrIsActive, ok && s == slot); err != nil {
				return err
			}
		}
	}
	return nil
}
