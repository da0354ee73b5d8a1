package tabs

import (
	"context"

	"go.uber.org/zap"

	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/doc/node"
)

// Report summarizes one reconciliation run.
type Report struct {
	// Activated lists containers whose active pair was repaired.
	Activated []string
	// Stamped counts nodes that had their containerId restored.
	Stamped int
	// Reminted maps the new id of each duplicated or unnamed container to
	// its previous id.
	Reminted map[string]string
	// Registered lists ids added to the registry.
	Registered []string
	// Pruned lists ids removed from the registry.
	Pruned []string
	// Removed lists containers deleted because they had no tabs left.
	Removed []string
	// Malformed lists containers that could not be inspected.
	Malformed []string
}

// Repairs returns the number of tree attributes the run rewrote or wanted
// to rewrite.
func (r Report) Repairs() int {
	return len(r.Activated) + r.Stamped + len(r.Reminted) + len(r.Removed)
}

// Changed reports whether the run touched the tree or the registry.
func (r Report) Changed() bool {
	return r.Repairs() > 0 || len(r.Registered) > 0 || len(r.Pruned) > 0
}

// Reconciler restores container invariants after arbitrary edits. Every pass
// is idempotent; running it on a healthy tree writes nothing.
type Reconciler struct {
	f *Feature
}

type attrFix struct {
	node  *node.Node
	key   string
	value any
}

func (r *Reconciler) onChange(ctx context.Context, _ doc.Change) error {
	if r.f.doc.IsClosed() {
		return nil
	}
	_, err := r.Reconcile(ctx)
	return err
}

// Reconcile runs all passes. Tree repairs share one transaction, opened only
// when something needs fixing.
func (r *Reconciler) Reconcile(ctx context.Context) (Report, error) {
	rep := Report{}
	fixes, empty := r.plan(&rep)

	var err error
	if len(fixes) > 0 || len(empty) > 0 {
		if r.f.doc.IsReadOnly() || r.f.doc.IsClosed() {
			r.f.logger.Debug("skipping repairs on read-only document", zap.Int("repairs", len(fixes)+len(empty)))
		} else {
			err = r.f.doc.RunAtomic(ctx, "tabs.reconcile", func(tx *doc.Tx) error {
				for _, fx := range fixes {
					if err := tx.SetAttr(fx.node, fx.key, fx.value); err != nil {
						return err
					}
				}
				for _, c := range empty {
					if !r.f.doc.Contains(c) {
						continue
					}
					if err := tx.Remove(c); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				r.f.logger.Warn("reconciliation repairs failed", zap.Int("repairs", len(fixes)), zap.Error(err))
			} else {
				r.f.logger.Debug("containers repaired",
					zap.Strings("activated", rep.Activated),
					zap.Int("stamped", rep.Stamped),
					zap.Int("reminted", len(rep.Reminted)),
					zap.Strings("removed", rep.Removed))
				for _, id := range rep.Removed {
					publish(ctx, r.f, TopicContainerRemoved, ContainerEvent{ContainerID: id})
				}
			}
		}
	}

	r.syncRegistry(ctx, &rep)
	return rep, err
}

// plan inspects every container and returns the attribute writes that would
// make it healthy, plus the containers left without tabs, which are removed
// whole.
func (r *Reconciler) plan(rep *Report) ([]attrFix, []*node.Node) {
	containers := findContainers(r.f.doc.Root())
	if len(containers) == 0 {
		return nil, nil
	}

	var (
		fixes []attrFix
		empty []*node.Node
	)
	remints := r.remints(containers)
	for _, c := range containers {
		id := ContainerID(c)
		if newID, ok := remints[c]; ok {
			if rep.Reminted == nil {
				rep.Reminted = make(map[string]string)
			}
			rep.Reminted[newID] = id
			fixes = append(fixes, attrFix{c, AttrContainerID, newID})
			id = newID
		}

		fixes = append(fixes, r.stampFixes(c, id, rep)...)

		parts, err := ResolveParts(c)
		if err != nil {
			rep.Malformed = append(rep.Malformed, id)
			r.f.logger.Debug("skipping malformed container", zap.String("container_id", id), zap.Error(err))
			continue
		}
		if parts.TabCount() == 0 {
			rep.Removed = append(rep.Removed, id)
			empty = append(empty, c)
			continue
		}
		if af := activeFixes(parts); len(af) > 0 {
			rep.Activated = append(rep.Activated, id)
			fixes = append(fixes, af...)
		}
	}
	return fixes, empty
}

// stampFixes re-stamps id onto every header, panel and append control owned
// by container, stopping at nested containers.
func (r *Reconciler) stampFixes(container *node.Node, id string, rep *Report) []attrFix {
	var fixes []attrFix
	container.Walk(func(n *node.Node) node.WalkAction {
		if n == container {
			return node.WalkContinue
		}
		if n.Is(KindContainer) {
			return node.WalkSkip
		}
		if stampsID(n.Kind()) && ContainerID(n) != id {
			fixes = append(fixes, attrFix{n, AttrContainerID, id})
			rep.Stamped++
		}
		return node.WalkContinue
	})
	return fixes
}

// activeFixes leaves exactly one pair active: the first active header, or
// the first header when none is, together with the first panel in its slot.
func activeFixes(parts *Parts) []attrFix {
	if len(parts.Headers) == 0 {
		return nil
	}
	chosen := parts.Headers[0]
	for _, h := range parts.Headers {
		if IsActive(h) {
			chosen = h
			break
		}
	}
	slot, hasSlot := SlotIndex(chosen)

	var fixes []attrFix
	for _, h := range parts.Headers {
		if want := h == chosen; IsActive(h) != want {
			fixes = append(fixes, attrFix{h, AttrIsActive, want})
		}
	}
	paired := false
	for _, p := range parts.Panels {
		s, ok := SlotIndex(p)
		want := hasSlot && ok && s == slot && !paired
		if want {
			paired = true
		}
		if IsActive(p) != want {
			fixes = append(fixes, attrFix{p, AttrIsActive, want})
		}
	}
	return fixes
}

// remints picks a new id for every container whose id is empty or also used
// by an earlier container. The registry's binding decides which copy keeps
// a shared id; otherwise the first in document order does.
func (r *Reconciler) remints(containers []*node.Node) map[*node.Node]string {
	owner := make(map[string]*node.Node)
	for _, c := range containers {
		id := ContainerID(c)
		if n, ok := r.f.registry.Resolve(id); ok && n == c {
			owner[id] = c
		}
	}
	for _, c := range containers {
		id := ContainerID(c)
		if _, ok := owner[id]; !ok && id != "" {
			owner[id] = c
		}
	}

	var out map[*node.Node]string
	var taken func(string) bool
	for _, c := range containers {
		id := ContainerID(c)
		if id != "" && owner[id] == c {
			continue
		}
		if out == nil {
			out = make(map[*node.Node]string)
			inTree := r.f.idsInTree()
			taken = func(s string) bool {
				if inTree(s) {
					return true
				}
				for _, v := range out {
					if v == s {
						return true
					}
				}
				return false
			}
		}
		newID, err := mintID(r.f.ids, r.f.registry, taken)
		if err != nil {
			r.f.logger.Warn("cannot re-mint container id", zap.String("container_id", id), zap.Error(err))
			continue
		}
		out[c] = newID
	}
	return out
}

// syncRegistry drops entries whose container left the tree or changed id,
// then registers every container not yet known.
func (r *Reconciler) syncRegistry(ctx context.Context, rep *Report) {
	reg := r.f.registry
	for _, id := range reg.IDs() {
		n, _ := reg.Resolve(id)
		if !r.f.attached(n) || ContainerID(n) != id {
			reg.Unregister(id)
			rep.Pruned = append(rep.Pruned, id)
		}
	}

	var added []string
	for _, c := range findContainers(r.f.doc.Root()) {
		id := ContainerID(c)
		if id == "" {
			continue
		}
		if _, ok := reg.Resolve(id); ok {
			continue
		}
		if err := reg.Register(id, c); err != nil {
			r.f.logger.Debug("container not registered", zap.String("container_id", id), zap.Error(err))
			continue
		}
		added = append(added, id)
	}

	if len(rep.Pruned) > 0 {
		r.f.logger.Debug("registry pruned", zap.Strings("ids", rep.Pruned))
	}
	if len(added) == 0 {
		return
	}
	rep.Registered = append(rep.Registered, added...)
	r.f.logger.Debug("registry repopulated", zap.Strings("ids", added))
	publish(ctx, r.f, TopicRegistryRepopulated, RepopulatedEvent{IDs: added})
}
