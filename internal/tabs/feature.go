package tabs

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/doc/node"
	"github.com/dshills/tabstorm/internal/event"
	"github.com/dshills/tabstorm/internal/event/topic"
)

// State is the lifecycle state of one container.
type State int

const (
	// StateAbsent means no container with the id is in the document.
	StateAbsent State = iota
	// StateBuilding means a command transaction on the container is open.
	StateBuilding
	// StateStable means the container is in the document and registered.
	StateStable
	// StateOrphaned means the container is in the document but not registered.
	StateOrphaned
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateBuilding:
		return "building"
	case StateStable:
		return "stable"
	case StateOrphaned:
		return "orphaned"
	default:
		return "unknown"
	}
}

// Feature attaches tabbed containers to a document. It owns the identity
// registry, runs reconciliation after every change and exposes the commands.
type Feature struct {
	doc      *doc.Document
	registry Registry
	ids      IDGenerator
	logger   *zap.Logger

	mu       sync.RWMutex
	settings Settings

	commands   *Commands
	reconciler *Reconciler

	subs     []event.Subscription
	building map[string]bool
}

// New creates the feature for d and extends d's schema with container kinds.
// Call Start to begin reconciling.
func New(d *doc.Document, opts ...Option) *Feature {
	f := &Feature{
		doc:      d,
		settings: DefaultSettings(),
		building: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.registry == nil {
		f.registry = NewMemoryRegistry()
	}
	if f.ids == nil {
		f.ids = UUIDGenerator{}
	}
	if f.logger == nil {
		f.logger = d.Logger()
	}
	f.logger = f.logger.Named("tabs")
	f.commands = &Commands{f: f}
	f.reconciler = &Reconciler{f: f}
	RegisterSchema(d.Schema())
	return f
}

// Start subscribes the reconciler and runs one pass over the current tree.
func (f *Feature) Start(ctx context.Context) error {
	if len(f.subs) > 0 {
		return ErrAlreadyStarted
	}
	bus := f.doc.Bus()

	onChange, err := f.doc.OnChange(f.reconciler.onChange, event.WithPriority(event.PriorityCritical))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", doc.TopicChanged, err)
	}
	onLoad, err := bus.SubscribeFunc(doc.TopicLoaded, func(ctx context.Context, _ any) error {
		f.registry.Clear()
		return nil
	}, event.WithPriority(event.PriorityCritical))
	if err != nil {
		_ = bus.Unsubscribe(onChange)
		return fmt.Errorf("subscribe %s: %w", doc.TopicLoaded, err)
	}
	onClose, err := bus.SubscribeFunc(doc.TopicClosed, func(ctx context.Context, _ any) error {
		f.registry.Clear()
		return nil
	})
	if err != nil {
		_ = bus.Unsubscribe(onChange)
		_ = bus.Unsubscribe(onLoad)
		return fmt.Errorf("subscribe %s: %w", doc.TopicClosed, err)
	}
	f.subs = []event.Subscription{onChange, onLoad, onClose}

	if _, err := f.reconciler.Reconcile(ctx); err != nil {
		f.logger.Warn("initial reconciliation failed", zap.Error(err))
	}
	return nil
}

// Stop unsubscribes the reconciler.
func (f *Feature) Stop() error {
	var firstErr error
	for _, sub := range f.subs {
		if err := f.doc.Bus().Unsubscribe(sub); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.subs = nil
	return firstErr
}

// Document returns the document the feature edits.
func (f *Feature) Document() *doc.Document { return f.doc }

// Registry returns the identity registry.
func (f *Feature) Registry() Registry { return f.registry }

// Commands returns the command set.
func (f *Feature) Commands() *Commands { return f.commands }

// Reconciler returns the reconciler.
func (f *Feature) Reconciler() *Reconciler { return f.reconciler }

// Settings returns the current settings.
func (f *Feature) Settings() Settings {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.settings
}

// SetDefaults replaces the settings. It is safe to call from another goroutine.
func (f *Feature) SetDefaults(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	f.settings = s
	f.mu.Unlock()
	f.logger.Info("tab settings updated",
		zap.Int("default_tab_count", s.DefaultTabCount),
		zap.Int("max_tabs", s.MaxTabs))
	return nil
}

// State returns the lifecycle state of the container with id.
func (f *Feature) State(id string) State {
	if f.building[id] {
		return StateBuilding
	}
	if n, ok := f.registry.Resolve(id); ok && f.doc.Contains(n) && ContainerID(n) == id {
		return StateStable
	}
	for _, c := range findContainers(f.doc.Root()) {
		if ContainerID(c) == id {
			return StateOrphaned
		}
	}
	return StateAbsent
}

// TabInfo describes one tab.
type TabInfo struct {
	Slot   int
	Title  string
	Active bool
}

// ContainerInfo describes a container's tabs in header order.
type ContainerInfo struct {
	ID         string
	Tabs       []TabInfo
	ActiveSlot int
	Path       []int
}

// Describe reports the tabs of the container with id.
func (f *Feature) Describe(id string) (ContainerInfo, error) {
	parts, err := f.commands.resolve(context.Background(), id)
	if err != nil {
		return ContainerInfo{}, err
	}
	info := ContainerInfo{ID: id, ActiveSlot: -1, Path: parts.Container.Path()}
	for _, h := range parts.Headers {
		slot, _ := SlotIndex(h)
		t := TabInfo{Slot: slot, Active: IsActive(h)}
		if title := h.FindChild(KindTabTitle); title != nil {
			t.Title = title.TextContent()
		}
		if t.Active && info.ActiveSlot < 0 {
			info.ActiveSlot = slot
		}
		info.Tabs = append(info.Tabs, t)
	}
	return info, nil
}

// publish sends a tabs event. Handler failures are logged.
func publish[T any](ctx context.Context, f *Feature, t topic.Topic, payload T) {
	if err := f.doc.Bus().Publish(ctx, event.NewEvent(t, payload, EventSource)); err != nil {
		f.logger.Warn("tabs event handler failed", zap.Stringer("topic", t), zap.Error(err))
	}
}

// idsInTree returns a predicate reporting ids already present in the document.
func (f *Feature) idsInTree() func(string) bool {
	present := make(map[string]bool)
	for _, c := range findContainers(f.doc.Root()) {
		present[ContainerID(c)] = true
	}
	return func(id string) bool { return present[id] }
}

// mint returns a container id unused in this session.
func (f *Feature) mint() (string, error) {
	return mintID(f.ids, f.registry, f.idsInTree())
}

// attached reports whether n is a container inside the document.
func (f *Feature) attached(n *node.Node) bool {
	return n != nil && n.Is(KindContainer) && f.doc.Contains(n)
}
