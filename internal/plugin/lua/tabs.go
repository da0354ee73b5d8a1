package lua

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/event"
	"github.com/dshills/tabstorm/internal/event/topic"
	"github.com/dshills/tabstorm/internal/tabs"
)

// TabsModule implements the tabs scripting API.
type TabsModule struct {
	feature *tabs.Feature
	bridge  *Bridge
	perms   *Permissions

	subs   map[int]event.Subscription
	nextID int
}

// TabsOption configures a TabsModule.
type TabsOption func(*TabsModule)

// WithCapabilities limits the functions a script may call. The default
// grants CapabilityTabs.
func WithCapabilities(caps ...Capability) TabsOption {
	return func(m *TabsModule) {
		m.perms = NewPermissions(caps...)
	}
}

// NewTabsModule creates a module driving feature.
func NewTabsModule(feature *tabs.Feature, opts ...TabsOption) *TabsModule {
	m := &TabsModule{
		feature: feature,
		perms:   NewPermissions(CapabilityTabs),
		subs:    make(map[int]event.Subscription),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Permissions returns the capabilities granted to scripts.
func (m *TabsModule) Permissions() *Permissions {
	return m.perms
}

// Name returns the module name.
func (m *TabsModule) Name() string {
	return "tabs"
}

// Register registers the module into the Lua state.
func (m *TabsModule) Register(L *lua.LState) error {
	if m.feature == nil {
		return errors.New("tabs module has no feature")
	}
	m.bridge = NewBridge(L)

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"create":   m.guard(CapabilityWrite, "create", m.create),
		"add":      m.guard(CapabilityWrite, "add", m.add),
		"delete":   m.guard(CapabilityWrite, "delete", m.delete),
		"move":     m.guard(CapabilityWrite, "move", m.move),
		"activate": m.guard(CapabilityWrite, "activate", m.activate),
		"info":     m.guard(CapabilityRead, "info", m.info),
		"ids":      m.guard(CapabilityRead, "ids", m.ids),
		"state":    m.guard(CapabilityRead, "state", m.state),
		"enabled":  m.guard(CapabilityRead, "enabled", m.enabled),
		"select":   m.guard(CapabilityRead, "select", m.selectPath),
		"enter":    m.guard(CapabilityRead, "enter", m.enter),
		"validate": m.guard(CapabilityRead, "validate", m.validate),
		"undo":     m.guard(CapabilityHistory, "undo", m.undo),
		"redo":     m.guard(CapabilityHistory, "redo", m.redo),
		"on":       m.guard(CapabilityEvents, "on", m.on),
		"off":      m.guard(CapabilityEvents, "off", m.off),
	})
	L.SetField(mod, "LEFT", lua.LNumber(tabs.Left))
	L.SetField(mod, "RIGHT", lua.LNumber(tabs.Right))
	L.SetGlobal(m.Name(), mod)
	return nil
}

// Close cancels subscriptions made with tabs.on.
func (m *TabsModule) Close() error {
	bus := m.feature.Document().Bus()
	var errs []error
	for id, sub := range m.subs {
		errs = append(errs, bus.Unsubscribe(sub))
		delete(m.subs, id)
	}
	return errors.Join(errs...)
}

func luaContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// guard raises a Lua error unless c is granted.
func (m *TabsModule) guard(c Capability, name string, fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := m.perms.Check(c, "tabs."+name); err != nil {
			return raise(L, name, err)
		}
		return fn(L)
	}
}

// raise converts a Go error into a Lua error.
func raise(L *lua.LState, fn string, err error) int {
	L.RaiseError("tabs.%s: %s", fn, err.Error())
	return 0
}

// create([count]) -> id
func (m *TabsModule) create(L *lua.LState) int {
	var p tabs.CreateParams
	if L.GetTop() >= 1 && L.Get(1) != lua.LNil {
		n := L.CheckInt(1)
		p.TabCount = &n
	}
	id, err := m.feature.Commands().Create(luaContext(L), p)
	if err != nil {
		return raise(L, "create", err)
	}
	L.Push(lua.LString(id))
	return 1
}

// add(id) -> slot
func (m *TabsModule) add(L *lua.LState) int {
	slot, err := m.feature.Commands().Add(luaContext(L), tabs.AddParams{ContainerID: L.CheckString(1)})
	if err != nil {
		return raise(L, "add", err)
	}
	L.Push(lua.LNumber(slot))
	return 1
}

// delete(id, slot)
func (m *TabsModule) delete(L *lua.LState) int {
	err := m.feature.Commands().Delete(luaContext(L), tabs.DeleteParams{
		ContainerID: L.CheckString(1),
		SlotIndex:   L.CheckInt(2),
	})
	if err != nil {
		return raise(L, "delete", err)
	}
	return 0
}

// move(id, slot, dir); dir is "left", "right", -1 or 1.
func (m *TabsModule) move(L *lua.LState) int {
	id := L.CheckString(1)
	slot := L.CheckInt(2)
	dir, err := checkDirection(L, 3)
	if err != nil {
		return raise(L, "move", err)
	}
	err = m.feature.Commands().Move(luaContext(L), tabs.MoveParams{ContainerID: id, SlotIndex: slot, Direction: dir})
	if err != nil {
		return raise(L, "move", err)
	}
	return 0
}

func checkDirection(L *lua.LState, n int) (tabs.Direction, error) {
	switch v := L.Get(n).(type) {
	case lua.LNumber:
		if float64(v) != float64(int(v)) {
			return 0, fmt.Errorf("%v: %w", float64(v), tabs.ErrInvalidDirection)
		}
		return tabs.Direction(int(v)), nil
	case lua.LString:
		switch strings.ToLower(string(v)) {
		case "left":
			return tabs.Left, nil
		case "right":
			return tabs.Right, nil
		}
		return 0, fmt.Errorf("%q: %w", string(v), tabs.ErrInvalidDirection)
	default:
		return 0, fmt.Errorf("%s: %w", v.Type(), tabs.ErrInvalidDirection)
	}
}

// activate(id, slot)
func (m *TabsModule) activate(L *lua.LState) int {
	err := m.feature.Commands().SetActive(luaContext(L), tabs.SetActiveParams{
		ContainerID: L.CheckString(1),
		SlotIndex:   L.CheckInt(2),
	})
	if err != nil {
		return raise(L, "activate", err)
	}
	return 0
}

// info(id) -> {id, active, path, tabs = {{slot, title, active}, ...}}
func (m *TabsModule) info(L *lua.LState) int {
	info, err := m.feature.Describe(L.CheckString(1))
	if err != nil {
		return raise(L, "info", err)
	}
	t := L.NewTable()
	t.RawSetString("id", lua.LString(info.ID))
	t.RawSetString("active", lua.LNumber(info.ActiveSlot))
	t.RawSetString("path", m.bridge.ToLuaValue(info.Path))
	list := L.CreateTable(len(info.Tabs), 0)
	for _, tab := range info.Tabs {
		list.Append(m.bridge.ToLuaValue(tab))
	}
	t.RawSetString("tabs", list)
	L.Push(t)
	return 1
}

// ids() -> {id, ...}, sorted
func (m *TabsModule) ids(L *lua.LState) int {
	ids := m.feature.Registry().IDs()
	sort.Strings(ids)
	L.Push(m.bridge.ToLuaValue(ids))
	return 1
}

// state(id) -> "absent" | "building" | "stable" | "orphaned"
func (m *TabsModule) state(L *lua.LState) int {
	L.Push(lua.LString(m.feature.State(L.CheckString(1)).String()))
	return 1
}

// enabled() -> bool
func (m *TabsModule) enabled(L *lua.LState) int {
	L.Push(lua.LBool(m.feature.Commands().IsEnabled()))
	return 1
}

// undo() -> bool; false when there is nothing to undo.
func (m *TabsModule) undo(L *lua.LState) int {
	err := m.feature.Document().Undo(luaContext(L))
	if errors.Is(err, doc.ErrNothingToUndo) {
		L.Push(lua.LFalse)
		return 1
	}
	if err != nil {
		return raise(L, "undo", err)
	}
	L.Push(lua.LTrue)
	return 1
}

// redo() -> bool; false when there is nothing to redo.
func (m *TabsModule) redo(L *lua.LState) int {
	err := m.feature.Document().Redo(luaContext(L))
	if errors.Is(err, doc.ErrNothingToRedo) {
		L.Push(lua.LFalse)
		return 1
	}
	if err != nil {
		return raise(L, "redo", err)
	}
	L.Push(lua.LTrue)
	return 1
}

// select(i, j, ...) moves the edit position to the end of the node at the
// given 0-based child path. No arguments selects the end of the document.
func (m *TabsModule) selectPath(L *lua.LState) int {
	path := make([]int, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		path = append(path, L.CheckInt(i))
	}
	d := m.feature.Document()
	n, err := d.Root().Resolve(path)
	if err != nil {
		return raise(L, "select", err)
	}
	if err := d.SetSelection(doc.SelectionIn(n)); err != nil {
		return raise(L, "select", err)
	}
	return 0
}

// enter(id, slot) moves the edit position to the end of a tab's panel.
func (m *TabsModule) enter(L *lua.LState) int {
	id := L.CheckString(1)
	slot := L.CheckInt(2)
	n, ok := m.feature.Registry().Resolve(id)
	if !ok {
		return raise(L, "enter", fmt.Errorf("%q: %w", id, tabs.ErrContainerNotFound))
	}
	parts, err := tabs.ResolveParts(n)
	if err != nil {
		return raise(L, "enter", err)
	}
	panel := parts.Panel(slot)
	if panel == nil {
		return raise(L, "enter", fmt.Errorf("%d: %w", slot, tabs.ErrSlotNotFound))
	}
	if err := m.feature.Document().SetSelection(doc.SelectionIn(panel)); err != nil {
		return raise(L, "enter", err)
	}
	return 0
}

// validate() -> {violation, ...} as strings
func (m *TabsModule) validate(L *lua.LState) int {
	root := m.feature.Document().Root()
	violations := append(tabs.Validate(root), tabs.ValidateRegistry(root, m.feature.Registry())...)
	t := L.CreateTable(len(violations), 0)
	for _, v := range violations {
		t.Append(lua.LString(v.String()))
	}
	L.Push(t)
	return 1
}

// on(topic, fn) -> handle. fn receives (topic, payload). Patterns may use
// the bus wildcards, e.g. "tabs.tab.*".
func (m *TabsModule) on(L *lua.LState) int {
	pattern := topic.Topic(L.CheckString(1))
	fn := L.CheckFunction(2)

	handler := event.HandlerFunc(func(ctx context.Context, ev any) error {
		tp, ok := ev.(event.TopicProvider)
		if !ok {
			return nil
		}
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true},
			lua.LString(tp.EventTopic().String()),
			m.payloadOf(ev))
	})
	sub, err := m.feature.Document().Bus().Subscribe(pattern, handler)
	if err != nil {
		return raise(L, "on", err)
	}
	m.nextID++
	m.subs[m.nextID] = sub
	L.Push(lua.LNumber(m.nextID))
	return 1
}

// off(handle) -> bool
func (m *TabsModule) off(L *lua.LState) int {
	id := L.CheckInt(1)
	sub, ok := m.subs[id]
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	delete(m.subs, id)
	if err := m.feature.Document().Bus().Unsubscribe(sub); err != nil {
		return raise(L, "off", err)
	}
	L.Push(lua.LTrue)
	return 1
}

// payloadOf converts an Event[T] payload into a table.
func (m *TabsModule) payloadOf(ev any) lua.LValue {
	switch e := ev.(type) {
	case event.Event[tabs.ContainerEvent]:
		return m.bridge.ToLuaValue(e.Payload)
	case event.Event[tabs.TabEvent]:
		return m.bridge.ToLuaValue(e.Payload)
	case event.Event[tabs.RepopulatedEvent]:
		return m.bridge.ToLuaValue(e.Payload)
	case event.Event[doc.Change]:
		return m.bridge.ToLuaValue(e.Payload)
	case event.Event[doc.Loaded]:
		return m.bridge.ToLuaValue(e.Payload)
	case event.Event[doc.Closed]:
		return m.bridge.ToLuaValue(e.Payload)
	default:
		return lua.LNil
	}
}
