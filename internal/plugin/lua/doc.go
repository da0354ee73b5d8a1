// Package lua runs tabstorm editing scripts in a sandboxed gopher-lua state.
//
// # State
//
// State owns one LState with only the base, table, string and math
// libraries. File loading and module loading are removed. Every run is
// bounded by a context; a deadline stops a runaway loop:
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(2 * time.Second))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	if err := state.Register(lua.NewTabsModule(feature)); err != nil {
//	    return err
//	}
//	err = state.DoFile(ctx, "layout.lua")
//
// # The tabs module
//
// TabsModule exposes the tab commands as the global table "tabs":
//
//	local id = tabs.create(3)
//	tabs.add(id)
//	tabs.move(id, 2, "left")
//	tabs.activate(id, 2)
//	for _, t in ipairs(tabs.info(id).tabs) do print(t.slot, t.title, t.active) end
//
// Slots are the 0-based slotIndex values stored in the document, not Lua
// array positions. A failing command raises a Lua error carrying the Go
// error text.
//
// # Capabilities
//
// A module grants scripts a set of capabilities. "tabs" grants everything;
// its children "tabs.read", "tabs.write", "tabs.history" and "tabs.events"
// grant inspection, commands, undo/redo and subscriptions respectively:
//
//	lua.NewTabsModule(feature, lua.WithCapabilities(lua.CapabilityRead))
//
// # Threading
//
// An LState is not goroutine-safe. State serializes Go callers with a
// mutex, and tabs.on handlers run on the goroutine that issued the
// command, inside the same script.
package lua
