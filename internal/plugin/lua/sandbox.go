package lua

import (
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed from every state. They load code from disk or
// strings, or reach modules outside the sandbox.
var blockedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
}

// Sandbox restricts a Lua state to safe operations.
type Sandbox struct {
	L   *lua.LState
	out io.Writer
}

// NewSandbox creates a sandbox for L. Output of print goes to out, or is
// discarded when out is nil.
func NewSandbox(L *lua.LState, out io.Writer) *Sandbox {
	if out == nil {
		out = io.Discard
	}
	return &Sandbox{L: L, out: out}
}

// Install opens the safe libraries and removes the blocked globals.
func (s *Sandbox) Install() {
	openSafeLibraries(s.L)
	for _, name := range blockedGlobals {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installPrint()
}

// Blocked returns the names removed from the global table.
func (s *Sandbox) Blocked() []string {
	return append([]string(nil), blockedGlobals...)
}

// openSafeLibraries opens only the libraries without host access.
// io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installPrint routes print to the sandbox writer, tab separated like the
// stock print.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}
