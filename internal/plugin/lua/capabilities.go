package lua

import (
	"fmt"
	"sort"
	"strings"
)

// Capability names a group of tabs functions a script may call.
// Capabilities are hierarchical: granting a parent grants its children.
type Capability string

// Capabilities understood by the tabs module.
const (
	// CapabilityTabs grants every tabs function.
	CapabilityTabs Capability = "tabs"

	// CapabilityRead allows inspecting containers and moving the edit position.
	CapabilityRead Capability = "tabs.read"

	// CapabilityWrite allows running tab commands.
	CapabilityWrite Capability = "tabs.write"

	// CapabilityHistory allows undo and redo.
	CapabilityHistory Capability = "tabs.history"

	// CapabilityEvents allows subscribing to bus topics.
	CapabilityEvents Capability = "tabs.events"
)

var knownCapabilities = map[Capability]bool{
	CapabilityTabs:    true,
	CapabilityRead:    true,
	CapabilityWrite:   true,
	CapabilityHistory: true,
	CapabilityEvents:  true,
}

// ParseCapability validates a capability name.
func ParseCapability(s string) (Capability, error) {
	c := Capability(strings.TrimSpace(s))
	if !knownCapabilities[c] {
		return "", fmt.Errorf("unknown capability %q", s)
	}
	return c, nil
}

// IsChildOf returns true if child is a child of parent.
func IsChildOf(child, parent Capability) bool {
	return strings.HasPrefix(string(child), string(parent)+".")
}

// ImpliesCapability returns true if having granted implies having required.
func ImpliesCapability(granted, required Capability) bool {
	return granted == required || IsChildOf(required, granted)
}

// CapabilityError reports a call the script was not granted.
type CapabilityError struct {
	Capability Capability
	Operation  string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %q required for %s", e.Capability, e.Operation)
}

// Permissions is the set of capabilities granted to one module.
type Permissions struct {
	granted map[Capability]bool
}

// NewPermissions grants caps.
func NewPermissions(caps ...Capability) *Permissions {
	p := &Permissions{granted: make(map[Capability]bool, len(caps))}
	for _, c := range caps {
		p.granted[c] = true
	}
	return p
}

// Has reports whether c or one of its parents is granted.
func (p *Permissions) Has(c Capability) bool {
	for g := range p.granted {
		if ImpliesCapability(g, c) {
			return true
		}
	}
	return false
}

// Check returns a CapabilityError when c is not granted.
func (p *Permissions) Check(c Capability, op string) error {
	if p.Has(c) {
		return nil
	}
	return &CapabilityError{Capability: c, Operation: op}
}

// Capabilities returns the granted capabilities, sorted.
func (p *Permissions) Capabilities() []Capability {
	out := make([]Capability, 0, len(p.granted))
	for c := range p.granted {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
