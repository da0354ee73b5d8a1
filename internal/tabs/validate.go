package tabs

import (
	"fmt"
	"sort"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Rule names an invariant a container can violate.
type Rule string

// Rules checked by Validate and ValidateRegistry.
const (
	RuleStructure     Rule = "structure"
	RuleEmpty         Rule = "empty"
	RuleSlot          Rule = "slot"
	RulePairing       Rule = "pairing"
	RuleSingleActive  Rule = "single-active"
	RuleIDPropagation Rule = "id-propagation"
	RuleDuplicateID   Rule = "duplicate-id"
	RuleRegistry      Rule = "registry"
)

// Violation is one broken invariant.
type Violation struct {
	ContainerID string
	Path        []int
	Rule        Rule
	Detail      string
}

// String formats the violation for diagnostics.
func (v Violation) String() string {
	return fmt.Sprintf("%s %q at %v: %s", v.Rule, v.ContainerID, v.Path, v.Detail)
}

// Validate checks the structural invariants of every container under root.
func Validate(root *node.Node) []Violation {
	var out []Violation
	seen := make(map[string]bool)
	for _, c := range findContainers(root) {
		id := ContainerID(c)
		add := func(rule Rule, format string, args ...any) {
			out = append(out, Violation{ContainerID: id, Path: c.Path(), Rule: rule, Detail: fmt.Sprintf(format, args...)})
		}

		switch {
		case id == "":
			add(RuleDuplicateID, "container has no id")
		case seen[id]:
			add(RuleDuplicateID, "id used by an earlier container")
		}
		seen[id] = true

		parts, err := ResolveParts(c)
		if err != nil {
			add(RuleStructure, "missing header list or content list")
			continue
		}
		if parts.AppendControl == nil {
			add(RuleStructure, "header list has no append control")
		}
		if parts.TabCount() == 0 {
			add(RuleEmpty, "container has no tabs")
			continue
		}

		headerSlots, hOK := slotSet(parts.Headers)
		panelSlots, pOK := slotSet(parts.Panels)
		if !hOK || !pOK {
			add(RuleSlot, "tab without a valid slot index or slot used twice")
		}
		for _, s := range sortedKeys(headerSlots) {
			if !panelSlots[s] {
				add(RulePairing, "header slot %d has no panel", s)
			}
		}
		for _, s := range sortedKeys(panelSlots) {
			if !headerSlots[s] {
				add(RulePairing, "panel slot %d has no header", s)
			}
		}

		activeHeaders := activeSlots(parts.Headers)
		activePanels := activeSlots(parts.Panels)
		switch {
		case len(activeHeaders) != 1 || len(activePanels) != 1:
			add(RuleSingleActive, "%d active headers, %d active panels", len(activeHeaders), len(activePanels))
		case activeHeaders[0] != activePanels[0]:
			add(RuleSingleActive, "active header slot %d, active panel slot %d", activeHeaders[0], activePanels[0])
		}

		c.Walk(func(n *node.Node) node.WalkAction {
			if n != c && n.Is(KindContainer) {
				return node.WalkSkip
			}
			if stampsID(n.Kind()) && ContainerID(n) != id {
				add(RuleIDPropagation, "%s carries %q", n.Kind(), ContainerID(n))
			}
			return node.WalkContinue
		})
	}
	return out
}

// ValidateRegistry checks that reg holds exactly one entry per container
// under root and nothing else.
func ValidateRegistry(root *node.Node, reg Registry) []Violation {
	var out []Violation
	live := make(map[*node.Node]bool)
	for _, c := range findContainers(root) {
		live[c] = true
		id := ContainerID(c)
		if n, ok := reg.Resolve(id); !ok || n != c {
			out = append(out, Violation{ContainerID: id, Path: c.Path(), Rule: RuleRegistry, Detail: "container not registered"})
		}
	}
	for _, id := range reg.IDs() {
		n, _ := reg.Resolve(id)
		if !live[n] {
			out = append(out, Violation{ContainerID: id, Rule: RuleRegistry, Detail: "entry for a container not in the document"})
		} else if ContainerID(n) != id {
			out = append(out, Violation{ContainerID: id, Path: n.Path(), Rule: RuleRegistry, Detail: "entry id differs from container id"})
		}
	}
	return out
}

func slotSet(nodes []*node.Node) (map[int]bool, bool) {
	set := make(map[int]bool, len(nodes))
	ok := true
	for _, n := range nodes {
		s, valid := SlotIndex(n)
		if !valid || set[s] {
			ok = false
			continue
		}
		set[s] = true
	}
	return set, ok
}

func activeSlots(nodes []*node.Node) []int {
	var out []int
	for _, n := range nodes {
		if IsActive(n) {
			s, _ := SlotIndex(n)
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
