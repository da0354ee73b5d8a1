package tabs

import (
	"sort"
	"sync"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Registry maps container ids to their live container nodes for one
// document session.
type Registry interface {
	// Register binds id to n. Binding the same pair twice is a no-op.
	Register(id string, n *node.Node) error

	// Resolve returns the node bound to id. A miss means the container is
	// currently unknown, not that it does not exist.
	Resolve(id string) (*node.Node, bool)

	// Lookup returns the id n is bound to.
	Lookup(n *node.Node) (string, bool)

	// Unregister removes the binding for id and retires the id.
	Unregister(id string) bool

	// Retired reports whether id was bound once and later unregistered.
	Retired(id string) bool

	// Len returns the number of bindings.
	Len() int

	// IDs returns the bound ids, sorted.
	IDs() []string

	// Clear removes every binding. Retired ids stay retired.
	Clear()
}

// MemoryRegistry is the in-memory Registry.
type MemoryRegistry struct {
	mu      sync.RWMutex
	byID    map[string]*node.Node
	byNode  map[*node.Node]string
	retired map[string]struct{}
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byID:    make(map[string]*node.Node),
		byNode:  make(map[*node.Node]string),
		retired: make(map[string]struct{}),
	}
}

// Register binds id to n.
func (r *MemoryRegistry) Register(id string, n *node.Node) error {
	if id == "" {
		return ErrInvalidID
	}
	if n == nil {
		return node.ErrNilNode
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.byID[id]; ok {
		if cur == n {
			return nil
		}
		return ErrIDInUse
	}
	if _, ok := r.byNode[n]; ok {
		return ErrNodeAlreadyRegistered
	}
	r.byID[id] = n
	r.byNode[n] = id
	delete(r.retired, id)
	return nil
}

// Resolve returns the node bound to id.
func (r *MemoryRegistry) Resolve(id string) (*node.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byID[id]
	return n, ok
}

// Lookup returns the id bound to n.
func (r *MemoryRegistry) Lookup(n *node.Node) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNode[n]
	return id, ok
}

// Unregister removes the binding for id.
func (r *MemoryRegistry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	delete(r.byNode, n)
	r.retired[id] = struct{}{}
	return true
}

// Retired reports whether id was unregistered and not bound again since.
func (r *MemoryRegistry) Retired(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.retired[id]
	return ok
}

// Len returns the number of bindings.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// IDs returns the bound ids in sorted order.
func (r *MemoryRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear removes every binding.
func (r *MemoryRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.byID {
		r.retired[id] = struct{}{}
	}
	r.byID = make(map[string]*node.Node)
	r.byNode = make(map[*node.Node]string)
}
