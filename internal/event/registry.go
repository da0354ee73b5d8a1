package event

import (
	"slices"
	"sync"

	"github.com/dshills/tabstorm/internal/event/topic"
)

// registry keeps subscriptions in delivery order: ascending priority, then
// subscription order.
type registry struct {
	mu      sync.RWMutex
	ordered []*subscription
}

func newRegistry() *registry {
	return &registry{}
}

func deliveryOrder(a, b *subscription) int {
	if a.config.Priority != b.config.Priority {
		return int(a.config.Priority) - int(b.config.Priority)
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}

func (r *registry) add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, _ := slices.BinarySearchFunc(r.ordered, sub, deliveryOrder)
	r.ordered = slices.Insert(r.ordered, i, sub)
}

// remove drops the subscription with id and reports whether it was present.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.ordered, func(s *subscription) bool { return s.id == id })
	if i < 0 {
		return false
	}
	r.ordered = slices.Delete(r.ordered, i, i+1)
	return true
}

// match snapshots the active subscriptions selected by name. Handlers run
// against the snapshot, so they may subscribe or unsubscribe freely.
func (r *registry) match(name topic.Topic) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*subscription
	for _, s := range r.ordered {
		if s.IsActive() && name.Matches(s.topic) {
			out = append(out, s)
		}
	}
	return out
}

func (r *registry) countActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.ordered {
		if s.IsActive() {
			n++
		}
	}
	return n
}
