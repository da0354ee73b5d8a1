package event

import "context"

// Priority orders handlers of one topic; lower runs first and equal
// priorities run in subscription order.
type Priority int

// Priorities used by tabstorm. Reconciliation subscribes at
// PriorityCritical so later handlers observe a repaired tree.
const (
	PriorityCritical Priority = 0
	PriorityHigh     Priority = 100
	PriorityNormal   Priority = 200
	PriorityLow      Priority = 300
)

func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler receives published values. The value is usually an Event[T];
// use PayloadOf or AsHandlerFunc to get at the payload.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// TypedHandlerFunc handles events of one payload type.
type TypedHandlerFunc[T any] func(ctx context.Context, event Event[T]) error

// AsHandlerFunc wraps fn so that events with other payload types are
// ignored.
func AsHandlerFunc[T any](fn TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, event any) error {
		e, ok := event.(Event[T])
		if !ok {
			return nil
		}
		return fn(ctx, e)
	})
}

// FilterFunc drops events it returns false for.
type FilterFunc func(event any) bool

// Stats is a snapshot of bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// PanicHandler observes recovered handler panics.
type PanicHandler func(event any, sub Subscription, recovered any)
