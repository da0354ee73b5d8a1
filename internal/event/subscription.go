package event

import (
	"sync/atomic"

	"github.com/dshills/tabstorm/internal/event/topic"
)

// Subscription is the handle returned by Subscribe. Cancel stops delivery;
// Unsubscribe also removes it from the bus.
type Subscription interface {
	ID() string
	Topic() topic.Topic
	IsActive() bool
	Cancel()
}

// SubscriptionConfig holds the per-subscription options.
type SubscriptionConfig struct {
	Priority Priority
	Filter   FilterFunc
	// Once cancels the subscription after its first delivery.
	Once bool
}

// DefaultSubscriptionConfig subscribes at PriorityNormal with no filter.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{Priority: PriorityNormal}
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Priority = p }
}

func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Filter = f }
}

func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Once = true }
}

type subscription struct {
	id      string
	seq     uint64 // tie-break for equal priorities
	topic   topic.Topic
	handler Handler
	config  SubscriptionConfig
	active  atomic.Bool
}

func newSubscription(id string, seq uint64, t topic.Topic, h Handler, opts ...SubscriptionOption) *subscription {
	s := &subscription{id: id, seq: seq, topic: t, handler: h, config: DefaultSubscriptionConfig()}
	for _, opt := range opts {
		opt(&s.config)
	}
	s.active.Store(true)
	return s
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.topic }
func (s *subscription) IsActive() bool     { return s.active.Load() }
func (s *subscription) Cancel()            { s.active.Store(false) }

func (s *subscription) accepts(event any) bool {
	return s.IsActive() && (s.config.Filter == nil || s.config.Filter(event))
}
