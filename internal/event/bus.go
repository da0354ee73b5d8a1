package event

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/tabstorm/internal/event/topic"
)

// Bus is the central event bus interface.
type Bus interface {
	// Publish delivers the event to every matching subscription before returning.
	Publish(ctx context.Context, event any) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topicPattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)

	// SubscribeFunc registers a function handler for a topic pattern.
	SubscribeFunc(topicPattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(sub Subscription) error

	// Stats returns delivery counters.
	Stats() Stats
}

type bus struct {
	registry *registry
	config   busConfig
	seq      atomic.Uint64

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new synchronous event bus.
func NewBus(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &bus{
		registry: newRegistry(),
		config:   config,
	}
}

// Publish delivers an event synchronously to all matching handlers.
func (b *bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok {
		return ErrInvalidEvent
	}
	eventTopic := tp.EventTopic()
	if !eventTopic.IsValid() || eventTopic.IsPattern() {
		return ErrInvalidEvent
	}
	b.eventsPublished.Add(1)

	var firstErr error
	for _, sub := range b.registry.match(eventTopic) {
		if !sub.accepts(event) {
			continue
		}
		if sub.config.Once {
			sub.Cancel()
			b.registry.remove(sub.id)
		}

		err := b.dispatch(ctx, event, eventTopic, sub)
		if err != nil {
			b.handlerErrors.Add(1)
			b.config.logger.Warn("event handler failed",
				zap.String("topic", eventTopic.String()),
				zap.String("subscription", sub.id),
				zap.Error(err))
			if firstErr == nil {
				firstErr = &HandlerError{SubscriptionID: sub.id, Topic: eventTopic.String(), Err: err}
			}
			continue
		}
		b.eventsDelivered.Add(1)
	}
	return firstErr
}

// dispatch runs one handler with panic recovery.
func (b *bus) dispatch(ctx context.Context, event any, eventTopic topic.Topic, sub *subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			b.config.logger.Error("event handler panicked",
				zap.String("topic", eventTopic.String()),
				zap.String("subscription", sub.id),
				zap.Any("panic", r),
				zap.Stack("stack"))
			if b.config.panicHandler != nil {
				b.config.panicHandler(event, sub, r)
			}
			err = &PanicError{SubscriptionID: sub.id, Topic: eventTopic.String(), Value: r}
		}
	}()
	return sub.handler.Handle(ctx, event)
}

// Subscribe creates a new subscription for the given topic pattern.
func (b *bus) Subscribe(topicPattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !topicPattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(uuid.NewString(), b.seq.Add(1), topicPattern, handler, opts...)
	b.registry.add(sub)
	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *bus) SubscribeFunc(topicPattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(topicPattern, fn, opts...)
}

// Unsubscribe removes a subscription.
func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()
	if !b.registry.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: b.registry.countActive(),
	}
}
