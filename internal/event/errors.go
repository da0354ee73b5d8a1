package event

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEvent means the published value carries no topic.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidTopic means a topic or pattern is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrInvalidSubscription means Unsubscribe got a nil or foreign subscription.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound means the subscription was already removed.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrHandlerPanic matches every PanicError.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrNilHandler means Subscribe got a nil handler.
	ErrNilHandler = errors.New("nil handler")
)

// HandlerError is the first error a handler returned during one Publish.
// Later handlers still ran.
type HandlerError struct {
	SubscriptionID string
	Topic          string
	Err            error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: subscriber %s: %v", e.Topic, e.SubscriptionID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// PanicError records a handler panic recovered by the bus.
type PanicError struct {
	SubscriptionID string
	Topic          string
	Value          any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: subscriber %s panicked: %v", e.Topic, e.SubscriptionID, e.Value)
}

func (e *PanicError) Is(target error) bool { return target == ErrHandlerPanic }
