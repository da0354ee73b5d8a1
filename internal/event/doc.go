// Package event provides the synchronous event bus used to announce
// document and feature changes.
//
// The document publishes one event per completed transaction; feature code
// subscribes to repair invariants or to observe command results. Delivery is
// synchronous in the publisher's goroutine because document mutation is
// single-threaded: a handler that edits the document runs before Publish
// returns, so observers never see an interleaved state.
//
// # Topics
//
// Events carry hierarchical topics (see package topic). Subscriptions may use
// wildcard patterns:
//
//	bus.SubscribeFunc("doc.changed", handler)
//	bus.SubscribeFunc("tabs.**", logger)
//
// # Ordering
//
// Handlers run in priority order (lower values first); subscriptions with the
// same priority run in subscription order.
//
// # Failure isolation
//
// A handler error does not stop delivery to the remaining handlers; the first
// error is returned from Publish wrapped in a HandlerError. Handler panics are
// recovered, counted and logged, and never escape Publish.
//
// # Usage
//
//	bus := event.NewBus(event.WithLogger(logger))
//	sub, _ := bus.SubscribeFunc("doc.changed", func(ctx context.Context, ev any) error {
//	    change := ev.(event.Event[doc.Change]).Payload
//	    ...
//	}, event.WithPriority(event.PriorityCritical))
//
//	_ = bus.Publish(ctx, event.NewEvent("doc.changed", change, "doc"))
//	_ = bus.Unsubscribe(sub)
package event
