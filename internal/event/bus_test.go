package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type change struct {
	Revision int
}

func TestPublishDeliversInPriorityOrder(t *testing.T) {
	b := NewBus()
	var order []string

	record := func(name string) HandlerFunc {
		return func(ctx context.Context, ev any) error {
			order = append(order, name)
			return nil
		}
	}

	_, err := b.SubscribeFunc("doc.changed", record("normal-1"))
	require.NoError(t, err)
	_, err = b.SubscribeFunc("doc.*", record("critical"), WithPriority(PriorityCritical))
	require.NoError(t, err)
	_, err = b.SubscribeFunc("**", record("low"), WithPriority(PriorityLow))
	require.NoError(t, err)
	_, err = b.SubscribeFunc("doc.changed", record("normal-2"))
	require.NoError(t, err)
	_, err = b.SubscribeFunc("doc.loaded", record("other"))
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), NewEvent("doc.changed", change{Revision: 1}, "test")))
	assert.Equal(t, []string{"critical", "normal-1", "normal-2", "low"}, order)

	stats := b.Stats()
	assert.Equal(t, uint64(1), stats.EventsPublished)
	assert.Equal(t, uint64(4), stats.EventsDelivered)
	assert.Equal(t, 5, stats.ActiveSubscribers)
}

func TestPublishRejectsEventsWithoutTopic(t *testing.T) {
	b := NewBus()
	assert.ErrorIs(t, b.Publish(context.Background(), "not an event"), ErrInvalidEvent)
	assert.ErrorIs(t, b.Publish(context.Background(), NewEvent("", 1, "test")), ErrInvalidEvent)
	assert.ErrorIs(t, b.Publish(context.Background(), NewEvent[int]("tabs.*", 1, "test")), ErrInvalidEvent)
}

func TestHandlerErrorsAndPanicsAreIsolated(t *testing.T) {
	var panicked any
	b := NewBus(
		WithLogger(zap.NewNop()),
		WithBusPanicHandler(func(ev any, sub Subscription, recovered any) { panicked = recovered }),
	)
	boom := errors.New("boom")
	reached := false

	_, _ = b.SubscribeFunc("doc.changed", func(ctx context.Context, ev any) error {
		panic("bad handler")
	}, WithPriority(PriorityCritical))
	_, _ = b.SubscribeFunc("doc.changed", func(ctx context.Context, ev any) error {
		return boom
	}, WithPriority(PriorityHigh))
	_, _ = b.SubscribeFunc("doc.changed", func(ctx context.Context, ev any) error {
		reached = true
		return nil
	})

	err := b.Publish(context.Background(), NewEvent("doc.changed", change{}, "test"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandlerPanic, "first failure is the panic")

	var herr *HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "doc.changed", herr.Topic)

	assert.True(t, reached, "later handlers still run")
	assert.Equal(t, "bad handler", panicked)
	assert.Equal(t, uint64(1), b.Stats().HandlerPanics)
	assert.Equal(t, uint64(2), b.Stats().HandlerErrors)
}

func TestOnceAndFilterAndUnsubscribe(t *testing.T) {
	b := NewBus()
	onceCalls, filteredCalls, plainCalls := 0, 0, 0

	_, _ = b.SubscribeFunc("doc.changed", func(ctx context.Context, ev any) error {
		onceCalls++
		return nil
	}, WithOnce())
	_, _ = b.SubscribeFunc("doc.changed", func(ctx context.Context, ev any) error {
		filteredCalls++
		return nil
	}, WithFilter(func(ev any) bool {
		c, ok := PayloadOf[change](ev)
		return ok && c.Revision%2 == 0
	}))
	plain, _ := b.SubscribeFunc("doc.changed", func(ctx context.Context, ev any) error {
		plainCalls++
		return nil
	})

	ctx := context.Background()
	for rev := 1; rev <= 4; rev++ {
		require.NoError(t, b.Publish(ctx, NewEvent("doc.changed", change{Revision: rev}, "test")))
	}
	assert.Equal(t, 1, onceCalls)
	assert.Equal(t, 2, filteredCalls)
	assert.Equal(t, 4, plainCalls)

	require.NoError(t, b.Unsubscribe(plain))
	assert.False(t, plain.IsActive())
	assert.ErrorIs(t, b.Unsubscribe(plain), ErrSubscriptionNotFound)
	assert.ErrorIs(t, b.Unsubscribe(nil), ErrInvalidSubscription)

	require.NoError(t, b.Publish(ctx, NewEvent("doc.changed", change{Revision: 5}, "test")))
	assert.Equal(t, 4, plainCalls)
}

func TestSubscribeValidation(t *testing.T) {
	b := NewBus()
	_, err := b.Subscribe("doc.changed", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	_, err = b.SubscribeFunc("", func(ctx context.Context, ev any) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestTypedHandler(t *testing.T) {
	b := NewBus()
	var got []int
	_, err := b.Subscribe("doc.changed", AsHandlerFunc(func(ctx context.Context, ev Event[change]) error {
		got = append(got, ev.Payload.Revision)
		return nil
	}))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, NewEvent("doc.changed", change{Revision: 7}, "test")))
	require.NoError(t, b.Publish(ctx, NewEvent("doc.changed", "wrong payload", "test")))
	assert.Equal(t, []int{7}, got)

	ev := NewEvent("doc.changed", change{}, "src")
	assert.NotEmpty(t, ev.Metadata.ID)
	assert.Equal(t, "src", ev.Metadata.Source)
	assert.False(t, ev.Metadata.Timestamp.IsZero())
}
