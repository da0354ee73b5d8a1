package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/tabstorm/internal/event/topic"
)

// Event is a published value: a topic, a typed payload and metadata.
// Publish takes any value implementing TopicProvider; Event[T] is the one
// tabstorm uses everywhere.
type Event[T any] struct {
	Type     topic.Topic
	Payload  T
	Metadata Metadata
}

// Metadata identifies one publication.
type Metadata struct {
	ID        string
	Timestamp time.Time
	// Source names the publishing component, e.g. "doc" or "tabs".
	Source string
}

// NewEvent stamps payload with a fresh uuid and the current time.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

func (e Event[T]) EventTopic() topic.Topic { return e.Type }

// TopicProvider is what Publish routes on.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// PayloadOf returns the payload of ev when it is an Event[T].
func PayloadOf[T any](ev any) (T, bool) {
	if e, ok := ev.(Event[T]); ok {
		return e.Payload, true
	}
	var zero T
	return zero, false
}
