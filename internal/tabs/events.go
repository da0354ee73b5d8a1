package tabs

import "github.com/dshills/tabstorm/internal/event/topic"

// Topics published by the tabs feature.
const (
	TopicContainerCreated    topic.Topic = "tabs.container.created"
	TopicContainerRemoved    topic.Topic = "tabs.container.removed"
	TopicTabAdded            topic.Topic = "tabs.tab.added"
	TopicTabDeleted          topic.Topic = "tabs.tab.deleted"
	TopicTabMoved            topic.Topic = "tabs.tab.moved"
	TopicTabActivated        topic.Topic = "tabs.tab.activated"
	TopicRegistryRepopulated topic.Topic = "tabs.registry.repopulated"
)

// EventSource is the metadata source of tabs events.
const EventSource = "tabs"

// ContainerEvent reports a container created or removed as a whole.
type ContainerEvent struct {
	ContainerID string
	TabCount    int
}

// TabEvent reports a change to one tab.
type TabEvent struct {
	ContainerID string
	SlotIndex   int
	// ActiveSlot is the active slot after the command.
	ActiveSlot int
	// Direction is set for moves.
	Direction Direction
}

// RepopulatedEvent lists containers the reconciler registered.
type RepopulatedEvent struct {
	IDs []string
}
