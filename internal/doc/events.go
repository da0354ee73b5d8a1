package doc

import (
	"github.com/dshills/tabstorm/internal/doc/history"
	"github.com/dshills/tabstorm/internal/event/topic"
)

// Topics published by a document.
const (
	TopicChanged topic.Topic = "doc.changed"
	TopicLoaded  topic.Topic = "doc.loaded"
	TopicClosed  topic.Topic = "doc.closed"
)

// EventSource is the metadata source of document events.
const EventSource = "doc"

// Change describes one completed transaction.
type Change struct {
	// Name is the transaction name.
	Name string
	// Origin says what produced the change.
	Origin history.Origin
	// OpCount is the number of tree operations applied.
	OpCount int
	// Revision is the document revision after the change.
	Revision uint64
	// Depth is the fixup nesting depth; zero for top-level changes.
	Depth int
}

// Loaded is published after Load replaces the tree.
type Loaded struct {
	Revision uint64
	Nodes    int
}

// Closed is published when the document closes.
type Closed struct {
	Revision uint64
}
