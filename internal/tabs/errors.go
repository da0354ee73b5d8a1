package tabs

import "errors"

// Errors returned by tab commands and the registry.
var (
	// ErrDisabled indicates the edit position does not permit a container,
	// or the document rejects writes.
	ErrDisabled = errors.New("tabs command disabled at the current position")

	// ErrContainerNotFound indicates an id that resolves to no live container.
	ErrContainerNotFound = errors.New("tab container not found")

	// ErrMalformedContainer indicates a container missing its header or content list.
	ErrMalformedContainer = errors.New("malformed tab container")

	// ErrSlotNotFound indicates no header/panel pair has the requested slot index.
	ErrSlotNotFound = errors.New("no tab at slot")

	// ErrMoveOutOfBounds indicates a move past either end of the tab row.
	ErrMoveOutOfBounds = errors.New("tab move out of bounds")

	// ErrInvalidTabCount indicates a create request outside 1..MaxTabs.
	ErrInvalidTabCount = errors.New("invalid tab count")

	// ErrTabLimit indicates an add to a container already holding MaxTabs tabs.
	ErrTabLimit = errors.New("tab limit reached")

	// ErrInvalidDirection indicates a move direction other than Left or Right.
	ErrInvalidDirection = errors.New("invalid move direction")

	// ErrNodeAlreadyRegistered indicates a node already bound to another id.
	ErrNodeAlreadyRegistered = errors.New("node already registered under another id")

	// ErrIDInUse indicates an id already bound to another node.
	ErrIDInUse = errors.New("container id already in use")

	// ErrInvalidID indicates an empty container id.
	ErrInvalidID = errors.New("invalid container id")

	// ErrIDExhausted indicates the id generator kept producing ids in use.
	ErrIDExhausted = errors.New("could not mint an unused container id")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("tabs feature already started")

	// ErrInvalidSettings indicates unusable tab settings.
	ErrInvalidSettings = errors.New("invalid tab settings")
)
