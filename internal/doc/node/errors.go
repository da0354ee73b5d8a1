package node

import "errors"

// Errors returned by tree operations.
var (
	// ErrIndexOutOfRange indicates a child index outside the child list.
	ErrIndexOutOfRange = errors.New("child index out of range")

	// ErrNotAChild indicates the node is not a child of the given parent.
	ErrNotAChild = errors.New("node is not a child of parent")

	// ErrHasParent indicates an insert of a node that is still attached elsewhere.
	ErrHasParent = errors.New("node already has a parent")

	// ErrCycle indicates an insert that would make a node its own ancestor.
	ErrCycle = errors.New("insert would create a cycle")

	// ErrNilNode indicates a nil node was passed.
	ErrNilNode = errors.New("nil node")

	// ErrPathNotFound indicates a child index path that does not resolve.
	ErrPathNotFound = errors.New("path does not resolve")
)
