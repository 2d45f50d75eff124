package transform

import "errors"

var (
	// ErrNotActive indicates an operation on a transform scope that has
	// already exited.
	ErrNotActive = errors.New("transform is not active")

	// ErrInvalidID indicates a malformed identifier.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrOutsideTree indicates a path that normalizes outside the tree
	// root.
	ErrOutsideTree = errors.New("path outside tree")

	// ErrNotFound indicates a missing name, parent or placement record.
	ErrNotFound = errors.New("not found")

	// ErrCycle indicates a placement graph whose parent chain never
	// reaches the root, so no final path exists.
	ErrCycle = errors.New("placement cycle")
)
