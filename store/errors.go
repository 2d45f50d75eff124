package store

import "errors"

var (
	// ErrNoSuchFile indicates no entry exists at the requested path.
	ErrNoSuchFile = errors.New("no such file")

	// ErrIsDirectory indicates a directory was treated like a regular file.
	ErrIsDirectory = errors.New("is a directory")

	// ErrNoParent indicates the parent of the requested path does not exist.
	ErrNoParent = errors.New("parent does not exist")

	// ErrParentNotDir indicates the parent of the requested path exists but
	// is not a directory.
	ErrParentNotDir = errors.New("parent is not a directory")
)
