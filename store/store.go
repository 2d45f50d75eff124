// Package store provides path-keyed content stores used as tree backends.
//
// A store is a flat key/value space keyed by slash-separated paths. Unlike
// the tree layer built on top of it, a store does not enforce filesystem
// shape: writes and renames succeed even when the destination's parent does
// not exist or is a regular file. That permissiveness is what makes stores
// usable for staging areas that deliberately bypass the filesystem rules.
package store

import (
	"io/fs"
	"strings"
)

// Reader is the read-only capability set of a store.
type Reader interface {
	// ReadContent returns the blob stored at path. It fails with
	// ErrNoSuchFile if nothing is stored there and ErrIsDirectory if the
	// path holds a directory marker.
	ReadContent(path string) ([]byte, error)

	// FileMode returns the permission bits recorded for path, whether it
	// holds a blob or a directory marker.
	FileMode(path string) (fs.FileMode, error)

	// IterSubpaths returns path itself plus every descendant stored under
	// it. The result is empty when path is absent. Lexical near-misses
	// ("dir" vs "dir1") are never treated as descendants.
	IterSubpaths(path string) ([]string, error)
}

// Store is the full capability set: Reader plus mutation.
type Store interface {
	Reader

	// WriteContent creates or overwrites the blob at path with the given
	// permission bits. Parent existence is not checked.
	WriteContent(path string, mode fs.FileMode, data []byte) error

	// Mkdir records a directory marker at path. Parent existence is not
	// checked; that enforcement belongs to the tree layer.
	Mkdir(path string, mode fs.FileMode) error

	// Rename moves the entry at oldPath, and every descendant stored under
	// it, to newPath. It fails with ErrNoSuchFile when oldPath is absent.
	Rename(oldPath, newPath string) error

	// Rmtree removes path and every descendant. Removing an absent path is
	// not an error.
	Rmtree(path string) error
}

// isSubpath reports whether sub equals base or sits beneath it on a
// path-segment boundary. A raw prefix test would mis-match siblings that
// share a literal prefix.
func isSubpath(base, sub string) bool {
	if base == "." {
		// The root covers every relative key.
		return sub != ""
	}
	if sub == base {
		return true
	}
	return strings.HasPrefix(sub, base+"/")
}

// rebase rewrites a path from one prefix to another, assuming
// isSubpath(oldBase, path).
func rebase(path, oldBase, newBase string) string {
	if path == oldBase {
		return newBase
	}
	return newBase + path[len(oldBase):]
}
