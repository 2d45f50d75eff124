// Package tree provides path-relative tree handles over a backend store or
// the real filesystem.
//
// A Tree exposes the same operations as a raw store but enforces filesystem
// shape: the parent of a written, created or rename-destination path must
// exist and be a directory. Filesystem-shape failures surface as the store
// package's sentinel errors regardless of the backing substrate.
package tree

import (
	"errors"
	"io/fs"
)

// ErrReadOnly indicates a mutating operation on a read-only tree handle.
var ErrReadOnly = errors.New("tree is read-only")

// Rename is a single primitive rename within a tree.
type Rename struct {
	OldPath string
	NewPath string
}

// Tree is the full capability set a transform runs against.
type Tree interface {
	// Root returns the tree's root in the coordinates of the underlying
	// substrate (an OS path for FSTree, a store key prefix for StoreTree).
	Root() string

	// FullPath returns path expressed in the underlying substrate's
	// coordinates, suitable for handing to another tree sharing that
	// substrate.
	FullPath(path string) string

	// ReadContent returns the blob at path. Fails store.ErrNoSuchFile if
	// absent, store.ErrIsDirectory if path denotes a directory.
	ReadContent(path string) ([]byte, error)

	// WriteContent creates or overwrites the blob at path with mode. Fails
	// store.ErrNoParent or store.ErrParentNotDir when the parent is
	// missing or not a directory.
	WriteContent(path string, mode fs.FileMode, data []byte) error

	// Mkdir creates a directory at path, with the same parent enforcement
	// as WriteContent.
	Mkdir(path string, mode fs.FileMode) error

	// Rename moves an entry and, for directories, everything under it.
	// Fails store.ErrNoSuchFile when the source is absent and
	// store.ErrNoParent/store.ErrParentNotDir when the destination's
	// parent is invalid.
	Rename(oldPath, newPath string) error

	// Rmtree removes path and every descendant. Removing an absent path
	// is not an error.
	Rmtree(path string) error

	// IterSubpaths returns path itself plus every descendant, as
	// tree-relative paths.
	IterSubpaths(path string) ([]string, error)

	// FileMode returns the permission bits recorded at path.
	FileMode(path string) (fs.FileMode, error)

	// MakeSubtree returns a tree of the same kind rooted at path, sharing
	// the underlying substrate.
	MakeSubtree(path string) Tree

	// ReadonlyVersion returns a handle with the same content whose
	// mutating operations fail ErrReadOnly.
	ReadonlyVersion() Tree

	// Mkdtemp creates a fresh uniquely named directory inside the tree and
	// returns its tree-relative name.
	Mkdtemp() (string, error)

	// MakeTempTree combines Mkdtemp and MakeSubtree.
	MakeTempTree() (Tree, error)

	// ApplyRenames performs renames strictly in order, stopping at the
	// first failure. Already-applied renames are not rolled back.
	ApplyRenames(renames []Rename) error
}

// applyRenames is the shared ApplyRenames implementation.
func applyRenames(t Tree, renames []Rename) error {
	for _, r := range renames {
		if err := t.Rename(r.OldPath, r.NewPath); err != nil {
			return err
		}
	}
	return nil
}
