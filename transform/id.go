// Package transform applies a batch of structural tree changes, described by
// stable identifiers rather than paths, in one safely ordered pass.
//
// A caller opens a scope with Transform.Run, records desired placements and
// staged content on the Pending scope object, and on successful return the
// resulting rename plan is applied to the tree. Any failure discards all
// staged state and leaves the tree untouched.
package transform

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// idKind discriminates the two identifier variants.
type idKind uint8

const (
	idExisting idKind = iota
	idNew
)

// FileID is a stable, path-independent handle for a tree entry.
//
// An Existing id is derived deterministically from a normalized tree path; a
// New id is minted inside an active transform from a monotonic counter plus a
// cosmetic suggested name. The zero FileID is not valid.
type FileID struct {
	kind idKind
	path string
	seq  int
	name string
}

// RootID identifies the tree root. It has neither parent nor name.
var RootID = FileID{kind: idExisting, path: "."}

// IsRoot reports whether id denotes the tree root.
func (id FileID) IsRoot() bool {
	return id.kind == idExisting && id.path == "."
}

// String renders the external textual encoding: "e-<path>" for Existing ids,
// "n-<counter>-<name>" for New ids.
func (id FileID) String() string {
	if id.kind == idExisting {
		return "e-" + id.path
	}
	return fmt.Sprintf("n-%d-%s", id.seq, id.name)
}

// ExistingFileID derives the identifier of the entry at a tree-relative
// path. It is a pure function: the same path always yields the same id, and
// no transform state is consulted or changed. Paths that normalize outside
// the tree root fail with ErrOutsideTree.
func ExistingFileID(p string) (FileID, error) {
	norm, err := normalize(p)
	if err != nil {
		return FileID{}, err
	}
	return FileID{kind: idExisting, path: norm}, nil
}

// ParseFileID decodes the textual encoding produced by String. Any other
// prefix fails with ErrInvalidID.
func ParseFileID(s string) (FileID, error) {
	switch {
	case strings.HasPrefix(s, "e-"):
		return ExistingFileID(s[2:])
	case strings.HasPrefix(s, "n-"):
		rest := s[2:]
		sep := strings.Index(rest, "-")
		if sep > 0 {
			if seq, err := strconv.Atoi(rest[:sep]); err == nil {
				return FileID{kind: idNew, seq: seq, name: rest[sep+1:]}, nil
			}
		}
	}
	return FileID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
}

// existingPath recovers the original path encoded in an Existing id.
func (id FileID) existingPath() (string, error) {
	if id.kind != idExisting {
		return "", fmt.Errorf("%w: %s has no tree path", ErrInvalidID, id)
	}
	return id.path, nil
}

// normalize canonicalizes a tree-relative path. Absolute paths and paths
// whose normal form climbs past the root are outside the tree.
func normalize(p string) (string, error) {
	if path.IsAbs(p) {
		return "", fmt.Errorf("%w: %s", ErrOutsideTree, p)
	}
	norm := path.Clean(p)
	if norm == ".." || strings.HasPrefix(norm, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideTree, p)
	}
	return norm, nil
}
