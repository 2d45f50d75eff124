package tree

import (
	"fmt"
	"io/fs"
)

// readonlyTree wraps a Tree and fails every mutating operation. It shares
// the wrapped tree's substrate, so content written through the original
// handle stays visible.
type readonlyTree struct {
	inner Tree
}

func (t *readonlyTree) Root() string             { return t.inner.Root() }
func (t *readonlyTree) FullPath(p string) string { return t.inner.FullPath(p) }

func (t *readonlyTree) ReadContent(p string) ([]byte, error) {
	return t.inner.ReadContent(p)
}

func (t *readonlyTree) FileMode(p string) (fs.FileMode, error) {
	return t.inner.FileMode(p)
}

func (t *readonlyTree) IterSubpaths(p string) ([]string, error) {
	return t.inner.IterSubpaths(p)
}

func (t *readonlyTree) WriteContent(p string, mode fs.FileMode, data []byte) error {
	return fmt.Errorf("%w: write %s", ErrReadOnly, p)
}

func (t *readonlyTree) Mkdir(p string, mode fs.FileMode) error {
	return fmt.Errorf("%w: mkdir %s", ErrReadOnly, p)
}

func (t *readonlyTree) Rename(oldPath, newPath string) error {
	return fmt.Errorf("%w: rename %s", ErrReadOnly, oldPath)
}

func (t *readonlyTree) Rmtree(p string) error {
	return fmt.Errorf("%w: rmtree %s", ErrReadOnly, p)
}

func (t *readonlyTree) MakeSubtree(p string) Tree {
	return &readonlyTree{inner: t.inner.MakeSubtree(p)}
}

func (t *readonlyTree) ReadonlyVersion() Tree { return t }

func (t *readonlyTree) Mkdtemp() (string, error) {
	return "", fmt.Errorf("%w: mkdtemp", ErrReadOnly)
}

func (t *readonlyTree) MakeTempTree() (Tree, error) {
	return nil, fmt.Errorf("%w: mkdtemp", ErrReadOnly)
}

func (t *readonlyTree) ApplyRenames(renames []Rename) error {
	return fmt.Errorf("%w: apply renames", ErrReadOnly)
}
