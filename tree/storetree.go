package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"path"
	"strings"

	"github.com/abentley/tree-transform/store"
)

// StoreTree is a Tree over any store.Store. The store holds raw entries; the
// StoreTree adds the filesystem-shape rules the store deliberately omits.
type StoreTree struct {
	root  string
	store store.Store
}

// NewStoreTree returns a StoreTree over a fresh in-memory store.
func NewStoreTree() *StoreTree {
	return &StoreTree{store: store.NewMemoryStore()}
}

// NewStoreTreeOn returns a StoreTree over an existing store, rooted at the
// store's own root.
func NewStoreTreeOn(s store.Store) *StoreTree {
	return &StoreTree{store: s}
}

func (t *StoreTree) Root() string { return t.root }

// abspath maps a tree-relative path to a store key.
func (t *StoreTree) abspath(p string) string {
	p = path.Clean(p)
	if t.root == "" {
		return p
	}
	if p == "." {
		return t.root
	}
	return path.Join(t.root, p)
}

// relpath maps a store key back to a tree-relative path.
func (t *StoreTree) relpath(key string) string {
	if t.root == "" {
		return key
	}
	if key == t.root {
		return "."
	}
	return strings.TrimPrefix(key, t.root+"/")
}

func (t *StoreTree) FullPath(p string) string { return t.abspath(p) }

// checkParentDir enforces the tree contract for a destination path: the
// parent must exist and be a directory. The tree root always counts as a
// directory.
func (t *StoreTree) checkParentDir(p string) error {
	parent := path.Dir(path.Clean(p))
	if parent == "." {
		return nil
	}
	// The store has no kind query; reading distinguishes the three cases.
	_, err := t.store.ReadContent(t.abspath(parent))
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", store.ErrParentNotDir, p)
	case errors.Is(err, store.ErrIsDirectory):
		return nil
	case errors.Is(err, store.ErrNoSuchFile):
		return fmt.Errorf("%w: %s", store.ErrNoParent, p)
	}
	return err
}

func (t *StoreTree) ReadContent(p string) ([]byte, error) {
	return t.store.ReadContent(t.abspath(p))
}

func (t *StoreTree) FileMode(p string) (fs.FileMode, error) {
	return t.store.FileMode(t.abspath(p))
}

func (t *StoreTree) IterSubpaths(p string) ([]string, error) {
	keys, err := t.store.IterSubpaths(t.abspath(p))
	if err != nil {
		return nil, err
	}
	subs := make([]string, 0, len(keys))
	for _, key := range keys {
		subs = append(subs, t.relpath(key))
	}
	return subs, nil
}

func (t *StoreTree) WriteContent(p string, mode fs.FileMode, data []byte) error {
	if err := t.checkParentDir(p); err != nil {
		return err
	}
	return t.store.WriteContent(t.abspath(p), mode, data)
}

func (t *StoreTree) Mkdir(p string, mode fs.FileMode) error {
	if err := t.checkParentDir(p); err != nil {
		return err
	}
	return t.store.Mkdir(t.abspath(p), mode)
}

func (t *StoreTree) Rename(oldPath, newPath string) error {
	if err := t.checkParentDir(newPath); err != nil {
		return err
	}
	return t.store.Rename(t.abspath(oldPath), t.abspath(newPath))
}

func (t *StoreTree) Rmtree(p string) error {
	return t.store.Rmtree(t.abspath(p))
}

func (t *StoreTree) MakeSubtree(p string) Tree {
	return &StoreTree{root: t.abspath(p), store: t.store}
}

func (t *StoreTree) ReadonlyVersion() Tree {
	return &readonlyTree{inner: t}
}

const tempChars = "abcdefghijklmnopqrstuvwxyz"

func (t *StoreTree) Mkdtemp() (string, error) {
	for {
		b := make([]byte, 8)
		for i := range b {
			b[i] = tempChars[rand.Intn(len(tempChars))]
		}
		name := "transform-" + string(b)
		if _, err := t.store.FileMode(t.abspath(name)); err == nil {
			continue
		}
		if err := t.Mkdir(name, 0o700); err != nil {
			return "", err
		}
		return name, nil
	}
}

func (t *StoreTree) MakeTempTree() (Tree, error) {
	name, err := t.Mkdtemp()
	if err != nil {
		return nil, err
	}
	return t.MakeSubtree(name), nil
}

func (t *StoreTree) ApplyRenames(renames []Rename) error {
	return applyRenames(t, renames)
}
