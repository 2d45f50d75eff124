package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/abentley/tree-transform/store"
)

// FSTree is a Tree over a real filesystem directory. The OS enforces the
// filesystem-shape rules itself; FSTree maps the resulting errno values onto
// the store package's sentinel errors so callers can branch uniformly.
type FSTree struct {
	root string
}

// NewFSTree returns a tree rooted at the given directory.
func NewFSTree(root string) *FSTree {
	return &FSTree{root: root}
}

func (t *FSTree) Root() string { return t.root }

func (t *FSTree) abspath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(t.root, p)
}

func (t *FSTree) FullPath(p string) string { return t.abspath(p) }

func (t *FSTree) ReadContent(p string) ([]byte, error) {
	data, err := os.ReadFile(t.abspath(p))
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", store.ErrNoSuchFile, p)
	case errors.Is(err, syscall.EISDIR):
		return nil, fmt.Errorf("%w: %s", store.ErrIsDirectory, p)
	}
	return nil, err
}

func (t *FSTree) FileMode(p string) (fs.FileMode, error) {
	info, err := os.Lstat(t.abspath(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", store.ErrNoSuchFile, p)
		}
		return 0, err
	}
	return info.Mode().Perm(), nil
}

func (t *FSTree) IterSubpaths(p string) ([]string, error) {
	abs := t.abspath(p)
	if _, err := os.Lstat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var subs []string
	err := filepath.WalkDir(abs, func(walked string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(t.root, walked)
		if err != nil {
			return err
		}
		// The tree root is not a subpath of itself.
		if rel != "." {
			subs = append(subs, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// mapParentErr converts errno values from a failed create or rename into the
// parent-shape sentinels.
func mapParentErr(err error, p string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", store.ErrNoParent, p)
	case errors.Is(err, syscall.ENOTDIR):
		return fmt.Errorf("%w: %s", store.ErrParentNotDir, p)
	}
	return err
}

func (t *FSTree) WriteContent(p string, mode fs.FileMode, data []byte) error {
	abs := t.abspath(p)
	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		if errors.Is(err, syscall.EISDIR) {
			return fmt.Errorf("%w: %s", store.ErrIsDirectory, p)
		}
		return mapParentErr(err, p)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return cerr
	}
	// OpenFile's mode is filtered through the umask and ignored for
	// pre-existing files; chmod makes the recorded mode authoritative.
	return os.Chmod(abs, mode)
}

func (t *FSTree) Mkdir(p string, mode fs.FileMode) error {
	abs := t.abspath(p)
	if err := os.Mkdir(abs, mode); err != nil {
		return mapParentErr(err, p)
	}
	return os.Chmod(abs, mode)
}

func (t *FSTree) Rename(oldPath, newPath string) error {
	absOld := t.abspath(oldPath)
	if _, err := os.Lstat(absOld); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", store.ErrNoSuchFile, oldPath)
		}
		return err
	}
	if err := os.Rename(absOld, t.abspath(newPath)); err != nil {
		return mapParentErr(err, newPath)
	}
	return nil
}

func (t *FSTree) Rmtree(p string) error {
	return os.RemoveAll(t.abspath(p))
}

func (t *FSTree) MakeSubtree(p string) Tree {
	return &FSTree{root: t.abspath(p)}
}

func (t *FSTree) ReadonlyVersion() Tree {
	return &readonlyTree{inner: t}
}

func (t *FSTree) Mkdtemp() (string, error) {
	dir, err := os.MkdirTemp(t.root, "transform-")
	if err != nil {
		return "", err
	}
	return filepath.Base(dir), nil
}

func (t *FSTree) MakeTempTree() (Tree, error) {
	name, err := t.Mkdtemp()
	if err != nil {
		return nil, err
	}
	return t.MakeSubtree(name), nil
}

func (t *FSTree) ApplyRenames(renames []Rename) error {
	return applyRenames(t, renames)
}
