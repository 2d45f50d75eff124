package tree

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abentley/tree-transform/store"
)

// variants are the Tree implementations that must share behavior: the real
// filesystem, a plain in-memory store, and an overlay over a read-only base.
func variants() []struct {
	name string
	make func(t *testing.T) Tree
} {
	return []struct {
		name string
		make func(t *testing.T) Tree
	}{
		{"fs", func(t *testing.T) Tree { return NewFSTree(t.TempDir()) }},
		{"store", func(t *testing.T) Tree { return NewStoreTree() }},
		{"overlay", func(t *testing.T) Tree {
			base := store.NewMemoryStore()
			return NewStoreTreeOn(store.NewOverlayStore(base.ReadonlyVersion()))
		}},
	}
}

func TestTreeRoundTrip(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.WriteContent("foo", 0o600, []byte("asdf")))

			data, err := tr.ReadContent("foo")
			require.NoError(t, err)
			assert.Equal(t, []byte("asdf"), data)

			mode, err := tr.FileMode("foo")
			require.NoError(t, err)
			assert.Equal(t, fs.FileMode(0o600), mode)
		})
	}
}

func TestTreeModes(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.Mkdir("foo", 0o745))
			require.NoError(t, tr.WriteContent("bar", 0o654, []byte("baz")))

			mode, err := tr.FileMode("foo")
			require.NoError(t, err)
			assert.Equal(t, fs.FileMode(0o745), mode)
			mode, err = tr.FileMode("bar")
			require.NoError(t, err)
			assert.Equal(t, fs.FileMode(0o654), mode)
		})
	}
}

func TestTreeReadErrors(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)

			_, err := tr.ReadContent("foo")
			assert.ErrorIs(t, err, store.ErrNoSuchFile)

			require.NoError(t, tr.Mkdir("foo", 0o700))
			_, err = tr.ReadContent("foo")
			assert.ErrorIs(t, err, store.ErrIsDirectory)
		})
	}
}

// Trees enforce the filesystem shape the raw stores omit.
func TestTreeWriteParentEnforcement(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)

			err := tr.WriteContent("non-existent/foo", 0o600, []byte("asdf"))
			assert.ErrorIs(t, err, store.ErrNoParent)

			require.NoError(t, tr.WriteContent("file", 0o600, []byte("asdf")))
			err = tr.WriteContent("file/foo", 0o600, []byte("asdf"))
			assert.ErrorIs(t, err, store.ErrParentNotDir)
		})
	}
}

func TestTreeMkdirParentEnforcement(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)

			err := tr.Mkdir("missing/dir", 0o700)
			assert.ErrorIs(t, err, store.ErrNoParent)

			require.NoError(t, tr.WriteContent("file", 0o600, []byte("x")))
			err = tr.Mkdir("file/dir", 0o700)
			assert.ErrorIs(t, err, store.ErrParentNotDir)

			require.NoError(t, tr.Mkdir("dir1", 0o700))
			require.NoError(t, tr.Mkdir("dir1/dir2", 0o700))
		})
	}
}

func TestTreeRenameShift(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.WriteContent("foo", 0o600, []byte("asdf")))

			require.NoError(t, tr.Rename("foo", "bar"))

			data, err := tr.ReadContent("bar")
			require.NoError(t, err)
			assert.Equal(t, []byte("asdf"), data)
			_, err = tr.ReadContent("foo")
			assert.ErrorIs(t, err, store.ErrNoSuchFile)
		})
	}
}

func TestTreeRenameIntoDir(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.WriteContent("foo", 0o600, []byte("asdf")))
			require.NoError(t, tr.Mkdir("bar", 0o700))

			require.NoError(t, tr.Rename("foo", "bar/foo"))

			data, err := tr.ReadContent("bar/foo")
			require.NoError(t, err)
			assert.Equal(t, []byte("asdf"), data)
		})
	}
}

func TestTreeRenameErrors(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.WriteContent("foo", 0o600, []byte("asdf")))
			require.NoError(t, tr.WriteContent("bar", 0o600, []byte("asdf")))

			err := tr.Rename("foo", "missing/foo")
			assert.ErrorIs(t, err, store.ErrNoParent)

			err = tr.Rename("foo", "bar/foo")
			assert.ErrorIs(t, err, store.ErrParentNotDir)

			err = tr.Rename("never-there", "foo2")
			assert.ErrorIs(t, err, store.ErrNoSuchFile)
		})
	}
}

func TestTreeRmtree(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.Mkdir("dir1", 0o700))
			require.NoError(t, tr.Mkdir("dir1/dir2", 0o700))
			require.NoError(t, tr.WriteContent("dir1/foo", 0o600, []byte("asdf")))
			require.NoError(t, tr.WriteContent("dir1/dir2/bar", 0o600, []byte("x")))

			require.NoError(t, tr.Rmtree("dir1"))

			for _, gone := range []string{"dir1", "dir1/foo", "dir1/dir2", "dir1/dir2/bar"} {
				_, err := tr.ReadContent(gone)
				assert.ErrorIs(t, err, store.ErrNoSuchFile, gone)
			}
		})
	}
}

func TestTreeIterSubpaths(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)

			subs, err := tr.IterSubpaths("dir1")
			require.NoError(t, err)
			assert.Empty(t, subs)

			require.NoError(t, tr.Mkdir("dir1", 0o700))
			require.NoError(t, tr.Mkdir("dir1/dir2", 0o700))
			require.NoError(t, tr.WriteContent("dir1/file1", 0o600, []byte("hello")))

			subs, err = tr.IterSubpaths("dir1")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"dir1", "dir1/dir2", "dir1/file1"}, subs)

			subs, err = tr.IterSubpaths("dir")
			require.NoError(t, err)
			assert.Empty(t, subs)
		})
	}
}

func TestTreeMakeSubtree(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.Mkdir("dir1", 0o700))

			sub := tr.MakeSubtree("dir1")
			require.NoError(t, sub.WriteContent("foo", 0o600, []byte("asdf")))

			data, err := tr.ReadContent("dir1/foo")
			require.NoError(t, err)
			assert.Equal(t, []byte("asdf"), data)

			// Writes through the parent stay visible in the subtree.
			require.NoError(t, tr.WriteContent("dir1/bar", 0o600, []byte("qwer")))
			data, err = sub.ReadContent("bar")
			require.NoError(t, err)
			assert.Equal(t, []byte("qwer"), data)
		})
	}
}

func TestTreeReadonlyVersion(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.Mkdir("dir1", 0o700))

			ro := tr.ReadonlyVersion()

			// Content written later through the original handle is visible.
			require.NoError(t, tr.WriteContent("dir1/foo", 0o600, []byte("asdf")))
			data, err := ro.ReadContent("dir1/foo")
			require.NoError(t, err)
			assert.Equal(t, []byte("asdf"), data)

			assert.ErrorIs(t, ro.WriteContent("x", 0o600, nil), ErrReadOnly)
			assert.ErrorIs(t, ro.Mkdir("x", 0o700), ErrReadOnly)
			assert.ErrorIs(t, ro.Rename("dir1/foo", "bar"), ErrReadOnly)
			assert.ErrorIs(t, ro.Rmtree("dir1"), ErrReadOnly)
			_, err = ro.Mkdtemp()
			assert.ErrorIs(t, err, ErrReadOnly)
			assert.ErrorIs(t, ro.ApplyRenames([]Rename{{OldPath: "a", NewPath: "b"}}), ErrReadOnly)

			// Readonly subtrees stay readonly.
			sub := ro.MakeSubtree("dir1")
			assert.ErrorIs(t, sub.WriteContent("x", 0o600, nil), ErrReadOnly)
		})
	}
}

func TestTreeMkdtemp(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			name, err := tr.Mkdtemp()
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(name, "transform-"), name)
			assert.NotContains(t, name, "/")

			mode, err := tr.FileMode(name)
			require.NoError(t, err)
			assert.Equal(t, fs.FileMode(0o700), mode)
		})
	}
}

func TestTreeMakeTempTree(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			temp, err := tr.MakeTempTree()
			require.NoError(t, err)

			require.NoError(t, temp.WriteContent("n-foo", 0o600, []byte("asdf")))

			// Staged content can be renamed out into the outer tree.
			require.NoError(t, tr.Rename(temp.FullPath("n-foo"), "f-foo"))
			data, err := tr.ReadContent("f-foo")
			require.NoError(t, err)
			assert.Equal(t, []byte("asdf"), data)
		})
	}
}

func TestTreeRmtreeSubtree(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			temp, err := tr.MakeTempTree()
			require.NoError(t, err)
			require.NoError(t, temp.Mkdir("dir1", 0o700))
			require.NoError(t, temp.WriteContent("dir1/foo", 0o600, []byte("asdf")))

			require.NoError(t, temp.Rmtree("dir1"))
			_, err = temp.ReadContent("dir1")
			assert.ErrorIs(t, err, store.ErrNoSuchFile)
			_, err = temp.ReadContent("dir1/foo")
			assert.ErrorIs(t, err, store.ErrNoSuchFile)
		})
	}
}

func TestTreeApplyRenames(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.WriteContent("a", 0o600, []byte("one")))
			require.NoError(t, tr.WriteContent("b", 0o600, []byte("two")))
			require.NoError(t, tr.Mkdir("d", 0o700))

			err := tr.ApplyRenames([]Rename{
				{OldPath: "a", NewPath: "d/a"},
				{OldPath: "b", NewPath: "d/b"},
			})
			require.NoError(t, err)
			data, err := tr.ReadContent("d/a")
			require.NoError(t, err)
			assert.Equal(t, []byte("one"), data)
		})
	}
}

// A failing rename stops the batch; earlier renames stay applied.
func TestTreeApplyRenamesStopsOnFailure(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			tr := v.make(t)
			require.NoError(t, tr.WriteContent("a", 0o600, []byte("one")))
			require.NoError(t, tr.WriteContent("b", 0o600, []byte("two")))

			err := tr.ApplyRenames([]Rename{
				{OldPath: "a", NewPath: "a2"},
				{OldPath: "b", NewPath: "missing/b"},
				{OldPath: "a2", NewPath: "a3"},
			})
			assert.ErrorIs(t, err, store.ErrNoParent)

			_, err = tr.ReadContent("a2")
			assert.NoError(t, err)
			_, err = tr.ReadContent("b")
			assert.NoError(t, err)
			_, err = tr.ReadContent("a3")
			assert.ErrorIs(t, err, store.ErrNoSuchFile)
		})
	}
}
