package store

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// OverlayStore composes a mutable diff over an immutable base. Writes,
// directory creations and renames always land in the overlay and permanently
// shadow the base at that path. Base content that has been renamed is reached
// through a remap table; base content that has been renamed away or removed
// is masked by a whiteout so it stops resolving under its former name.
type OverlayStore struct {
	base  Reader
	local map[string]entry

	// remap redirects reads of base-only content: key is the current
	// (post-rename) path prefix, value is the original base path prefix.
	remap map[string]string

	// hidden holds whiteout prefixes under which the base no longer
	// resolves. A longer remap key overrides a shorter whiteout and vice
	// versa, so the most specific record wins.
	hidden map[string]struct{}
}

// NewOverlayStore returns an empty overlay over base. The base is never
// mutated through the overlay.
func NewOverlayStore(base Reader) *OverlayStore {
	return &OverlayStore{
		base:   base,
		local:  make(map[string]entry),
		remap:  make(map[string]string),
		hidden: make(map[string]struct{}),
	}
}

// resolution describes where a path's content currently lives.
type resolution struct {
	local    *entry
	hidden   bool
	basePath string
}

// resolve maps an overlay path to its backing content. Overlay entries win
// outright; otherwise the longest covering remap or whiteout prefix decides,
// with remap winning ties (a rename into a name supersedes an earlier
// whiteout of the same name).
func (o *OverlayStore) resolve(p string) resolution {
	if e, ok := o.local[p]; ok {
		return resolution{local: &e}
	}
	return o.baseResolve(p)
}

// baseResolve maps p through the remap and whiteout tables only, ignoring any
// overlay entry at p itself. Rename needs this: a local entry shadowing the
// source path says nothing about the base content living under it.
func (o *OverlayStore) baseResolve(p string) resolution {
	bestRemap := -1
	var remapDst string
	for dst := range o.remap {
		if isSubpath(dst, p) && len(dst) > bestRemap {
			bestRemap = len(dst)
			remapDst = dst
		}
	}
	bestHidden := -1
	for h := range o.hidden {
		if isSubpath(h, p) && len(h) > bestHidden {
			bestHidden = len(h)
		}
	}
	if bestHidden > bestRemap {
		return resolution{hidden: true}
	}
	if bestRemap >= 0 {
		return resolution{basePath: rebase(p, remapDst, o.remap[remapDst])}
	}
	return resolution{basePath: p}
}

func (o *OverlayStore) ReadContent(p string) ([]byte, error) {
	p = path.Clean(p)
	res := o.resolve(p)
	switch {
	case res.local != nil:
		if res.local.dir {
			return nil, fmt.Errorf("%w: %s", ErrIsDirectory, p)
		}
		return res.local.data, nil
	case res.hidden:
		return nil, fmt.Errorf("%w: %s", ErrNoSuchFile, p)
	}
	return o.base.ReadContent(res.basePath)
}

func (o *OverlayStore) FileMode(p string) (fs.FileMode, error) {
	p = path.Clean(p)
	res := o.resolve(p)
	switch {
	case res.local != nil:
		return res.local.mode, nil
	case res.hidden:
		return 0, fmt.Errorf("%w: %s", ErrNoSuchFile, p)
	}
	return o.base.FileMode(res.basePath)
}

func (o *OverlayStore) IterSubpaths(p string) ([]string, error) {
	p = path.Clean(p)
	candidates := make(map[string]struct{})
	for key := range o.local {
		if isSubpath(p, key) {
			candidates[key] = struct{}{}
		}
	}
	direct, err := o.base.IterSubpaths(p)
	if err != nil {
		return nil, err
	}
	for _, bp := range direct {
		candidates[bp] = struct{}{}
	}
	for dst, src := range o.remap {
		mapped, err := o.base.IterSubpaths(src)
		if err != nil {
			return nil, err
		}
		for _, bp := range mapped {
			if t := rebase(bp, src, dst); isSubpath(p, t) {
				candidates[t] = struct{}{}
			}
		}
	}

	var subs []string
	for c := range candidates {
		res := o.resolve(c)
		switch {
		case res.local != nil:
			subs = append(subs, c)
		case res.hidden:
		default:
			// A candidate from one mapping can be shadowed by a more
			// specific one; keep only those whose resolution still
			// lands on real base content.
			if _, err := o.base.FileMode(res.basePath); err == nil {
				subs = append(subs, c)
			}
		}
	}
	sort.Strings(subs)
	return subs, nil
}

func (o *OverlayStore) WriteContent(p string, mode fs.FileMode, data []byte) error {
	o.local[path.Clean(p)] = entry{mode: mode, data: append([]byte(nil), data...)}
	return nil
}

func (o *OverlayStore) Mkdir(p string, mode fs.FileMode) error {
	o.local[path.Clean(p)] = entry{mode: mode, dir: true}
	return nil
}

// baseHasAny reports whether visible base content exists at or under the
// already-resolved base path.
func (o *OverlayStore) baseHasAny(basePath string) bool {
	if _, err := o.base.FileMode(basePath); err == nil {
		return true
	}
	subs, err := o.base.IterSubpaths(basePath)
	return err == nil && len(subs) > 0
}

func (o *OverlayStore) Rename(oldPath, newPath string) error {
	oldPath = path.Clean(oldPath)
	newPath = path.Clean(newPath)

	// Resolve the source's base coordinates before any table is touched. A
	// local entry at the source path itself must not mask the base content
	// addressed under it.
	src := o.baseResolve(oldPath)
	baseVisible := !src.hidden && o.baseHasAny(src.basePath)

	localMatch := false
	for key := range o.local {
		if isSubpath(oldPath, key) {
			localMatch = true
			break
		}
	}
	if !localMatch && !baseVisible {
		return fmt.Errorf("%w: %s", ErrNoSuchFile, oldPath)
	}

	moved := make(map[string]entry)
	for key, e := range o.local {
		if isSubpath(oldPath, key) {
			moved[rebase(key, oldPath, newPath)] = e
			delete(o.local, key)
		}
	}
	for key, e := range moved {
		o.local[key] = e
	}

	// Carry remap and whiteout records along with the content they govern.
	for dst, s := range o.remap {
		if isSubpath(oldPath, dst) {
			delete(o.remap, dst)
			o.remap[rebase(dst, oldPath, newPath)] = s
		}
	}
	for h := range o.hidden {
		if isSubpath(oldPath, h) {
			delete(o.hidden, h)
			o.hidden[rebase(h, oldPath, newPath)] = struct{}{}
		}
	}

	if baseVisible {
		o.remap[newPath] = src.basePath
	}
	o.hidden[oldPath] = struct{}{}
	return nil
}

func (o *OverlayStore) Rmtree(p string) error {
	p = path.Clean(p)
	for key := range o.local {
		if isSubpath(p, key) {
			delete(o.local, key)
		}
	}
	for dst := range o.remap {
		if isSubpath(p, dst) {
			delete(o.remap, dst)
		}
	}
	o.hidden[p] = struct{}{}
	return nil
}

// ReadonlyVersion returns a Reader view of the overlay.
func (o *OverlayStore) ReadonlyVersion() Reader {
	return readonlyStore{o}
}
