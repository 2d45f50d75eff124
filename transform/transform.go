package transform

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"

	"github.com/abentley/tree-transform/tree"
)

const (
	// inboundDir holds staged content waiting to be renamed into its final
	// placement: newly created entries and entries relocated out of the
	// way during phase 1.
	inboundDir = "new"

	// outboundDir parks the content of deleted entries until the staging
	// subtree is discarded at scope exit.
	outboundDir = "old"
)

// Transform realizes batches of structural changes against a tree. It is
// inert between scopes; all state lives on the Pending object of an active
// scope and is discarded when the scope exits.
type Transform struct {
	tree  tree.Tree
	write bool
}

// New returns a transform that applies its rename plan when a Run scope
// completes without error.
func New(t tree.Tree) *Transform {
	return &Transform{tree: t, write: true}
}

// NewDryRun returns a transform that never applies its plan. Useful for
// inspecting the renames a batch would produce.
func NewDryRun(t tree.Tree) *Transform {
	return &Transform{tree: t, write: false}
}

// Run opens an active scope, passes it to fn, and on success applies the
// generated rename plan (unless the transform is a dry run). The staging
// subtree is torn down on every exit path; a failure before or during plan
// generation leaves the tree untouched, while a failure partway through
// apply leaves the already-applied prefix in place.
func (t *Transform) Run(fn func(*Pending) error) (err error) {
	p, err := t.begin()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.close(); err == nil {
			err = cerr
		}
	}()
	if err := fn(p); err != nil {
		return err
	}
	if !t.write {
		return nil
	}
	renames, err := p.GenerateRenames()
	if err != nil {
		return err
	}
	return t.tree.ApplyRenames(renames)
}

func (t *Transform) begin() (*Pending, error) {
	tempName, err := t.tree.Mkdtemp()
	if err != nil {
		return nil, err
	}
	temp := t.tree.MakeSubtree(tempName)
	for _, region := range []string{inboundDir, outboundDir} {
		if err := temp.Mkdir(region, 0o700); err != nil {
			_ = t.tree.Rmtree(tempName)
			return nil, err
		}
	}
	return &Pending{
		tree:     t.tree,
		tempName: tempName,
		inbound:  temp.MakeSubtree(inboundDir),
		nameInfo: make(map[FileID]nameInfo),
		deletes:  make(map[FileID]struct{}),
		staged:   make(map[FileID]string),
	}, nil
}

// nameInfo records an entry's desired final placement.
type nameInfo struct {
	parent FileID
	name   string
}

// Pending is the active scope of a transform. Every operation fails with
// ErrNotActive once the scope has exited.
type Pending struct {
	tree     tree.Tree
	tempName string
	inbound  tree.Tree

	nameInfo map[FileID]nameInfo
	deletes  map[FileID]struct{}

	// staged maps ids whose content already sits in the inbound region to
	// its tree-relative staged path.
	staged  map[FileID]string
	nextSeq int

	done bool
}

func (p *Pending) active() error {
	if p == nil || p.done {
		return ErrNotActive
	}
	return nil
}

// close tears down the staging subtree and deactivates the scope. It runs
// unconditionally at scope exit, success or failure.
func (p *Pending) close() error {
	if p.done {
		return nil
	}
	p.done = true
	return p.tree.Rmtree(p.tempName)
}

// AcquireExistingID registers the entry at path and returns its identifier.
// Acquiring a path registers placement records for its whole ancestor chain,
// so a parent's moves are always visible to its descendants. Repeated
// acquisition is a no-op.
func (p *Pending) AcquireExistingID(treePath string) (FileID, error) {
	if err := p.active(); err != nil {
		return FileID{}, err
	}
	return p.acquire(treePath)
}

func (p *Pending) acquire(treePath string) (FileID, error) {
	id, err := ExistingFileID(treePath)
	if err != nil {
		return FileID{}, err
	}
	if id.IsRoot() {
		return id, nil
	}
	if _, ok := p.nameInfo[id]; ok {
		return id, nil
	}
	parentID, err := p.acquire(path.Dir(id.path))
	if err != nil {
		return FileID{}, err
	}
	p.nameInfo[id] = nameInfo{parent: parentID, name: path.Base(id.path)}
	return id, nil
}

// MakeNewID mints an identifier for an entry that does not exist yet. The
// name is cosmetic; uniqueness comes from the counter alone.
func (p *Pending) MakeNewID(name string) (FileID, error) {
	if err := p.active(); err != nil {
		return FileID{}, err
	}
	id := FileID{kind: idNew, seq: p.nextSeq, name: name}
	p.nextSeq++
	return id, nil
}

// SetNameInfo records or overwrites id's desired final placement. No cycle
// validation happens here; the rename plan is correct for any placement the
// graph can express, and unresolvable chains surface at plan time.
func (p *Pending) SetNameInfo(id, parent FileID, name string) error {
	if err := p.active(); err != nil {
		return err
	}
	p.nameInfo[id] = nameInfo{parent: parent, name: name}
	return nil
}

// Name returns id's recorded name, falling back to the name encoded in the
// identifier itself. The root has no name.
func (p *Pending) Name(id FileID) (string, error) {
	if err := p.active(); err != nil {
		return "", err
	}
	if info, ok := p.nameInfo[id]; ok {
		return info.name, nil
	}
	if id.IsRoot() {
		return "", fmt.Errorf("%w: root has no name", ErrNotFound)
	}
	if id.kind == idNew {
		return id.name, nil
	}
	return path.Base(id.path), nil
}

// Parent returns id's recorded parent, falling back to the parent of the
// path encoded in the identifier. The root has no parent.
func (p *Pending) Parent(id FileID) (FileID, error) {
	if err := p.active(); err != nil {
		return FileID{}, err
	}
	if info, ok := p.nameInfo[id]; ok {
		return info.parent, nil
	}
	if id.IsRoot() {
		return FileID{}, fmt.Errorf("%w: root has no parent", ErrNotFound)
	}
	if id.kind == idNew {
		return FileID{}, fmt.Errorf("%w: %s has no placement", ErrNotFound, id)
	}
	return ExistingFileID(path.Dir(id.path))
}

// FinalPath resolves id's placement through the recorded overrides up the
// ancestor chain. An id with no recorded placement keeps the path encoded in
// the identifier.
func (p *Pending) FinalPath(id FileID) (string, error) {
	if err := p.active(); err != nil {
		return "", err
	}
	return p.finalPath(id, make(map[FileID]struct{}))
}

func (p *Pending) finalPath(id FileID, seen map[FileID]struct{}) (string, error) {
	if _, ok := seen[id]; ok {
		return "", fmt.Errorf("%w: %s", ErrCycle, id)
	}
	seen[id] = struct{}{}
	info, ok := p.nameInfo[id]
	if !ok {
		return id.existingPath()
	}
	if info.parent.IsRoot() {
		return info.name, nil
	}
	parentPath, err := p.finalPath(info.parent, seen)
	if err != nil {
		return "", err
	}
	return path.Join(parentPath, info.name), nil
}

// stageKey is the inbound/outbound address of an id: its textual encoding
// escaped down to a single path component, so Existing ids (which contain
// slashes) stage flat on every tree variant.
func stageKey(id FileID) string {
	return url.PathEscape(id.String())
}

// CreateFile stages a new file in the inbound region and records its
// placement. The content reaches its final path only when the plan is
// applied at scope exit.
func (p *Pending) CreateFile(name string, parent FileID, mode fs.FileMode, data []byte) (FileID, error) {
	if err := p.active(); err != nil {
		return FileID{}, err
	}
	id, err := p.MakeNewID(name)
	if err != nil {
		return FileID{}, err
	}
	key := stageKey(id)
	if err := p.inbound.WriteContent(key, mode, data); err != nil {
		return FileID{}, err
	}
	p.nameInfo[id] = nameInfo{parent: parent, name: name}
	p.staged[id] = path.Join(p.tempName, inboundDir, key)
	return id, nil
}

// CreateDir stages a new directory in the inbound region and records its
// placement. Entries may be placed inside it within the same scope.
func (p *Pending) CreateDir(name string, parent FileID, mode fs.FileMode) (FileID, error) {
	if err := p.active(); err != nil {
		return FileID{}, err
	}
	id, err := p.MakeNewID(name)
	if err != nil {
		return FileID{}, err
	}
	key := stageKey(id)
	if err := p.inbound.Mkdir(key, mode); err != nil {
		return FileID{}, err
	}
	p.nameInfo[id] = nameInfo{parent: parent, name: name}
	p.staged[id] = path.Join(p.tempName, inboundDir, key)
	return id, nil
}

// Delete schedules id for removal. Nothing is removed immediately: the plan
// relocates the content to the outbound region, where it stays parked until
// the staging subtree is discarded at scope exit.
func (p *Pending) Delete(id FileID) error {
	if err := p.active(); err != nil {
		return err
	}
	p.deletes[id] = struct{}{}
	return nil
}
