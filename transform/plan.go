package transform

import (
	"path"
	"sort"
	"strings"

	"github.com/abentley/tree-transform/tree"
)

// depth counts the path segments of a normalized tree path. Sorting by
// segment count, not raw string order, is what guarantees children are
// relocated before their parents and parents are placed before their
// children, independent of how sibling names happen to collate.
func depth(p string) int {
	return strings.Count(p, "/") + 1
}

// GenerateRenames computes the ordered rename plan for the recorded
// placements. The plan has two strictly ordered phases.
//
// Phase 1 relocates every entry that will move into the staging area: changed
// entries into the inbound region keyed by identifier, entries scheduled for
// deletion into the outbound region. Relocations run deepest-first so a
// directory's descendants are out of the way before the directory itself
// moves.
//
// Phase 2 renames staged content to its final path, shallowest-first so a
// parent exists before anything is placed inside it. Deleted entries never
// reach phase 2; their content stays parked in the outbound region until the
// staging subtree is discarded.
//
// Generating the plan mutates nothing; it can be inspected and regenerated
// freely before the scope exits.
func (p *Pending) GenerateRenames() ([]tree.Rename, error) {
	if err := p.active(); err != nil {
		return nil, err
	}

	staged := make(map[FileID]string, len(p.staged))
	for id, src := range p.staged {
		staged[id] = src
	}

	var phase1 []tree.Rename
	for id := range p.nameInfo {
		if _, ok := staged[id]; ok {
			continue
		}
		if _, ok := p.deletes[id]; ok {
			continue
		}
		orig, err := id.existingPath()
		if err != nil {
			return nil, err
		}
		dst := path.Join(p.tempName, inboundDir, stageKey(id))
		staged[id] = dst
		phase1 = append(phase1, tree.Rename{OldPath: orig, NewPath: dst})
	}
	for id := range p.deletes {
		if _, ok := p.staged[id]; ok {
			// Created in this scope: its content is already inside
			// the staging subtree and will vanish with it.
			continue
		}
		orig, err := id.existingPath()
		if err != nil {
			return nil, err
		}
		dst := path.Join(p.tempName, outboundDir, stageKey(id))
		phase1 = append(phase1, tree.Rename{OldPath: orig, NewPath: dst})
	}
	sort.Slice(phase1, func(i, j int) bool {
		di, dj := depth(phase1[i].OldPath), depth(phase1[j].OldPath)
		if di != dj {
			return di > dj
		}
		return phase1[i].OldPath < phase1[j].OldPath
	})

	var phase2 []tree.Rename
	for id := range p.nameInfo {
		if _, ok := p.deletes[id]; ok {
			continue
		}
		final, err := p.finalPath(id, make(map[FileID]struct{}))
		if err != nil {
			return nil, err
		}
		phase2 = append(phase2, tree.Rename{OldPath: staged[id], NewPath: final})
	}
	sort.Slice(phase2, func(i, j int) bool {
		di, dj := depth(phase2[i].NewPath), depth(phase2[j].NewPath)
		if di != dj {
			return di < dj
		}
		return phase2[i].NewPath < phase2[j].NewPath
	})

	return append(phase1, phase2...), nil
}
