// Package batch defines the YAML batch-file format the CLI feeds into a
// transform: a declarative list of moves, file creations, directory
// creations and deletions realized in one pass.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/abentley/tree-transform/transform"
)

// Batch is one batch file. All paths are tree-relative; "." denotes the tree
// root.
type Batch struct {
	// Moves re-places existing entries.
	Moves []Move `yaml:"moves,omitempty"`

	// Creates stages new files.
	Creates []Create `yaml:"creates,omitempty"`

	// Mkdirs stages new directories. Later creates and moves may target
	// them through their parent/name path.
	Mkdirs []Mkdir `yaml:"mkdirs,omitempty"`

	// Deletes schedules existing entries for removal.
	Deletes []string `yaml:"deletes,omitempty"`
}

// Move gives an existing entry a new placement.
type Move struct {
	// Path is the entry's current tree path.
	Path string `yaml:"path"`

	// Parent is the tree path of the final parent directory.
	Parent string `yaml:"parent"`

	// Name is the final name under that parent.
	Name string `yaml:"name"`
}

// Create stages a new file.
type Create struct {
	Name    string      `yaml:"name"`
	Parent  string      `yaml:"parent"`
	Mode    fs.FileMode `yaml:"mode,omitempty"`
	Content string      `yaml:"content,omitempty"`
}

// Mkdir stages a new directory.
type Mkdir struct {
	Name   string      `yaml:"name"`
	Parent string      `yaml:"parent"`
	Mode   fs.FileMode `yaml:"mode,omitempty"`
}

const (
	defaultFileMode = fs.FileMode(0o644)
	defaultDirMode  = fs.FileMode(0o755)
)

// Load reads and validates a batch file.
func Load(file string) (*Batch, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks required fields and fills in default modes.
func (b *Batch) Validate() error {
	for i, m := range b.Moves {
		if m.Path == "" || m.Name == "" {
			return fmt.Errorf("move %d: path and name are required", i)
		}
	}
	for i := range b.Creates {
		if b.Creates[i].Name == "" {
			return fmt.Errorf("create %d: name is required", i)
		}
		if b.Creates[i].Mode == 0 {
			b.Creates[i].Mode = defaultFileMode
		}
	}
	for i := range b.Mkdirs {
		if b.Mkdirs[i].Name == "" {
			return fmt.Errorf("mkdir %d: name is required", i)
		}
		if b.Mkdirs[i].Mode == 0 {
			b.Mkdirs[i].Mode = defaultDirMode
		}
	}
	return nil
}

// Stage records every operation of the batch on an active transform scope.
// Directories are staged first so later creates and moves can target them by
// the parent/name path they will occupy.
func (b *Batch) Stage(p *transform.Pending) error {
	// Paths of directories created by this batch, by their target path.
	created := make(map[string]transform.FileID)

	resolveParent := func(parent string) (transform.FileID, error) {
		if parent == "" {
			parent = "."
		}
		if id, ok := created[path.Clean(parent)]; ok {
			return id, nil
		}
		return transform.ExistingFileID(parent)
	}

	for _, m := range b.Mkdirs {
		parentID, err := resolveParent(m.Parent)
		if err != nil {
			return fmt.Errorf("mkdir %s: %w", m.Name, err)
		}
		id, err := p.CreateDir(m.Name, parentID, m.Mode)
		if err != nil {
			return fmt.Errorf("mkdir %s: %w", m.Name, err)
		}
		created[path.Join(path.Clean(m.Parent), m.Name)] = id
	}
	for _, c := range b.Creates {
		parentID, err := resolveParent(c.Parent)
		if err != nil {
			return fmt.Errorf("create %s: %w", c.Name, err)
		}
		if _, err := p.CreateFile(c.Name, parentID, c.Mode, []byte(c.Content)); err != nil {
			return fmt.Errorf("create %s: %w", c.Name, err)
		}
	}
	for _, m := range b.Moves {
		id, err := p.AcquireExistingID(m.Path)
		if err != nil {
			return fmt.Errorf("move %s: %w", m.Path, err)
		}
		parentID, err := resolveParent(m.Parent)
		if err != nil {
			return fmt.Errorf("move %s: %w", m.Path, err)
		}
		if err := p.SetNameInfo(id, parentID, m.Name); err != nil {
			return fmt.Errorf("move %s: %w", m.Path, err)
		}
	}
	for _, d := range b.Deletes {
		id, err := p.AcquireExistingID(d)
		if err != nil {
			return fmt.Errorf("delete %s: %w", d, err)
		}
		if err := p.Delete(id); err != nil {
			return fmt.Errorf("delete %s: %w", d, err)
		}
	}
	return nil
}
