// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tree renders a filtered view of the project structure. It runs
// concurrently with the transcription workers and shares no mutable state
// with them.
package tree

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/ctxrc/pkg/filter"
	"gitlab.com/tozd/go/errors"
)

// 🌳 Node is a tagged variant: a directory with ordered children, or a file
// leaf carrying its absolute path. No runtime type inspection is needed to
// render or prune.
type Node struct {
	dir      bool
	path     string // files only
	children map[string]*Node
}

// NewDir returns an empty directory node.
func NewDir() *Node {
	return &Node{dir: true, children: make(map[string]*Node)}
}

// NewFile returns a file leaf.
func NewFile(path string) *Node {
	return &Node{path: path}
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.dir }

// child returns (creating if needed) the named directory child.
func (n *Node) childDir(name string) *Node {
	if c, ok := n.children[name]; ok && c.dir {
		return c
	}
	c := NewDir()
	n.children[name] = c
	return c
}

// ⚙️ Options controls symbol display on file leaves and optional save.
type Options struct {
	ShowFunctions bool
	ShowClasses   bool
	ShowMethods   bool
	Symbols       SymbolExtractor
	SavePath      string
}

// 🏭 Generate walks root with the same pruning rules as the scanner, builds
// the node structure, prunes directories left empty by filtering, and
// renders the result. When Options.SavePath is set the rendered lines are
// also written to that file; a save failure is reported inside the output
// rather than failing the run.
func Generate(ctx context.Context, root string, set *filter.Set, opts Options) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving tree root: %w", err)
	}

	top := NewDir()

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != absRoot && set.MatchesExclude(name) {
				return fs.SkipDir
			}
			return nil
		}
		if !set.AllowsFile(name) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}

		node := top
		parts := strings.Split(filepath.ToSlash(rel), "/")
		for _, part := range parts[:len(parts)-1] {
			node = node.childDir(part)
		}
		node.children[name] = NewFile(path)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", absRoot, err)
	}

	prune(top)

	var lines []string
	render(top, &lines, "", opts)

	if opts.SavePath != "" {
		if err := save(opts.SavePath, lines); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("path", opts.SavePath).Msg("failed to save tree")
			lines = append(lines, "[ERROR] saving tree: "+err.Error())
		}
	}
	return lines, nil
}

// prune removes directory nodes emptied out by filtering.
func prune(n *Node) {
	for name, child := range n.children {
		if !child.dir {
			continue
		}
		prune(child)
		if len(child.children) == 0 {
			delete(n.children, name)
		}
	}
}

func save(path string, lines []string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Errorf("creating tree directory: %w", err)
		}
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Errorf("writing tree file: %w", err)
	}
	return nil
}

func sortedNames(n *Node) []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
