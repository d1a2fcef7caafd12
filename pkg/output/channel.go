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

// Package output owns the per-category destination files. Each category
// channel serializes appends behind its own mutex: two workers must never
// interleave blocks in the same file.
package output

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/walteh/ctxrc/pkg/filter"
	"gitlab.com/tozd/go/errors"
)

// separatorLine delimits blocks in category files. The width is part of the
// on-disk contract consumed by the assembly stage and downstream readers.
var separatorLine = strings.Repeat("-", 200)

// 📦 Channel is the exclusive-write destination for one category. The lock
// is held only for the duration of a single append, never across transform
// work.
type Channel struct {
	Category filter.Category
	Path     string

	mu sync.Mutex
}

// 🏭 NewChannel creates a channel for a category file.
func NewChannel(category filter.Category, path string) *Channel {
	return &Channel{Category: category, Path: path}
}

// 📝 Init truncates the channel file and writes its header line, creating
// parent directories as needed.
func (c *Channel) Init(header string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return errors.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(c.Path, []byte(header+"\n"), 0644); err != nil {
		return errors.Errorf("initializing %s: %w", filepath.Base(c.Path), err)
	}
	return nil
}

// ➕ Append writes one block under the channel lock:
//
//	<200-dash separator>
//	<relative path>
//	<content lines>
//	<blank line>
//
// Content arrives through next, a line source yielding already-transformed
// lines, so arbitrarily large files stream through without buffering.
func (c *Channel) Append(relPath string, next func() (string, bool)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Errorf("opening %s for append: %w", filepath.Base(c.Path), err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(separatorLine + "\n" + relPath + "\n"); err != nil {
		return errors.Errorf("writing block header: %w", err)
	}
	for line, ok := next(); ok; line, ok = next() {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return errors.Errorf("writing block content: %w", err)
		}
	}
	if _, err := w.WriteString("\n"); err != nil {
		return errors.Errorf("writing block trailer: %w", err)
	}
	if err := w.Flush(); err != nil {
		return errors.Errorf("flushing block: %w", err)
	}
	return nil
}

// ➕ AppendContent appends a block from an in-memory string (the cache-hit
// path, where content was already materialized for storage). Content uses
// newline as a line terminator: "a\n\n" is two lines, the second blank, and
// "" is zero lines. Splitting after trimming the final terminator keeps the
// block byte-identical to what the streaming path produced.
func (c *Channel) AppendContent(relPath, content string) error {
	var lines []string
	if content != "" {
		lines = strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	}
	i := 0
	return c.Append(relPath, func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		line := lines[i]
		i++
		return line, true
	})
}
