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

// Package scanner walks an input tree exactly once, applying filter
// decisions and yielding file candidates as it goes. It buffers nothing:
// restarting the sequence means calling Scan again.
package scanner

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/walteh/ctxrc/pkg/filter"
	"gitlab.com/tozd/go/errors"
)

// 📄 Candidate describes one file found during the walk. Produced once per
// scan and never mutated.
type Candidate struct {
	AbsolutePath string
	RelPath      string
	Ext          string
	FileName     string
}

// 📊 Status tags a scan entry as workable or filtered out.
type Status int

const (
	StatusProcess Status = iota
	StatusSkipped
)

// 📦 Entry is one element of the scan sequence.
type Entry struct {
	Status    Status
	Candidate Candidate
}

// 🚶 Scan walks root once, pruning excluded directories before descending,
// and calls yield for every file. Files failing the exclusion/inclusion/
// extension chain are yielded as skipped; the rest as process. Returning
// false from yield stops the walk early (used for cooperative cancellation).
func Scan(ctx context.Context, root string, set *filter.Set, yield func(Entry) bool) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return errors.Errorf("resolving scan root: %w", err)
	}

	stop := errors.New("scan stopped")

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable directories are skipped, not fatal; per-file errors
			// surface later when workers open the files.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if err := ctx.Err(); err != nil {
			return stop
		}

		name := d.Name()

		if d.IsDir() {
			if path != absRoot && set.MatchesExclude(name) {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = name
		}

		entry := Entry{
			Candidate: Candidate{
				AbsolutePath: path,
				RelPath:      filepath.ToSlash(rel),
				Ext:          filepath.Ext(name),
				FileName:     name,
			},
		}
		if !set.AllowsFile(name) {
			entry.Status = StatusSkipped
		}

		if !yield(entry) {
			return stop
		}
		return nil
	})

	if err != nil && !errors.Is(err, stop) {
		return errors.Errorf("walking %s: %w", absRoot, err)
	}
	return nil
}
