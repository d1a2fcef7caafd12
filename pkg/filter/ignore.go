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

package filter

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// ignoreFileNames are consulted in order; the first one that exists wins.
var ignoreFileNames = []string{".ctxignore", ".gitignore"}

// 📥 LoadIgnoreFile reads the ignore file at the root of the tree (if any)
// and adds its globs to the exclusion set. Blank lines and #-comments are
// skipped; a trailing / marks a directory-anchored pattern and is stripped
// before translation. Lines that are not valid glob syntax are dropped.
func (s *Set) LoadIgnoreFile(ctx context.Context, root string) {
	for _, name := range ignoreFileNames {
		path := filepath.Join(root, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()

		count := 0
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			glob, ok := translateIgnoreLine(sc.Text())
			if !ok {
				continue
			}
			s.ignoreGlobs = append(s.ignoreGlobs, glob)
			count++
		}
		zerolog.Ctx(ctx).Debug().Str("file", path).Int("patterns", count).Msg("loaded ignore patterns")
		return
	}
}

// translateIgnoreLine converts one ignore-file line into a doublestar glob.
// Returns false for blank lines, comments, and malformed globs.
func translateIgnoreLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false
	}
	// Directory-anchored patterns lose the trailing separator; matching is
	// done against bare names, which covers the directory itself.
	line = strings.TrimSuffix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return "", false
	}
	if !doublestar.ValidatePattern(line) {
		return "", false
	}
	return line, true
}
