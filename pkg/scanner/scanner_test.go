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

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ctxrc/pkg/filter"
)

// writeTree creates files under root; keys are slash-separated relative
// paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func collect(t *testing.T, root string, set *filter.Set) (processed, skipped []string) {
	t.Helper()
	err := Scan(context.Background(), root, set, func(e Entry) bool {
		if e.Status == StatusProcess {
			processed = append(processed, e.Candidate.RelPath)
		} else {
			skipped = append(skipped, e.Candidate.RelPath)
		}
		return true
	})
	require.NoError(t, err)
	return processed, skipped
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":             "package main",
		"pkg/util.go":         "package pkg",
		"pkg/util_test.go":    "package pkg",
		"docs/notes.txt":      "notes",
		"node_modules/dep.go": "package dep",
	})

	set := filter.Compile(context.Background(),
		[]string{".*"},
		[]string{`^node_modules$`},
		[]string{".go"},
	)

	processed, skipped := collect(t, root, set)

	assert.ElementsMatch(t, []string{"main.go", "pkg/util.go", "pkg/util_test.go"}, processed)
	assert.ElementsMatch(t, []string{"docs/notes.txt"}, skipped,
		"files under excluded directories are pruned, not yielded")
}

func TestScanCandidateFields(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"sub/dir/app.py": "x = 1"})

	set := filter.Compile(context.Background(), []string{".*"}, nil, []string{".py"})

	var got Candidate
	err := Scan(context.Background(), root, set, func(e Entry) bool {
		got = e.Candidate
		return true
	})
	require.NoError(t, err)

	assert.Equal(t, "sub/dir/app.py", got.RelPath, "relative paths use forward slashes")
	assert.Equal(t, ".py", got.Ext)
	assert.Equal(t, "app.py", got.FileName)
	assert.True(t, filepath.IsAbs(got.AbsolutePath))
}

func TestScanStopsWhenYieldReturnsFalse(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go": "", "b.go": "", "c.go": "",
	})

	set := filter.Compile(context.Background(), []string{".*"}, nil, []string{".go"})

	seen := 0
	err := Scan(context.Background(), root, set, func(e Entry) bool {
		seen++
		return false
	})
	require.NoError(t, err, "early stop is not an error")
	assert.Equal(t, 1, seen)
}

func TestScanHonorsContextCancellation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.go": "", "b.go": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set := filter.Compile(context.Background(), []string{".*"}, nil, []string{".go"})

	seen := 0
	err := Scan(ctx, root, set, func(e Entry) bool {
		seen++
		return true
	})
	require.NoError(t, err)
	assert.Zero(t, seen)
}

func TestScanMissingRoot(t *testing.T) {
	set := filter.Compile(context.Background(), []string{".*"}, nil, []string{".go"})
	calls := 0
	err := Scan(context.Background(), filepath.Join(t.TempDir(), "absent"), set, func(e Entry) bool {
		calls++
		return true
	})
	require.NoError(t, err, "unreadable roots are skipped like unreadable directories")
	assert.Zero(t, calls)
}
