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

package output

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ctxrc/pkg/filter"
)

func lineSource(lines ...string) func() (string, bool) {
	i := 0
	return func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		line := lines[i]
		i++
		return line, true
	}
}

func TestChannelBlockFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcription_modules.txt")
	ch := NewChannel(filter.CategoryModule, path)

	require.NoError(t, ch.Init("SCRIPTS/MODULES:"))
	require.NoError(t, ch.Append("src/a.py", lineSource("x=1")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "SCRIPTS/MODULES:\n" +
		strings.Repeat("-", 200) + "\n" +
		"src/a.py\n" +
		"x=1\n" +
		"\n"
	assert.Equal(t, want, string(data), "block format is an on-disk contract")
}

func TestChannelInitTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	ch := NewChannel(filter.CategoryTest, path)

	require.NoError(t, ch.Init("TESTS:"))
	require.NoError(t, ch.Append("a_test.go", lineSource("func TestA(t *testing.T) {}")))
	require.NoError(t, ch.Init("TESTS:"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "TESTS:\n", string(data), "re-init starts the file over")
}

func TestChannelInitCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "out.txt")
	ch := NewChannel(filter.CategoryResource, path)
	require.NoError(t, ch.Init("RESOURCES (CONFIG/DATA/DOCS):"))
	assert.FileExists(t, path)
}

func TestAppendContentMatchesStreamingAppend(t *testing.T) {
	// content is the newline-terminated representation the pool stores in
	// the cache for the same lines.
	tests := []struct {
		name    string
		lines   []string
		content string
	}{
		{
			name:    "plain_lines",
			lines:   []string{"x=1", "y=2"},
			content: "x=1\ny=2\n",
		},
		{
			name:    "leading_blank_line",
			lines:   []string{"", "package main"},
			content: "\npackage main\n",
		},
		{
			name:    "trailing_blank_line",
			lines:   []string{"package main", ""},
			content: "package main\n\n",
		},
		{
			name:    "blank_lines_at_both_edges",
			lines:   []string{"", "package main", ""},
			content: "\npackage main\n\n",
		},
		{
			name:    "single_blank_line",
			lines:   []string{""},
			content: "\n",
		},
		{
			name:    "no_lines",
			lines:   nil,
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			streamed := NewChannel(filter.CategoryModule, filepath.Join(dir, "streamed.txt"))
			require.NoError(t, streamed.Init("SCRIPTS/MODULES:"))
			require.NoError(t, streamed.Append("src/a.py", lineSource(tt.lines...)))

			cached := NewChannel(filter.CategoryModule, filepath.Join(dir, "cached.txt"))
			require.NoError(t, cached.Init("SCRIPTS/MODULES:"))
			require.NoError(t, cached.AppendContent("src/a.py", tt.content))

			a, err := os.ReadFile(streamed.Path)
			require.NoError(t, err)
			b, err := os.ReadFile(cached.Path)
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b), "cache hits must reproduce the streamed block byte for byte")
		})
	}
}

func TestChannelConcurrentAppendsNeverInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	ch := NewChannel(filter.CategoryModule, path)
	require.NoError(t, ch.Init("SCRIPTS/MODULES:"))

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rel := strings.Repeat("f", n+1) + ".py"
			assert.NoError(t, ch.Append(rel, lineSource("line one", "line two")))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	blocks := strings.Count(string(data), strings.Repeat("-", 200)+"\n")
	assert.Equal(t, writers, blocks)

	// Every block must be intact: separator, path, two lines, blank.
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if line == strings.Repeat("-", 200) {
			require.Greater(t, len(lines), i+4, "truncated block at line %d", i)
			assert.Equal(t, "line one", lines[i+2])
			assert.Equal(t, "line two", lines[i+3])
			assert.Equal(t, "", lines[i+4])
		}
	}
}
