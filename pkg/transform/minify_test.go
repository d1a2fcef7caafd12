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

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinifier(t *testing.T) {
	tests := []struct {
		name  string
		ext   string
		lines []string
		want  []string // kept lines, in order
	}{
		{
			name:  "strips_hash_comments",
			ext:   ".py",
			lines: []string{"x = 1  # assignment", "# full line comment", "y = 2"},
			want:  []string{"x = 1", "", "y = 2"},
		},
		{
			name:  "strips_c_style_comments",
			ext:   ".go",
			lines: []string{"x := 1 // counter", "y := 2"},
			want:  []string{"x := 1", "y := 2"},
		},
		{
			name:  "collapses_blank_runs",
			ext:   ".py",
			lines: []string{"a = 1", "", "", "", "b = 2"},
			want:  []string{"a = 1", "", "b = 2"},
		},
		{
			name:  "strips_trailing_whitespace",
			ext:   ".py",
			lines: []string{"a = 1   \t", "b = 2\r"},
			want:  []string{"a = 1", "b = 2"},
		},
		{
			name:  "unknown_extension_keeps_comments",
			ext:   ".txt",
			lines: []string{"# not a comment here", "text // still text"},
			want:  []string{"# not a comment here", "text // still text"},
		},
		{
			name:  "comment_only_lines_become_one_blank",
			ext:   ".py",
			lines: []string{"x = 1", "# one", "# two", "y = 2"},
			want:  []string{"x = 1", "", "y = 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMinifier(tt.ext)
			var got []string
			for _, line := range tt.lines {
				out, keep := m.Apply(line)
				if keep {
					got = append(got, out)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinifierBlankStateResets(t *testing.T) {
	m := NewMinifier(".go")

	_, keep := m.Apply("")
	assert.True(t, keep, "first blank survives")
	_, keep = m.Apply("")
	assert.False(t, keep, "second blank is swallowed")

	out, keep := m.Apply("content")
	assert.True(t, keep)
	assert.Equal(t, "content", out)

	_, keep = m.Apply("")
	assert.True(t, keep, "blank after content survives again")
}
