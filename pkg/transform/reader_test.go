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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain_lines",
			input: "one\ntwo\nthree",
			want:  []string{"one", "two", "three"},
		},
		{
			name:  "crlf_endings",
			input: "one\r\ntwo\r\n",
			want:  []string{"one", "two"},
		},
		{
			// A run of invalid bytes collapses into a single marker.
			name:  "invalid_utf8_replaced",
			input: "ok\nbad\xff\xfebytes\nend",
			want:  []string{"ok", "bad�bytes", "end"},
		},
		{
			name:  "empty_input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAllLines(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func readAllLines(t *testing.T, input string) ([]string, error) {
	t.Helper()
	lr := NewLineReader(strings.NewReader(input))
	var got []string
	for {
		line, ok := lr.Next()
		if !ok {
			break
		}
		got = append(got, line)
	}
	return got, lr.Err()
}

func TestLineReaderChunksOversizedLines(t *testing.T) {
	long := strings.Repeat("a", maxChunkSize+512)

	got, err := readAllLines(t, long+"\nend\n")
	require.NoError(t, err, "an oversized line must not fail the file")

	require.Len(t, got, 3)
	assert.Len(t, got[0], maxChunkSize)
	assert.Len(t, got[1], 512)
	assert.Equal(t, "end", got[2])
	assert.Equal(t, long, got[0]+got[1], "chunks reassemble to the original line")
}

func TestLineReaderChunkBoundaryKeepsRuneIntact(t *testing.T) {
	// The two-byte rune starts on the last byte of the first chunk.
	line := strings.Repeat("a", maxChunkSize-1) + "éllo"

	got, err := readAllLines(t, line+"\n")
	require.NoError(t, err)

	joined := strings.Join(got, "")
	assert.Equal(t, line, joined)
	assert.NotContains(t, joined, "�")
}
