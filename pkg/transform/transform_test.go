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
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{
			name: "all_stages",
			opts: Options{Minify: true, Sanitize: true, MaskPaths: true},
			want: 3,
		},
		{
			name: "sanitize_only",
			opts: Options{Sanitize: true},
			want: 1,
		},
		{
			name: "no_stages",
			opts: Options{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := Chain(".py", tt.opts)
			assert.Len(t, stages, tt.want)
		})
	}
}

func TestApplyAllComposesInOrder(t *testing.T) {
	stages := Chain(".py", Options{Minify: true, Sanitize: true})

	// The comment is stripped before the sanitizer sees the line, and the
	// credential value inside it is then redacted.
	got, keep := ApplyAll(stages, `secret = "abcdefgh12345678"  # do not commit`)
	require.True(t, keep)
	assert.Equal(t, `secret = "`+redactedSecret+`"`, got)
}

func TestApplyAllShortCircuitsSwallowedLines(t *testing.T) {
	stages := Chain(".py", Options{Minify: true, Sanitize: true})

	_, keep := ApplyAll(stages, "")
	require.True(t, keep, "first blank survives")

	got, keep := ApplyAll(stages, "")
	assert.False(t, keep, "second blank is swallowed by the minifier")
	assert.Equal(t, "", got)
}
