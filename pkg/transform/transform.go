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

// Package transform implements the per-file streaming transform chain:
// minify, sanitize, mask-paths. Every stage works line by line so files of
// arbitrary size are processed in bounded memory.
package transform

// ⚙️ Options selects which stages the chain applies.
type Options struct {
	Minify    bool
	Sanitize  bool
	MaskPaths bool
}

// 🔗 Stage transforms one line at a time. Stages may keep state across lines
// (the minifier tracks blank runs) but must never materialize the whole
// file. The second return value is false when the line is swallowed.
type Stage interface {
	Apply(line string) (string, bool)
}

// 🏭 Chain composes the configured stages for one file in fixed order:
// minify, then sanitize, then mask-paths. A fresh chain is built per file
// because stages are stateful.
func Chain(ext string, opts Options) []Stage {
	var stages []Stage
	if opts.Minify {
		stages = append(stages, NewMinifier(ext))
	}
	if opts.Sanitize {
		stages = append(stages, NewSanitizer())
	}
	if opts.MaskPaths {
		stages = append(stages, NewPathMasker())
	}
	return stages
}

// 🏃 ApplyAll runs one line through every stage in order. A swallowed line
// short-circuits the rest of the chain.
func ApplyAll(stages []Stage, line string) (string, bool) {
	for _, stage := range stages {
		out, ok := stage.Apply(line)
		if !ok {
			return "", false
		}
		line = out
	}
	return line, true
}
