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
	"regexp"
	"strings"
)

var (
	hashCommentPattern   = regexp.MustCompile(`#.*`)
	cStyleCommentPattern = regexp.MustCompile(`//.*`)

	hashCommentExts = map[string]bool{
		".py": true, ".yaml": true, ".yml": true, ".sh": true, ".bash": true,
	}
	cStyleCommentExts = map[string]bool{
		".js": true, ".ts": true, ".jsx": true, ".tsx": true, ".java": true,
		".c": true, ".cpp": true, ".h": true, ".hpp": true, ".cs": true, ".go": true,
	}
)

// ✂️ Minifier strips language-aware line comments and trailing whitespace,
// and collapses runs of blank lines so at most one survives between content.
type Minifier struct {
	comment    *regexp.Regexp
	blankCount int
}

// 🏭 NewMinifier builds a minifier for the given file extension. Unknown
// extensions keep their comments and only get whitespace treatment.
func NewMinifier(ext string) *Minifier {
	m := &Minifier{}
	switch lower := strings.ToLower(ext); {
	case hashCommentExts[lower]:
		m.comment = hashCommentPattern
	case cStyleCommentExts[lower]:
		m.comment = cStyleCommentPattern
	}
	return m
}

// ✂️ Apply minifies one line. Second and later consecutive blank lines are
// swallowed.
func (m *Minifier) Apply(line string) (string, bool) {
	if m.comment != nil {
		line = m.comment.ReplaceAllString(line, "")
	}
	line = strings.TrimRight(line, " \t\r")

	if line == "" {
		m.blankCount++
		return "", m.blankCount == 1
	}
	m.blankCount = 0
	return line, true
}
