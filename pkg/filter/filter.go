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
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// 📂 Category is the classification a filename resolves to.
type Category int

const (
	CategoryModule Category = iota
	CategoryTest
	CategoryResource
)

// String returns a string representation of Category
func (c Category) String() string {
	switch c {
	case CategoryTest:
		return "test"
	case CategoryResource:
		return "resource"
	default:
		return "module"
	}
}

// 🧪 testNamePattern recognizes test files across common language
// conventions: test_* (Python), *_test (Go), Test*/«*Test(s)» (Java/C#),
// *.spec/*.test/*.e2e/*.cy (JS/TS).
var testNamePattern = regexp.MustCompile(
	`(?i)^(test_.*|.*_test|Test.*|.*Test|.*Tests|.*TestCase|.*\.spec|.*\.test|.*\.e2e|.*\.cy)` +
		`\.(py|js|ts|jsx|tsx|java|kt|go|rs|cs|cpp|c|h|hpp|swift|php)$`)

// 📄 resourceExtensions are documentation/config/data extensions classified
// as resources before code classification is attempted.
var resourceExtensions = map[string]bool{
	".md": true, ".markdown": true, ".rst": true, ".txt": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".xml": true,
	".csv": true, ".ini": true, ".cfg": true, ".conf": true, ".properties": true,
	".dockerignore": true, ".editorconfig": true, ".css": true, ".env": true,
}

// 📄 resourceFilenames are exact names classified as resources regardless of
// extension (build and manifest files).
var resourceFilenames = map[string]bool{
	"Dockerfile": true, "Makefile": true, "LICENSE": true, "CHANGELOG": true,
	"README": true, "Gemfile": true, "Procfile": true,
	".dockerignore": true, ".editorconfig": true, ".env": true, ".gitignore": true,
}

// 🔧 Set holds the compiled matchers for one pipeline run.
type Set struct {
	include     []*regexp.Regexp
	exclude     []*regexp.Regexp
	ignoreGlobs []string
	extensions  map[string]bool
}

// 🏭 Compile builds a Set from raw inclusion/exclusion regexes and an
// extension allow-list. Compilation is fail-soft: a malformed pattern is
// dropped and logged, never aborting the run.
func Compile(ctx context.Context, include, exclude, extensions []string) *Set {
	s := &Set{
		include:    compilePatterns(ctx, include),
		exclude:    compilePatterns(ctx, exclude),
		extensions: make(map[string]bool, len(extensions)),
	}
	for _, ext := range extensions {
		s.extensions[strings.ToLower(ext)] = true
	}
	return s
}

func compilePatterns(ctx context.Context, patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		rx, err := regexp.Compile(p)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Str("pattern", p).Err(err).Msg("dropping malformed pattern")
			continue
		}
		compiled = append(compiled, rx)
	}
	return compiled
}

// 🔍 MatchesExclude reports whether a name matches any exclusion pattern or
// ignore-file glob. Exclusion wins over everything else.
func (s *Set) MatchesExclude(name string) bool {
	for _, rx := range s.exclude {
		if rx.MatchString(name) {
			return true
		}
	}
	for _, glob := range s.ignoreGlobs {
		if ok, err := doublestar.Match(glob, name); err == nil && ok {
			return true
		}
	}
	return false
}

// 🔍 MatchesInclude reports whether a name satisfies the inclusion whitelist.
// An empty inclusion set rejects everything: the fail-closed default.
func (s *Set) MatchesInclude(name string) bool {
	for _, rx := range s.include {
		if rx.MatchString(name) {
			return true
		}
	}
	return false
}

// 🔍 AllowsFile runs the full decision chain for a filename: exclusion, then
// inclusion, then the extension allow-list (exact filenames in the allow-list
// also pass, so Makefile-style entries work).
func (s *Set) AllowsFile(name string) bool {
	if s.MatchesExclude(name) {
		return false
	}
	if !s.MatchesInclude(name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	if s.extensions[ext] {
		return true
	}
	return s.extensions[strings.ToLower(name)]
}

// 🏷️ Classify resolves a filename to its category. Tests are recognized
// first, then resources, then everything else is a module. Pure function of
// the name: processing flags are applied by the caller.
func Classify(name string) Category {
	if IsTest(name) {
		return CategoryTest
	}
	if IsResource(name) {
		return CategoryResource
	}
	return CategoryModule
}

// 🧪 IsTest reports whether a filename follows a known test convention.
func IsTest(name string) bool {
	return testNamePattern.MatchString(name)
}

// 📄 IsResource reports whether a filename is a non-code project resource.
// Exact filenames are checked before extensions.
func IsResource(name string) bool {
	if resourceFilenames[name] {
		return true
	}
	return resourceExtensions[strings.ToLower(filepath.Ext(name))]
}
