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

package tree

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// SymbolKind distinguishes the declaration kinds the tree can display.
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolClass
	SymbolMethod
)

// Symbol is a declaration found in a source file.
type Symbol struct {
	Kind SymbolKind
	Name string
}

// Label formats the symbol for a tree line.
func (s Symbol) Label() string {
	switch s.Kind {
	case SymbolClass:
		return "[class] " + s.Name
	case SymbolMethod:
		return "[method] " + s.Name
	default:
		return "[func] " + s.Name
	}
}

// 🔍 SymbolExtractor pulls top-level declarations out of a source file for
// display beneath its tree entry.
type SymbolExtractor interface {
	Extract(path string) ([]Symbol, error)
}

// NopExtractor never reports symbols.
type NopExtractor struct{}

func (NopExtractor) Extract(string) ([]Symbol, error) { return nil, nil }

var (
	pyDefPattern    = regexp.MustCompile(`^(\s*)def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	pyClassPattern  = regexp.MustCompile(`^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	goFuncPattern   = regexp.MustCompile(`^func\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	goMethodPattern = regexp.MustCompile(`^func\s+\([^)]+\)\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	goTypePattern   = regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+struct\b`)
	jsFuncPattern   = regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	jsClassPattern  = regexp.MustCompile(`^\s*(?:export\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
)

// RegexExtractor finds declarations with per-language line patterns. It is
// intentionally shallow: the tree annotates structure, it does not parse.
type RegexExtractor struct{}

func (RegexExtractor) Extract(path string) ([]Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	var symbols []Symbol

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch ext {
		case ".py":
			if m := pyClassPattern.FindStringSubmatch(line); m != nil {
				symbols = append(symbols, Symbol{Kind: SymbolClass, Name: m[1]})
			} else if m := pyDefPattern.FindStringSubmatch(line); m != nil {
				kind := SymbolFunction
				if len(m[1]) > 0 {
					kind = SymbolMethod
				}
				symbols = append(symbols, Symbol{Kind: kind, Name: m[2]})
			}
		case ".go":
			if m := goMethodPattern.FindStringSubmatch(line); m != nil {
				symbols = append(symbols, Symbol{Kind: SymbolMethod, Name: m[1]})
			} else if m := goFuncPattern.FindStringSubmatch(line); m != nil {
				symbols = append(symbols, Symbol{Kind: SymbolFunction, Name: m[1]})
			} else if m := goTypePattern.FindStringSubmatch(line); m != nil {
				symbols = append(symbols, Symbol{Kind: SymbolClass, Name: m[1]})
			}
		case ".js", ".ts", ".jsx", ".tsx":
			if m := jsClassPattern.FindStringSubmatch(line); m != nil {
				symbols = append(symbols, Symbol{Kind: SymbolClass, Name: m[1]})
			} else if m := jsFuncPattern.FindStringSubmatch(line); m != nil {
				symbols = append(symbols, Symbol{Kind: SymbolFunction, Name: m[1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return symbols, err
	}
	return symbols, nil
}
