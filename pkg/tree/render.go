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

// render emits one line per node, directories first, each group sorted by
// name. The last entry at each depth gets the corner connector.
func render(n *Node, out *[]string, indent string, opts Options) {
	names := sortedNames(n)

	dirs := names[:0:0]
	files := make([]string, 0, len(names))
	for _, name := range names {
		if n.children[name].dir {
			dirs = append(dirs, name)
		} else {
			files = append(files, name)
		}
	}
	ordered := append(dirs, files...)

	for i, name := range ordered {
		child := n.children[name]
		last := i == len(ordered)-1

		connector := "├── "
		childIndent := indent + "│   "
		if last {
			connector = "└── "
			childIndent = indent + "    "
		}

		if child.dir {
			*out = append(*out, indent+connector+name+"/")
			render(child, out, childIndent, opts)
			continue
		}

		*out = append(*out, indent+connector+name)
		renderSymbols(child, out, childIndent, opts)
	}
}

// renderSymbols lists extracted declarations beneath a file leaf when any
// symbol display option is enabled.
func renderSymbols(file *Node, out *[]string, indent string, opts Options) {
	if !opts.ShowFunctions && !opts.ShowClasses && !opts.ShowMethods {
		return
	}
	extractor := opts.Symbols
	if extractor == nil {
		return
	}
	symbols, err := extractor.Extract(file.path)
	if err != nil {
		return
	}
	for _, sym := range symbols {
		switch sym.Kind {
		case SymbolFunction:
			if !opts.ShowFunctions {
				continue
			}
		case SymbolClass:
			if !opts.ShowClasses {
				continue
			}
		case SymbolMethod:
			if !opts.ShowMethods {
				continue
			}
		}
		*out = append(*out, indent+sym.Label())
	}
}
