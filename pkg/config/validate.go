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

package config

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔍 Normalize coerces a raw untyped configuration into a Config. Unknown or
// malformed values fall back to defaults with a recorded warning; in strict
// mode the first validation failure is returned as an error instead.
func Normalize(raw map[string]any, strict bool) (Config, []string, error) {
	cfg := Default()
	var warnings []string

	if raw == nil {
		warnings = append(warnings, "no configuration provided, using defaults")
		return cfg, warnings, nil
	}

	n := &normalizer{raw: raw, strict: strict}

	n.str(&cfg.InputPath, "input_path")
	n.str(&cfg.OutputBaseDir, "output_base_dir")
	n.str(&cfg.OutputSubdirName, "output_subdir_name")
	n.str(&cfg.OutputPrefix, "output_prefix")
	n.str(&cfg.TargetModel, "target_model")

	n.boolean(&cfg.ProcessModules, "process_modules")
	n.boolean(&cfg.ProcessTests, "process_tests")
	n.boolean(&cfg.ProcessResources, "process_resources")
	n.boolean(&cfg.CreateIndividualFiles, "create_individual_files")
	n.boolean(&cfg.CreateUnifiedFile, "create_unified_file")
	n.boolean(&cfg.RespectIgnoreFile, "respect_ignore_file")
	n.boolean(&cfg.Sanitize, "sanitize")
	n.boolean(&cfg.MaskPaths, "mask_paths")
	n.boolean(&cfg.Minify, "minify")
	n.boolean(&cfg.GenerateTree, "generate_tree")
	n.boolean(&cfg.ShowFunctions, "show_functions")
	n.boolean(&cfg.ShowClasses, "show_classes")
	n.boolean(&cfg.ShowMethods, "show_methods")
	n.boolean(&cfg.PrintTree, "print_tree")
	n.boolean(&cfg.SaveErrorLog, "save_error_log")

	n.list(&cfg.Extensions, "extensions")
	n.list(&cfg.IncludePatterns, "include_patterns")
	n.list(&cfg.ExcludePatterns, "exclude_patterns")

	if n.err != nil {
		return Config{}, n.warnings, n.err
	}

	exts, extWarnings, err := normalizeExtensions(cfg.Extensions, strict)
	if err != nil {
		return Config{}, append(n.warnings, extWarnings...), err
	}
	cfg.Extensions = exts

	warnings = append(n.warnings, extWarnings...)
	return cfg, warnings, nil
}

// normalizer walks the raw map field by field, collecting warnings as it
// coerces values. In strict mode the first failure is latched into err and
// later fields are still visited but no longer mutate the config.
type normalizer struct {
	raw      map[string]any
	strict   bool
	warnings []string
	err      error
}

func (n *normalizer) fail(field string, value any, want string) {
	msg := fmt.Sprintf("invalid field %q: expected %s, received %T", field, want, value)
	if n.strict {
		if n.err == nil {
			n.err = errors.New(msg)
		}
		return
	}
	n.warnings = append(n.warnings, msg+", using fallback")
}

func (n *normalizer) str(dst *string, field string) {
	value, ok := n.raw[field]
	if !ok || value == nil {
		return
	}
	s, ok := value.(string)
	if !ok {
		n.fail(field, value, "string")
		return
	}
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		*dst = trimmed
	}
}

func (n *normalizer) boolean(dst *bool, field string) {
	value, ok := n.raw[field]
	if !ok || value == nil {
		return
	}
	switch v := value.(type) {
	case bool:
		*dst = v
		return
	case int:
		if v == 0 || v == 1 {
			n.note(field, value)
			*dst = v == 1
			return
		}
	case float64:
		if v == 0 || v == 1 {
			n.note(field, value)
			*dst = v == 1
			return
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y", "on":
			n.note(field, value)
			*dst = true
			return
		case "false", "0", "no", "n", "off":
			n.note(field, value)
			*dst = false
			return
		}
	}
	n.fail(field, value, "bool")
}

func (n *normalizer) list(dst *[]string, field string) {
	value, ok := n.raw[field]
	if !ok || value == nil {
		return
	}
	switch v := value.(type) {
	case string:
		// Comma-separated lists come from CLI front-ends
		var items []string
		for _, item := range strings.Split(v, ",") {
			if s := strings.TrimSpace(item); s != "" {
				items = append(items, s)
			}
		}
		if items != nil {
			n.note(field, value)
			*dst = items
		}
		return
	case []string:
		// Empty lists fall back to the default, same as the []any shape.
		if items := trimList(v); len(items) > 0 {
			*dst = items
		}
		return
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				n.fail(fmt.Sprintf("%s[%d]", field, i), item, "string")
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
		return
	}
	n.fail(field, value, "list of strings")
}

func (n *normalizer) note(field string, value any) {
	if !n.strict {
		n.warnings = append(n.warnings, fmt.Sprintf("field %q coerced from %v", field, value))
	}
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalizeExtensions guarantees every extension carries a leading dot.
func normalizeExtensions(exts []string, strict bool) ([]string, []string, error) {
	var warnings []string
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		e := strings.TrimSpace(ext)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			if strict {
				return nil, warnings, errors.Errorf("invalid extension %q: must start with '.'", ext)
			}
			warnings = append(warnings, fmt.Sprintf("extension %q corrected to %q", ext, "."+e))
			e = "." + e
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		out = DefaultExtensions()
	}
	return out, warnings, nil
}
