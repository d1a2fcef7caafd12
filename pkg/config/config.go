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
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔑 Default artifact naming
const (
	DefaultOutputSubdir = "transcript"
	DefaultOutputPrefix = "transcription"
)

// 📚 Config is the fully normalized pipeline configuration. Raw inbound
// configuration (CLI flags, config files, anything the front-ends hand us)
// goes through Normalize before it becomes one of these.
type Config struct {
	// IO paths
	InputPath        string `json:"input_path" yaml:"input_path"`
	OutputBaseDir    string `json:"output_base_dir" yaml:"output_base_dir"`
	OutputSubdirName string `json:"output_subdir_name" yaml:"output_subdir_name"`
	OutputPrefix     string `json:"output_prefix" yaml:"output_prefix"`

	// Content selection
	ProcessModules   bool `json:"process_modules" yaml:"process_modules"`
	ProcessTests     bool `json:"process_tests" yaml:"process_tests"`
	ProcessResources bool `json:"process_resources" yaml:"process_resources"`

	// Output format
	CreateIndividualFiles bool `json:"create_individual_files" yaml:"create_individual_files"`
	CreateUnifiedFile     bool `json:"create_unified_file" yaml:"create_unified_file"`

	// Filtering
	Extensions        []string `json:"extensions" yaml:"extensions"`
	IncludePatterns   []string `json:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns   []string `json:"exclude_patterns" yaml:"exclude_patterns"`
	RespectIgnoreFile bool     `json:"respect_ignore_file" yaml:"respect_ignore_file"`

	// Transforms
	Sanitize  bool `json:"sanitize" yaml:"sanitize"`
	MaskPaths bool `json:"mask_paths" yaml:"mask_paths"`
	Minify    bool `json:"minify" yaml:"minify"`

	// Tree generation
	GenerateTree  bool `json:"generate_tree" yaml:"generate_tree"`
	ShowFunctions bool `json:"show_functions" yaml:"show_functions"`
	ShowClasses   bool `json:"show_classes" yaml:"show_classes"`
	ShowMethods   bool `json:"show_methods" yaml:"show_methods"`
	PrintTree     bool `json:"print_tree" yaml:"print_tree"`

	// Diagnostics
	SaveErrorLog bool   `json:"save_error_log" yaml:"save_error_log"`
	TargetModel  string `json:"target_model" yaml:"target_model"`
}

// 🎯 Default returns the baseline configuration the validator falls back to.
func Default() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return Config{
		InputPath:        cwd,
		OutputBaseDir:    cwd,
		OutputSubdirName: DefaultOutputSubdir,
		OutputPrefix:     DefaultOutputPrefix,

		ProcessModules:   true,
		ProcessTests:     true,
		ProcessResources: true,

		CreateIndividualFiles: true,
		CreateUnifiedFile:     true,

		Extensions:      DefaultExtensions(),
		IncludePatterns: DefaultIncludePatterns(),
		ExcludePatterns: DefaultExcludePatterns(),

		GenerateTree: true,
		TargetModel:  "",
	}
}

// 🧩 DefaultExtensions is the default allow-list of source extensions.
func DefaultExtensions() []string {
	return []string{".go", ".py", ".js", ".ts"}
}

// 🧩 DefaultIncludePatterns matches everything by default; an explicitly
// empty include list rejects everything (fail-closed, enforced in pkg/filter).
func DefaultIncludePatterns() []string {
	return []string{".*"}
}

// 🧩 DefaultExcludePatterns covers common development noise.
func DefaultExcludePatterns() []string {
	return []string{
		`^(__pycache__|\.git|\.idea|\.vscode|node_modules|vendor)$`,
		`\.pyc$`,
		`^\.`,
	}
}

// 🎯 Load reads a config file, parses it with the matching parser, and
// normalizes the result (non-strict: malformed values fall back to defaults
// with warnings).
func Load(ctx context.Context, path string) (Config, []string, error) {
	raw, err := LoadRaw(ctx, path)
	if err != nil {
		return Config{}, nil, err
	}

	cfg, warnings, err := Normalize(raw, false)
	if err != nil {
		return Config{}, warnings, errors.Errorf("normalizing config: %w", err)
	}
	return cfg, warnings, nil
}

// 🎯 LoadRaw reads and parses a config file without normalizing it, for
// callers that layer their own overrides on top before validation.
func LoadRaw(ctx context.Context, path string) (map[string]any, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	raw, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	return raw, nil
}

// 📝 String returns a compact human-readable description of the config.
func (cfg Config) String() string {
	return fmt.Sprintf("%s -> %s/%s (prefix=%s)",
		cfg.InputPath, cfg.OutputBaseDir, cfg.OutputSubdirName, cfg.OutputPrefix)
}
