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

package pipeline

import "github.com/walteh/ctxrc/pkg/pool"

// 📦 Result is the immutable outcome of one pipeline run. Per-file errors
// live inside Stats and never flip OK to false on their own.
type Result struct {
	OK  bool
	Err string

	InputPath string
	OutputDir string
	DryRun    bool

	// Generated maps artifact role (modules/tests/resources/tree/errors/
	// full_context) to the path it was written to. On a dry run the paths
	// point into the staging area, which is gone by the time the caller
	// sees them; they document what would have been produced.
	Generated map[string]string

	Stats      pool.Stats
	SizeMetric int

	// ExistingFiles lists destination artifacts that blocked the run.
	ExistingFiles []string

	// Warnings carries configuration coercion notes from validation.
	Warnings []string

	// TreeLines holds the rendered project structure when the caller asked
	// for it to be displayed.
	TreeLines []string
}

func failed(msg string) *Result {
	return &Result{OK: false, Err: msg}
}
