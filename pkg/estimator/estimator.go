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

// Package estimator computes the size metric of generated artifacts (a
// token-count estimate). Estimators are selected at construction time; the
// heuristic is always available, and exact tokenizers plug in as external
// callbacks rather than runtime capability probes.
package estimator

import "strings"

// charsPerToken is the industry-standard density for English text and code.
const charsPerToken = 4

// 📏 Estimator measures text in abstract size units.
type Estimator interface {
	Measure(text string) int
}

// 📏 Heuristic estimates by character density. Always available; the
// fallback for every model without an exact proxy.
type Heuristic struct{}

func (Heuristic) Measure(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// 📏 ExactProxy delegates to an external tokenizer callback (a provider SDK
// or local tokenizer supplied by the caller). A nil or failing callback
// falls back to the heuristic.
type ExactProxy struct {
	Fn func(text string) (int, error)
}

func (p ExactProxy) Measure(text string) int {
	if p.Fn != nil {
		if n, err := p.Fn(text); err == nil {
			return n
		}
	}
	return Heuristic{}.Measure(text)
}

// 🗺️ Registry maps target-model name prefixes to estimators.
type Registry struct {
	byPrefix map[string]Estimator
	fallback Estimator
}

// 🏭 NewRegistry builds a registry with the heuristic as fallback.
func NewRegistry() *Registry {
	return &Registry{
		byPrefix: make(map[string]Estimator),
		fallback: Heuristic{},
	}
}

// 📝 RegisterPrefix binds an estimator to a model-name prefix.
func (r *Registry) RegisterPrefix(prefix string, e Estimator) {
	r.byPrefix[strings.ToLower(prefix)] = e
}

// 🎯 ForModel selects the estimator for a target model name. Unknown or
// empty names get the heuristic.
func (r *Registry) ForModel(model string) Estimator {
	lower := strings.ToLower(model)
	for prefix, e := range r.byPrefix {
		if strings.Contains(lower, prefix) {
			return e
		}
	}
	return r.fallback
}
