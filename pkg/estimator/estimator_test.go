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

package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"
)

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "short_rounds_up", text: "abc", want: 1},
		{name: "exact_multiple", text: "abcdefgh", want: 2},
		{name: "one_over", text: "abcdefghi", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Heuristic{}.Measure(tt.text))
		})
	}
}

func TestExactProxy(t *testing.T) {
	t.Run("delegates_to_callback", func(t *testing.T) {
		p := ExactProxy{Fn: func(text string) (int, error) { return 42, nil }}
		assert.Equal(t, 42, p.Measure("anything"))
	})

	t.Run("failing_callback_falls_back_to_heuristic", func(t *testing.T) {
		p := ExactProxy{Fn: func(text string) (int, error) { return 0, errors.New("tokenizer offline") }}
		assert.Equal(t, Heuristic{}.Measure("abcdefgh"), p.Measure("abcdefgh"))
	})

	t.Run("nil_callback_falls_back_to_heuristic", func(t *testing.T) {
		p := ExactProxy{}
		assert.Equal(t, Heuristic{}.Measure("abc"), p.Measure("abc"))
	})
}

func TestRegistry(t *testing.T) {
	exact := ExactProxy{Fn: func(string) (int, error) { return 7, nil }}

	r := NewRegistry()
	r.RegisterPrefix("gpt", exact)

	t.Run("matching_model_gets_registered_estimator", func(t *testing.T) {
		assert.Equal(t, 7, r.ForModel("GPT-4o").Measure("any text at all"))
	})

	t.Run("unknown_model_gets_heuristic", func(t *testing.T) {
		assert.IsType(t, Heuristic{}, r.ForModel("some-other-model"))
	})

	t.Run("empty_model_gets_heuristic", func(t *testing.T) {
		assert.IsType(t, Heuristic{}, r.ForModel(""))
	})
}
