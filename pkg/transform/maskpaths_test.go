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
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathMaskerHomeDirectory(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	home = strings.ReplaceAll(home, `\`, "/")

	pm := NewPathMasker()
	got, keep := pm.Apply(`log file at ` + home + `/projects/app.log`)
	assert.True(t, keep)
	assert.Contains(t, got, homePlaceholder+"/projects/app.log")
	assert.NotContains(t, got, home)
}

func TestPathMaskerNormalizesSeparators(t *testing.T) {
	pm := NewPathMasker()
	got, keep := pm.Apply(`path = "C:\Temp\data.csv"`)
	assert.True(t, keep)
	assert.Equal(t, `path = "C:/Temp/data.csv"`, got)
}

func TestPathMaskerLeavesPlainTextAlone(t *testing.T) {
	pm := NewPathMasker()
	got, keep := pm.Apply("no paths in this line")
	assert.True(t, keep)
	assert.Equal(t, "no paths in this line", got)
}
