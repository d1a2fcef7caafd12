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
	"os/user"
	"regexp"
	"strings"
	"sync"
)

const (
	homePlaceholder = "<USER_HOME>"
	userPlaceholder = "<USER>"
)

// userIdentity is resolved once per process; stream stages must not hit the
// OS per line.
var userIdentity = sync.OnceValue(func() (id struct {
	homePattern *regexp.Regexp
	namePattern *regexp.Regexp
}) {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		home = strings.ReplaceAll(home, `\`, "/")
		id.homePattern = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(home))
	}

	name := ""
	if u, err := user.Current(); err == nil {
		name = u.Username
		// Windows usernames arrive as DOMAIN\name.
		if i := strings.LastIndexByte(name, '\\'); i >= 0 {
			name = name[i+1:]
		}
	}
	if name == "" {
		name = os.Getenv("USER")
	}
	if name != "" {
		id.namePattern = regexp.MustCompile(`(/)` + regexp.QuoteMeta(name) + `(/)`)
	}
	return id
})

// 🕵️ PathMasker anonymizes the local environment: the home directory becomes
// <USER_HOME> and standalone username segments inside path-like strings
// become <USER>. Separators are normalized to / before matching.
type PathMasker struct{}

// 🏭 NewPathMasker returns a path-masking stage.
func NewPathMasker() *PathMasker {
	return &PathMasker{}
}

// 🕵️ Apply masks one line.
func (pm *PathMasker) Apply(line string) (string, bool) {
	line = strings.ReplaceAll(line, `\`, "/")

	id := userIdentity()
	if id.homePattern != nil {
		line = id.homePattern.ReplaceAllString(line, homePlaceholder)
	}
	if id.namePattern != nil {
		line = id.namePattern.ReplaceAllString(line, "${1}"+userPlaceholder+"${2}")
	}
	return line, true
}
