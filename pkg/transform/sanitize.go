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
	"regexp"
	"strings"
)

const (
	redactedSensitive = "[[REDACTED_SENSITIVE]]"
	redactedSecret    = "[[REDACTED_SECRET]]"
)

// 🔒 Known sensitive shapes. Redaction replaces the matched span only, never
// the whole line, so surrounding code stays readable.
var (
	openAIKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9-]{32,}`)
	awsKeyPattern    = regexp.MustCompile(`AKIA[0-9A-Z]{16}`)
	ipv4Pattern      = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	emailPattern     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Generic credential assignments: key/secret/token/... = "value" with a
	// quoted value of at least 8 characters. Only the value is replaced.
	assignmentPattern = regexp.MustCompile(
		`(?i)(?:key|password|secret|token|auth|api|pwd)[-_]?(?:key|password|secret|token|auth|api|pwd)?\s*` +
			`[:=]\s*['"]([^'"]{8,})['"]`)

	sensitivePatterns = []*regexp.Regexp{
		openAIKeyPattern,
		awsKeyPattern,
		ipv4Pattern,
		emailPattern,
	}
)

// 🔒 Sanitizer redacts provider API-key shapes, credential assignments,
// IPv4 addresses, and email addresses from a line stream.
type Sanitizer struct{}

// 🏭 NewSanitizer returns a sanitizer stage.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// 🔒 Apply redacts sensitive spans in one line.
func (s *Sanitizer) Apply(line string) (string, bool) {
	if strings.TrimSpace(line) == "" {
		return line, true
	}

	for _, pattern := range sensitivePatterns {
		line = pattern.ReplaceAllString(line, redactedSensitive)
	}

	line = assignmentPattern.ReplaceAllStringFunc(line, func(match string) string {
		sub := assignmentPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		return strings.Replace(match, sub[1], redactedSecret, 1)
	})

	return line, true
}
