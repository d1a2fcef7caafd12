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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// 🔑 Fingerprint returns a deterministic hash over every configuration field
// that can change transformed output. Two runs with the same fingerprint and
// identical file state must produce byte-identical cached content, so any
// future transform toggle must be added here.
func (cfg Config) Fingerprint() string {
	// Fixed field order; never rely on map iteration.
	raw := fmt.Sprintf("sanitize=%t|mask_paths=%t|minify=%t", cfg.Sanitize, cfg.MaskPaths, cfg.Minify)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
