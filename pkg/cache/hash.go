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

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// 🔑 CompositeHash fingerprints one unit of cacheable work: the file's
// identity (absolute path), its state (mtime + size), and the active
// transform configuration. Changing any component invalidates the entry;
// matching is always exact.
func CompositeHash(absPath string, mtime time.Time, size int64, configFingerprint string) string {
	raw := fmt.Sprintf("%s|%d|%d|%s", absPath, mtime.UnixNano(), size, configFingerprint)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
