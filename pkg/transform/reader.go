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
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// maxChunkSize bounds how much of a single line is held in memory at once.
// A line longer than this (minified bundles, embedded blobs) is emitted in
// chunks instead of failing the file.
const maxChunkSize = 4 * 1024 * 1024

// 📖 LineReader yields lines from a byte stream without ever failing on
// undecodable input: invalid byte sequences are replaced with U+FFFD so
// binary or mis-encoded files flow through the pipeline instead of
// aborting it. Memory stays bounded regardless of line length.
type LineReader struct {
	br      *bufio.Reader
	pending []byte
	err     error
	done    bool
}

// 🏭 NewLineReader wraps r in a line source.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// ➡️ Next returns the next line without its terminator. ok is false at end
// of input or on a read error (check Err to distinguish). Oversized lines
// arrive as multiple chunks of at most maxChunkSize bytes.
func (lr *LineReader) Next() (string, bool) {
	if lr.done && len(lr.pending) == 0 {
		return "", false
	}

	buf := lr.pending
	lr.pending = nil
	for !lr.done {
		frag, err := lr.br.ReadSlice('\n')
		buf = append(buf, frag...)
		switch err {
		case nil:
			return lr.line(buf[:len(buf)-1]), true
		case bufio.ErrBufferFull:
			if len(buf) >= maxChunkSize {
				return lr.chunk(buf), true
			}
		case io.EOF:
			lr.done = true
		default:
			lr.done = true
			lr.err = err
		}
	}
	if len(buf) == 0 {
		return "", false
	}
	return lr.line(buf), true
}

// line strips an optional carriage return and sanitizes the bytes.
func (lr *LineReader) line(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return sanitizeUTF8(b)
}

// chunk emits an oversized-line fragment, holding back an incomplete
// trailing rune so a multi-byte character is never split across chunks.
func (lr *LineReader) chunk(b []byte) string {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				lr.pending = append(lr.pending, b[i:]...)
				b = b[:i]
			}
			break
		}
	}
	return sanitizeUTF8(b)
}

func sanitizeUTF8(b []byte) string {
	s := string(b)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	return s
}

// ❗ Err reports the underlying read error, if any.
func (lr *LineReader) Err() error {
	return lr.err
}
