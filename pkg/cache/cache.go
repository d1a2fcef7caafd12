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

// Package cache persists transformed file content keyed by a composite hash
// of file identity, file state, and the active transform configuration. A
// hit is only valid on an exact key match. The store is fail-safe: if the
// backing database cannot be opened the cache disables itself and the
// pipeline runs without it, only slower.
package cache

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	dbFileName = "cache.db"

	// hotEntries bounds the in-process LRU front. Purely an accelerator for
	// repeated lookups within a process; the durable store has no cap.
	hotEntries = 4096
)

// 📦 Entry is one cached transformation result.
type Entry struct {
	Content    string
	SizeMetric int
}

// 💾 Store is the persistent content-addressed cache. All database access is
// serialized behind one mutex: the embedded store does not guarantee
// concurrent-writer safety, and store operations are cheap next to file
// transforms.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	hot     *lru.Cache[string, Entry]
	enabled bool
}

// 🏭 Open initializes the cache database under dir (created if missing).
// Open never fails the caller: on any initialization error it returns a
// disabled store whose Lookup always misses and whose Store is a no-op.
func Open(ctx context.Context, dir string) *Store {
	logger := zerolog.Ctx(ctx)

	hot, err := lru.New[string, Entry](hotEntries)
	if err != nil {
		// Only reachable with a non-positive size; keep the store usable.
		hot = nil
	}

	s := &Store{hot: hot}

	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("cache directory unavailable, caching disabled")
		return s
	}

	path := filepath.Join(dir, dbFileName)
	db, err := openDatabase(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("cache store unavailable, caching disabled")
		return s
	}

	s.db = db
	s.enabled = true
	logger.Debug().Str("path", path).Msg("cache store opened")
	return s
}

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Errorf("opening database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of
	// failing outright.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Errorf("setting %s: %w", pragma, err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS file_cache (
		composite_hash TEXT PRIMARY KEY,
		source_path    TEXT,
		content        TEXT,
		size_metric    INTEGER,
		last_access    REAL,
		created_at     REAL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Errorf("initializing schema: %w", err)
	}
	return db, nil
}

// 🔍 Lookup returns the cached entry for a composite hash. A miss is an
// expected outcome, not an error; store faults are logged and reported as
// misses.
func (s *Store) Lookup(ctx context.Context, compositeHash string) (Entry, bool) {
	if !s.enabled {
		return Entry{}, false
	}
	if s.hot != nil {
		if entry, ok := s.hot.Get(compositeHash); ok {
			return entry, true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var entry Entry
	row := s.db.QueryRow(
		"SELECT content, size_metric FROM file_cache WHERE composite_hash = ?", compositeHash)
	if err := row.Scan(&entry.Content, &entry.SizeMetric); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("hash", shortHash(compositeHash)).Msg("cache read error")
		}
		return Entry{}, false
	}

	if s.hot != nil {
		s.hot.Add(compositeHash, entry)
	}
	return entry, true
}

// 📝 Store upserts a cache entry. Failures are logged, never surfaced: a
// cache write must not block or fail the file it belongs to.
func (s *Store) Store(ctx context.Context, compositeHash, sourcePath string, entry Entry) {
	if !s.enabled {
		return
	}
	if s.hot != nil {
		s.hot.Add(compositeHash, entry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := float64(time.Now().UnixNano()) / float64(time.Second)
	_, err := s.db.Exec(`INSERT OR REPLACE INTO file_cache
		(composite_hash, source_path, content, size_metric, last_access, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		compositeHash, sourcePath, entry.Content, entry.SizeMetric, now, now)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("source", filepath.Base(sourcePath)).Msg("cache write error")
	}
}

// 🧹 PurgeAll deletes every row and reclaims storage. Maintenance operation,
// never part of the hot path.
func (s *Store) PurgeAll(ctx context.Context) error {
	if s.hot != nil {
		s.hot.Purge()
	}
	if !s.enabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM file_cache"); err != nil {
		return errors.Errorf("purging cache: %w", err)
	}
	// VACUUM must run outside a transaction.
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return errors.Errorf("reclaiming cache storage: %w", err)
	}
	zerolog.Ctx(ctx).Info().Msg("cache purged")
	return nil
}

// 🚪 Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Enabled reports whether the durable store survived initialization.
func (s *Store) Enabled() bool {
	return s.enabled
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
