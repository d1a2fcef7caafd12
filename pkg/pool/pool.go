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

// Package pool coordinates file transcription: it consumes scanner output,
// answers cache lookups on the coordinating flow, and dispatches misses to
// a bounded set of workers. Cache population happens back on the
// coordinating side so a cache write failure never fails a file.
package pool

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/ctxrc/pkg/cache"
	"github.com/walteh/ctxrc/pkg/filter"
	"github.com/walteh/ctxrc/pkg/output"
	"github.com/walteh/ctxrc/pkg/scanner"
	"github.com/walteh/ctxrc/pkg/transform"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrency when the caller does not choose.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

// FileError records a per-file failure. Failures never abort the run.
type FileError struct {
	RelPath string
	Message string
}

// 📊 Stats aggregates the run's counters.
type Stats struct {
	Processed        int
	Skipped          int
	Cached           int
	ModulesWritten   int
	TestsWritten     int
	ResourcesWritten int
	Errors           []FileError
}

// ⚙️ Options wires the pool to its collaborators.
type Options struct {
	Root        string
	Set         *filter.Set
	Cache       *cache.Store
	Fingerprint string
	Channels    map[filter.Category]*output.Channel
	Transform   transform.Options
	Workers     int

	// Measure computes the size metric stored alongside cached content.
	// Nil falls back to the byte length.
	Measure func(text string) int

	// Report is invoked once per file outcome (transcribed, cache-served,
	// or failed) for console progress. Nil disables reporting.
	Report func(relPath string, category filter.Category, cached, failed bool)
}

// outcome travels from a worker back to the coordinating flow.
type outcome struct {
	hash     string
	category filter.Category
	relPath  string
	content  string
	err      error
}

// 🏭 Run drains the scanner and transcribes every processable candidate into
// its category channel. Cancellation is cooperative: once the context is
// observed done no new work is dispatched, but in-flight workers finish.
func Run(ctx context.Context, opts Options) (Stats, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers()
	}

	var (
		mu    sync.Mutex
		stats Stats
	)

	report := opts.Report
	if report == nil {
		report = func(string, filter.Category, bool, bool) {}
	}
	measure := opts.Measure
	if measure == nil {
		measure = func(text string) int { return len(text) }
	}

	results := make(chan outcome, workers)
	var collectDone sync.WaitGroup
	collectDone.Add(1)
	go func() {
		defer collectDone.Done()
		for res := range results {
			mu.Lock()
			if res.err != nil {
				stats.Errors = append(stats.Errors, FileError{RelPath: res.relPath, Message: res.err.Error()})
				mu.Unlock()
				report(res.relPath, res.category, false, true)
				continue
			}
			stats.Processed++
			switch res.category {
			case filter.CategoryTest:
				stats.TestsWritten++
			case filter.CategoryResource:
				stats.ResourcesWritten++
			default:
				stats.ModulesWritten++
			}
			mu.Unlock()
			report(res.relPath, res.category, false, false)
			opts.Cache.Store(ctx, res.hash, res.relPath, cache.Entry{
				Content:    res.content,
				SizeMetric: measure(res.content),
			})
		}
	}()

	var g errgroup.Group
	g.SetLimit(workers)

	scanErr := scanner.Scan(ctx, opts.Root, opts.Set, func(entry scanner.Entry) bool {
		if ctx.Err() != nil {
			return false
		}
		if entry.Status == scanner.StatusSkipped {
			mu.Lock()
			stats.Skipped++
			mu.Unlock()
			return true
		}

		cand := entry.Candidate
		category := filter.Classify(cand.FileName)
		channel, ok := opts.Channels[category]
		if !ok {
			mu.Lock()
			stats.Skipped++
			mu.Unlock()
			return true
		}

		info, err := os.Stat(cand.AbsolutePath)
		if err != nil {
			mu.Lock()
			stats.Errors = append(stats.Errors, FileError{RelPath: cand.RelPath, Message: err.Error()})
			mu.Unlock()
			report(cand.RelPath, category, false, true)
			return true
		}
		hash := cache.CompositeHash(cand.AbsolutePath, info.ModTime(), info.Size(), opts.Fingerprint)

		if cached, ok := opts.Cache.Lookup(ctx, hash); ok {
			if err := channel.AppendContent(cand.RelPath, cached.Content); err != nil {
				mu.Lock()
				stats.Errors = append(stats.Errors, FileError{RelPath: cand.RelPath, Message: err.Error()})
				mu.Unlock()
				report(cand.RelPath, category, true, true)
				return true
			}
			mu.Lock()
			stats.Processed++
			stats.Cached++
			switch category {
			case filter.CategoryTest:
				stats.TestsWritten++
			case filter.CategoryResource:
				stats.ResourcesWritten++
			default:
				stats.ModulesWritten++
			}
			mu.Unlock()
			report(cand.RelPath, category, true, false)
			return true
		}

		g.Go(func() error {
			res := transcribe(ctx, cand, category, channel, opts.Transform)
			res.hash = hash
			results <- res
			return nil
		})
		return true
	})

	_ = g.Wait()
	close(results)
	collectDone.Wait()

	if scanErr != nil && ctx.Err() == nil {
		return stats, errors.Errorf("scanning input tree: %w", scanErr)
	}

	zerolog.Ctx(ctx).Debug().
		Int("processed", stats.Processed).
		Int("skipped", stats.Skipped).
		Int("cached", stats.Cached).
		Int("errors", len(stats.Errors)).
		Msg("worker pool finished")

	return stats, nil
}

// transcribe reads, transforms, and appends one file. The channel lock is
// taken only inside Append, never across the transform stages.
func transcribe(ctx context.Context, cand scanner.Candidate, category filter.Category, channel *output.Channel, topts transform.Options) outcome {
	res := outcome{category: category, relPath: cand.RelPath}

	f, err := os.Open(cand.AbsolutePath)
	if err != nil {
		res.err = errors.Errorf("opening file: %w", err)
		return res
	}
	defer f.Close()

	reader := transform.NewLineReader(f)
	stages := transform.Chain(cand.Ext, topts)

	// The channel pulls transformed lines one at a time; we tee each line
	// into the builder so the cache can be populated afterwards. Every line
	// is recorded with a trailing newline so blank lines at either edge of
	// the file survive a cache round-trip byte for byte.
	var builder strings.Builder
	next := func() (string, bool) {
		for {
			line, ok := reader.Next()
			if !ok {
				return "", false
			}
			line, keep := transform.ApplyAll(stages, line)
			if !keep {
				continue
			}
			builder.WriteString(line)
			builder.WriteByte('\n')
			return line, true
		}
	}

	if err := channel.Append(cand.RelPath, next); err != nil {
		res.err = errors.Errorf("appending to %s channel: %w", category, err)
		return res
	}
	if err := reader.Err(); err != nil {
		res.err = errors.Errorf("reading file: %w", err)
		return res
	}
	res.content = builder.String()

	zerolog.Ctx(ctx).Trace().Str("path", cand.RelPath).Str("category", category.String()).Msg("transcribed")
	return res
}
