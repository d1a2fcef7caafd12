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

// Package pipeline orchestrates a transcription run end to end:
// validate → collision check → staging → run (pool + tree in parallel) →
// assemble → deploy → cleanup. Nothing mutates the final destination until
// deploy, so a failure anywhere earlier leaves it untouched.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/ctxrc/pkg/cache"
	"github.com/walteh/ctxrc/pkg/config"
	"github.com/walteh/ctxrc/pkg/estimator"
	"github.com/walteh/ctxrc/pkg/filter"
	"github.com/walteh/ctxrc/pkg/log"
	"github.com/walteh/ctxrc/pkg/output"
	"github.com/walteh/ctxrc/pkg/pool"
	"github.com/walteh/ctxrc/pkg/transform"
	"github.com/walteh/ctxrc/pkg/tree"
	"golang.org/x/sync/errgroup"
)

// Category file headers. Written once at channel init; the unified artifact
// inherits them when category contents are concatenated.
const (
	modulesHeader   = "SCRIPTS/MODULES:"
	testsHeader     = "TESTS:"
	resourcesHeader = "RESOURCES (CONFIG/DATA/DOCS):"
)

// ⚙️ Options are the caller-level switches that live outside the
// configuration file.
type Options struct {
	Overwrite bool
	DryRun    bool
	Strict    bool
	Workers   int

	// CacheDir overrides the cache location. Empty selects the user cache
	// directory.
	CacheDir string

	// TreeSavePath overrides where the rendered tree is written.
	TreeSavePath string

	// Estimators overrides the size-metric registry. Nil selects a registry
	// with only the heuristic.
	Estimators *estimator.Registry

	// Console receives per-run and per-file progress lines. Nil keeps the
	// run silent on the console.
	Console *log.Logger
}

// 🏭 Run executes the whole pipeline over a raw configuration map (as
// produced by a config parser, with CLI overrides already applied). The
// returned Result is always non-nil; per-file errors are carried in
// Result.Stats and do not make the run fail.
func Run(ctx context.Context, raw map[string]any, opts Options) *Result {
	// Validating
	cfg, warnings, err := config.Normalize(raw, opts.Strict)
	if err != nil {
		return failed("invalid configuration: " + err.Error())
	}

	absInput, err := filepath.Abs(cfg.InputPath)
	if err != nil {
		return failed("resolving input path: " + err.Error())
	}
	info, err := os.Stat(absInput)
	if err != nil || !info.IsDir() {
		return failed(fmt.Sprintf("input path %q is not an existing directory", cfg.InputPath))
	}

	finalDir := filepath.Join(cfg.OutputBaseDir, cfg.OutputSubdirName)
	res := &Result{
		InputPath: absInput,
		OutputDir: finalDir,
		DryRun:    opts.DryRun,
		Generated: make(map[string]string),
		Warnings:  warnings,
	}

	artifacts := artifactSet(cfg)

	// CollisionCheck — nothing has been written yet.
	if !opts.Overwrite && !opts.DryRun {
		for _, name := range artifacts {
			p := filepath.Join(finalDir, name)
			if _, err := os.Stat(p); err == nil {
				res.ExistingFiles = append(res.ExistingFiles, p)
			}
		}
		if len(res.ExistingFiles) > 0 {
			res.Err = fmt.Sprintf("%d destination file(s) already exist; re-run with overwrite", len(res.ExistingFiles))
			return res
		}
	}

	// Staging
	st, err := newStagingArea(ctx, cfg, opts.DryRun)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	defer st.cleanup(ctx)

	if opts.Console != nil {
		opts.Console.StartRunOperation(ctx, log.RunOperation{
			InputPath:   absInput,
			Destination: finalDir,
			DryRun:      opts.DryRun,
		})
		defer opts.Console.EndRunOperation(ctx)
	}

	set := filter.Compile(ctx, cfg.IncludePatterns, cfg.ExcludePatterns, cfg.Extensions)
	if cfg.RespectIgnoreFile {
		set.LoadIgnoreFile(ctx, absInput)
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(base, "ctxrc")
		} else {
			cacheDir = filepath.Join(os.TempDir(), "ctxrc")
		}
	}
	store := cache.Open(ctx, cacheDir)
	defer store.Close()

	channels, err := initChannels(cfg, st)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	reg := opts.Estimators
	if reg == nil {
		reg = estimator.NewRegistry()
	}
	est := reg.ForModel(cfg.TargetModel)

	// Running — the pool and the tree collaborator share no mutable state.
	var (
		stats     pool.Stats
		treeLines []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = pool.Run(gctx, pool.Options{
			Root:        absInput,
			Set:         set,
			Cache:       store,
			Fingerprint: cfg.Fingerprint(),
			Channels:    channels,
			Transform:   transformOptions(cfg),
			Workers:     opts.Workers,
			Measure:     est.Measure,
			Report:      fileReporter(ctx, opts.Console),
		})
		return err
	})
	if cfg.GenerateTree {
		g.Go(func() error {
			savePath := opts.TreeSavePath
			if savePath == "" {
				if _, ok := artifacts[RoleTree]; ok {
					savePath = st.path(cfg.OutputPrefix, RoleTree)
				}
			}
			var symbols tree.SymbolExtractor = tree.NopExtractor{}
			if cfg.ShowFunctions || cfg.ShowClasses || cfg.ShowMethods {
				symbols = tree.RegexExtractor{}
			}
			var err error
			treeLines, err = tree.Generate(gctx, absInput, set, tree.Options{
				ShowFunctions: cfg.ShowFunctions,
				ShowClasses:   cfg.ShowClasses,
				ShowMethods:   cfg.ShowMethods,
				Symbols:       symbols,
				SavePath:      savePath,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		res.Err = err.Error()
		return res
	}
	res.Stats = stats
	if cfg.PrintTree {
		res.TreeLines = treeLines
	}

	if cfg.SaveErrorLog && len(stats.Errors) > 0 {
		if err := writeErrorReport(st.path(cfg.OutputPrefix, RoleErrors), stats.Errors); err != nil {
			res.Err = err.Error()
			return res
		}
	}

	// Assembling
	if cfg.CreateUnifiedFile {
		var categoryPaths []string
		for _, cat := range []filter.Category{filter.CategoryModule, filter.CategoryTest, filter.CategoryResource} {
			if ch, ok := channels[cat]; ok {
				categoryPaths = append(categoryPaths, ch.Path)
			}
		}
		content, err := assembleUnified(absInput, treeLines, categoryPaths, st.path(cfg.OutputPrefix, RoleUnified))
		if err != nil {
			res.Err = err.Error()
			return res
		}
		res.SizeMetric = est.Measure(content)
	}

	// Deploying — the only step that mutates the final destination.
	if !opts.DryRun {
		var moves []string
		if cfg.CreateUnifiedFile {
			moves = append(moves, artifactName(cfg.OutputPrefix, RoleUnified))
		}
		if cfg.SaveErrorLog && len(stats.Errors) > 0 {
			moves = append(moves, artifactName(cfg.OutputPrefix, RoleErrors))
		}
		if err := st.deploy(ctx, moves); err != nil {
			res.Err = err.Error()
			return res
		}
	}

	recordGenerated(res, cfg, st, artifacts, len(stats.Errors) > 0, opts.DryRun)

	zerolog.Ctx(ctx).Info().
		Int("processed", stats.Processed).
		Int("cached", stats.Cached).
		Int("skipped", stats.Skipped).
		Int("errors", len(stats.Errors)).
		Int("size_metric", res.SizeMetric).
		Bool("dry_run", opts.DryRun).
		Msg("pipeline complete")

	res.OK = true
	return res
}

// initChannels creates and initializes one channel per enabled category,
// writing each header line into the staging area.
func initChannels(cfg config.Config, st *stagingArea) (map[filter.Category]*output.Channel, error) {
	type spec struct {
		enabled  bool
		category filter.Category
		role     string
		header   string
	}
	specs := []spec{
		{cfg.ProcessModules, filter.CategoryModule, RoleModules, modulesHeader},
		{cfg.ProcessTests, filter.CategoryTest, RoleTests, testsHeader},
		{cfg.ProcessResources, filter.CategoryResource, RoleResources, resourcesHeader},
	}

	channels := make(map[filter.Category]*output.Channel)
	for _, s := range specs {
		if !s.enabled {
			continue
		}
		ch := output.NewChannel(s.category, st.path(cfg.OutputPrefix, s.role))
		if err := ch.Init(s.header); err != nil {
			return nil, err
		}
		channels[s.category] = ch
	}
	return channels, nil
}

// fileReporter adapts pool outcomes into console file-operation lines. A nil
// console yields a nil reporter, which the pool treats as no reporting.
func fileReporter(ctx context.Context, console *log.Logger) func(string, filter.Category, bool, bool) {
	if console == nil {
		return nil
	}
	return func(relPath string, category filter.Category, cached, failed bool) {
		status := "transcribed"
		switch {
		case failed:
			status = "failed"
		case cached:
			status = "cached"
		}
		console.LogFileOperation(ctx, log.FileOperation{
			Path:     relPath,
			Category: category.String(),
			Status:   status,
			IsCached: cached,
			IsError:  failed,
		})
	}
}

func transformOptions(cfg config.Config) transform.Options {
	return transform.Options{
		Minify:    cfg.Minify,
		Sanitize:  cfg.Sanitize,
		MaskPaths: cfg.MaskPaths,
	}
}

// recordGenerated fills the Result's artifact map. Paths point to the final
// destination for durable artifacts and to staging for dry runs.
func recordGenerated(res *Result, cfg config.Config, st *stagingArea, artifacts map[string]string, hasErrors, dryRun bool) {
	for role, name := range artifacts {
		if role == RoleErrors && !hasErrors {
			continue
		}
		dir := st.finalDir
		if dryRun {
			dir = st.dir
		}
		res.Generated[role] = filepath.Join(dir, name)
	}
}
