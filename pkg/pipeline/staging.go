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

package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/ctxrc/pkg/config"
	"github.com/walteh/ctxrc/pkg/pool"
	"gitlab.com/tozd/go/errors"
)

// Artifact roles. Each maps to one output filename.
const (
	RoleModules   = "modules"
	RoleTests     = "tests"
	RoleResources = "resources"
	RoleTree      = "tree"
	RoleErrors    = "errors"
	RoleUnified   = "full_context"
)

const lockFileName = ".ctxrc.lock"

// artifactName returns the on-disk filename for a role under the given
// prefix, e.g. "transcription_full_context.txt".
func artifactName(prefix, role string) string {
	return prefix + "_" + role + ".txt"
}

// artifactSet computes the exact set of role → filename pairs this
// configuration would produce in the final destination.
func artifactSet(cfg config.Config) map[string]string {
	set := make(map[string]string)
	if cfg.CreateIndividualFiles {
		if cfg.ProcessModules {
			set[RoleModules] = artifactName(cfg.OutputPrefix, RoleModules)
		}
		if cfg.ProcessTests {
			set[RoleTests] = artifactName(cfg.OutputPrefix, RoleTests)
		}
		if cfg.ProcessResources {
			set[RoleResources] = artifactName(cfg.OutputPrefix, RoleResources)
		}
		if cfg.GenerateTree {
			set[RoleTree] = artifactName(cfg.OutputPrefix, RoleTree)
		}
	}
	if cfg.SaveErrorLog {
		set[RoleErrors] = artifactName(cfg.OutputPrefix, RoleErrors)
	}
	if cfg.CreateUnifiedFile {
		set[RoleUnified] = artifactName(cfg.OutputPrefix, RoleUnified)
	}
	return set
}

// 🏗️ stagingArea is the transient working directory for one run. It is
// never shared across concurrent invocations, so its contents need no
// locking.
type stagingArea struct {
	dir       string
	finalDir  string
	ephemeral bool
}

// newStagingArea decides between an ephemeral directory and staging in
// place. Dry runs and unified-only runs never touch the final directory
// until deploy (never, for dry runs); otherwise category files are written
// to their durable locations directly.
func newStagingArea(ctx context.Context, cfg config.Config, dryRun bool) (*stagingArea, error) {
	finalDir := filepath.Join(cfg.OutputBaseDir, cfg.OutputSubdirName)
	ephemeral := dryRun || !cfg.CreateIndividualFiles

	if !dryRun {
		if err := os.MkdirAll(finalDir, 0755); err != nil {
			return nil, errors.Errorf("creating output directory: %w", err)
		}
	}

	dir := finalDir
	if ephemeral {
		dir = filepath.Join(os.TempDir(), "ctxrc-staging-"+uuid.NewString())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Errorf("creating staging directory: %w", err)
		}
		zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("allocated ephemeral staging")
	}

	return &stagingArea{dir: dir, finalDir: finalDir, ephemeral: ephemeral}, nil
}

// path returns the staging location for a role's artifact.
func (s *stagingArea) path(prefix, role string) string {
	return filepath.Join(s.dir, artifactName(prefix, role))
}

// cleanup removes the staging directory when ephemeral. Runs on every exit
// path, including failure.
func (s *stagingArea) cleanup(ctx context.Context) {
	if s == nil || !s.ephemeral {
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("dir", s.dir).Msg("failed to remove staging directory")
	}
}

// assembleUnified builds the consolidated artifact: a project header, the
// rendered structure (when present), then each category file's contents,
// separated by blank lines. Returns the finished text so the caller can
// measure it.
func assembleUnified(inputPath string, treeLines []string, categoryPaths []string, outPath string) (string, error) {
	var b strings.Builder

	b.WriteString("PROJECT CONTEXT: " + filepath.Base(inputPath) + "\n")
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	if len(treeLines) > 0 {
		b.WriteString("PROJECT STRUCTURE:\n")
		b.WriteString(strings.Repeat("-", 50) + "\n")
		for _, line := range treeLines {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	for _, p := range categoryPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", errors.Errorf("reading category file %s: %w", filepath.Base(p), err)
		}
		b.Write(data)
		b.WriteString("\n")
	}

	content := b.String()
	if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
		return "", errors.Errorf("writing unified artifact: %w", err)
	}
	return content, nil
}

// writeErrorReport renders the aggregate error list into the error artifact.
func writeErrorReport(path string, errs []pool.FileError) error {
	var b strings.Builder
	b.WriteString("TRANSCRIPTION ERRORS REPORT:\n")
	b.WriteString(strings.Repeat("=", 80) + "\n\n")
	for _, e := range errs {
		b.WriteString("FILE: " + e.RelPath + "\n")
		b.WriteString("ERROR: " + e.Message + "\n")
		b.WriteString(strings.Repeat("-", 80) + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Errorf("writing error report: %w", err)
	}
	return nil
}

// deploy moves the named staging files into the final directory under an
// advisory lock. This is the only step that mutates the validated
// destination beyond its own creation.
func (s *stagingArea) deploy(ctx context.Context, names []string) error {
	if len(names) == 0 || s.dir == s.finalDir {
		return nil
	}
	if err := os.MkdirAll(s.finalDir, 0755); err != nil {
		return errors.Errorf("creating output directory: %w", err)
	}

	lock := flock.New(filepath.Join(s.finalDir, lockFileName))
	lockCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil {
		return errors.Errorf("locking output directory: %w", err)
	}
	if !locked {
		return errors.Errorf("output directory is locked by another process")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to release output lock")
		}
	}()

	for _, name := range names {
		src := filepath.Join(s.dir, name)
		dst := filepath.Join(s.finalDir, name)
		if err := moveFile(src, dst); err != nil {
			return errors.Errorf("deploying %s: %w", name, err)
		}
	}
	return nil
}

// moveFile renames src onto dst, falling back to copy+remove when the
// staging directory sits on a different filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Errorf("copying content: %w", err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing destination: %w", err)
	}
	return os.Remove(src)
}
