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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/ctxrc/pkg/cache"
	"github.com/walteh/ctxrc/pkg/config"
	"github.com/walteh/ctxrc/pkg/log"
	"github.com/walteh/ctxrc/pkg/pipeline"
)

type rootFlags struct {
	configFile string
	input      string
	output     string
	prefix     string
	overwrite  bool
	dryRun     bool
	strict     bool
	workers    int
	debug      bool
}

// NewRootCommand builds the ctxrc CLI.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "ctxrc",
		Short:         "Transcribe a source tree into consolidated LLM context files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "path to a config file (yaml/json/hcl)")
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "input directory to transcribe")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output base directory")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "output filename prefix")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "replace existing output files")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report what would be generated without writing to the destination")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat configuration problems as fatal instead of falling back to defaults")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "number of concurrent workers (0 = auto)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newPurgeCacheCommand(flags))
	return cmd
}

func setupContext(cmd *cobra.Command, debug bool) (*log.Logger, zerolog.Logger) {
	// Local development overrides, ignored when absent.
	_ = godotenv.Load()

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	console := log.New(cmd.OutOrStdout(), level)
	zlog := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return console, zlog
}

func runRoot(cmd *cobra.Command, flags *rootFlags) error {
	console, zlog := setupContext(cmd, flags.debug)
	ctx := zlog.WithContext(cmd.Context())
	ctx = log.NewContext(ctx, console)

	raw := map[string]any{}
	if flags.configFile != "" {
		loaded, err := config.LoadRaw(ctx, flags.configFile)
		if err != nil {
			console.Errorf("loading config: %v", err)
			return err
		}
		raw = loaded
	}
	if flags.input != "" {
		raw["input_path"] = flags.input
	}
	if flags.output != "" {
		raw["output_base_dir"] = flags.output
	}
	if flags.prefix != "" {
		raw["output_prefix"] = flags.prefix
	}

	console.Header("transcribing source tree")

	res := pipeline.Run(ctx, raw, pipeline.Options{
		Overwrite: flags.overwrite,
		DryRun:    flags.dryRun,
		Strict:    flags.strict,
		Workers:   flags.workers,
		Console:   console,
	})

	console.LogNewline()
	renderResult(console, res)
	if !res.OK {
		return fmt.Errorf("%s", res.Err)
	}
	return nil
}

// renderResult prints the run outcome through the console logger.
func renderResult(console *log.Logger, res *pipeline.Result) {
	for _, w := range res.Warnings {
		console.Warning(w)
	}

	if !res.OK {
		console.Error(res.Err)
		for _, p := range res.ExistingFiles {
			console.Infof("exists: %s", p)
		}
		return
	}

	if len(res.TreeLines) > 0 {
		fmt.Println(strings.Join(res.TreeLines, "\n"))
	}

	console.Infof("processed %d file(s), %d from cache, %d skipped",
		res.Stats.Processed, res.Stats.Cached, res.Stats.Skipped)
	if res.SizeMetric > 0 {
		console.Infof("unified context size: ~%d tokens", res.SizeMetric)
	}
	for role, path := range res.Generated {
		console.Infof("%s: %s", role, path)
	}
	if n := len(res.Stats.Errors); n > 0 {
		console.Warningf("%d file(s) failed; see the error report", n)
	}

	if res.DryRun {
		console.Success("dry run complete; destination untouched")
	} else {
		console.Success("transcription complete")
	}
}

func newPurgeCacheCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Delete every entry in the transcription cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			console, zlog := setupContext(cmd, flags.debug)
			ctx := zlog.WithContext(cmd.Context())

			dir, err := os.UserCacheDir()
			if err != nil {
				dir = os.TempDir()
			}
			store := cache.Open(ctx, filepath.Join(dir, "ctxrc"))
			defer store.Close()

			if !store.Enabled() {
				console.Warning("cache is unavailable; nothing to purge")
				return nil
			}
			if err := store.PurgeAll(ctx); err != nil {
				console.Errorf("purging cache: %v", err)
				return err
			}
			console.Success("cache purged")
			return nil
		},
	}
}
