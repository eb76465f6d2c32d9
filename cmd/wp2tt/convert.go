// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/wp2tt/internal/cache"
	"github.com/pdiddy/wp2tt/internal/convert"
	"github.com/pdiddy/wp2tt/internal/input"
	"github.com/pdiddy/wp2tt/internal/logging"
)

// addMappingFlags registers the flags shared by convert and batch.
func addMappingFlags(fs *pflag.FlagSet) {
	fs.String("style-map", "", "style map file")
	fs.String("rules", "", "rule file (YAML)")
	fs.String("policy", "", "default policy for unmapped styles: passthrough or fallback")
	fs.String("fallback-paragraph", "", "paragraph style used for unmapped styles under the fallback policy")
	fs.String("fallback-character", "", "character style used for unmapped styles under the fallback policy")
	fs.StringSlice("ignore-style", nil, "source style treated as unstyled (repeatable)")
	fs.String("stop-at", "", "stop converting at the first paragraph starting with this text")
	fs.Bool("comments", false, "convert comments into footnotes")
	fs.String("encoding", "", "output encoding: UNICODE-MAC, UNICODE-WIN, ASCII-WIN, or ASCII-MAC")
	fs.String("rtl", "", "right-to-left feature set: auto, on, or off")
	fs.Bool("maqaf", false, "replace '=' with the Hebrew maqaf")
	fs.Bool("vav", false, "replace vav with holam by its precomposed form")
	fs.Bool("debug-utf8", false, "also write a UTF-8 copy of the output")
	fs.String("cache-dir", "", "directory of the conversion cache")
	fs.Bool("no-cache", false, "disable the conversion cache")
	fs.String("image", "", "container image converting legacy .doc/.rtf files")
	fs.String("runtime", "", "container runtime for legacy files: docker or podman")
}

// pipeline builds the converter for the loaded configuration. The returned
// cleanup closes the cache.
func (a *app) pipeline() (*convert.Pipeline, func(), error) {
	reg := input.DefaultRegistry(a.inputOptions(), a.cfg.Container)
	if !a.cfg.Cache.Enabled {
		return convert.NewPipeline(a.cfg, reg, nil), func() {}, nil
	}
	store, err := cache.NewStore(a.cfg.Cache.Dir)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logging.Warn("closing cache failed", "error", err)
		}
	}
	return convert.NewPipeline(a.cfg, reg, store), cleanup, nil
}

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert INPUT [INPUT...]",
		Short: "Convert documents into one tagged-text file",
		Long: `Convert reads each input, appends them in order into a single document,
resolves styles through the style map and rules, and writes InDesign
Tagged Text. The output defaults to the first input with a .txt extension.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			showStats, _ := cmd.Flags().GetBool("stats")

			p, cleanup, err := a.pipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := p.Convert(cmd.Context(), convert.Job{Inputs: args, Output: output})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if res.Cached {
				fmt.Fprintf(w, "cached:    %s\n", res.Output)
				return nil
			}
			fmt.Fprintf(w, "converted: %s\n", res.Output)
			if showStats {
				fmt.Fprintln(w)
				return res.Stats.Write(w)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file")
	cmd.Flags().Bool("stats", false, "print style and rule statistics")
	addMappingFlags(cmd.Flags())
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch INPUT...",
		Short: "Convert each document into its own tagged-text file",
		Long: `Batch converts every input separately, several at a time. Inputs whose
output is newer than the input are skipped unless --force is given.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out-dir")
			force, _ := cmd.Flags().GetBool("force")

			p, cleanup, err := a.pipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			opts := convert.BatchOptions{Workers: a.cfg.Batch.Workers, Force: force}
			result := convert.ConvertBatch(cmd.Context(), p, convert.BatchJobs(args, outDir), opts, cmd.OutOrStdout())
			if result.HasFailures() {
				return fmt.Errorf("%d of %d document(s) failed", result.Failed, result.Total())
			}
			return nil
		},
	}
	cmd.Flags().String("out-dir", "", "directory for outputs (default: next to each input)")
	cmd.Flags().Bool("force", false, "convert even when the output is up to date")
	cmd.Flags().Int("workers", 0, "number of concurrent conversions")
	addMappingFlags(cmd.Flags())
	return cmd
}
