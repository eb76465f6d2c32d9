// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wp2tt/internal/cache"
	"github.com/pdiddy/wp2tt/pkg/types"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversion runs",
		Long: `History lists conversions recorded in the cache database, most recent
first.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := cache.NewStore(a.cfg.Cache.Dir)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			return formatHistory(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of runs to show (0 for all)")
	cmd.Flags().Bool("json", false, "output runs as JSON")
	cmd.Flags().String("cache-dir", "", "directory of the conversion cache")
	return cmd
}

func formatHistory(w io.Writer, runs []types.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	fmt.Fprintf(w, "%-20s  %-9s  %6s  %8s  %s\n", "Started", "Status", "Paras", "Took", "Inputs -> Output")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range runs {
		fmt.Fprintf(w, "%-20s  %-9s  %6d  %8s  %s -> %s\n",
			r.Started.Local().Format("2006-01-02 15:04:05"),
			r.Status, r.Paragraphs, r.Duration().Round(time.Millisecond),
			strings.Join(r.Inputs, ", "), r.Output)
		if r.Error != "" {
			fmt.Fprintf(w, "%-20s  %s\n", "", r.Error)
		}
	}
	return nil
}
