// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wp2tt/internal/input"
	"github.com/pdiddy/wp2tt/internal/stylemap"
	"github.com/pdiddy/wp2tt/internal/tagged"
	"github.com/pdiddy/wp2tt/pkg/types"
)

func newStylesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "styles INPUT [INPUT...]",
		Short: "List source styles in use or write a style map skeleton",
		Long: `Styles reads the inputs and lists the paragraph and character styles
they use, with the destination each resolves to under the configured style
map. With --write it adds the styles not yet mapped to a style map file as
commented pass-through entries, keeping existing entries.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("write")

			reg := input.DefaultRegistry(a.inputOptions(), a.cfg.Container)
			doc, err := reg.OpenAll(cmd.Context(), args)
			if err != nil {
				return err
			}
			used := doc.StylesInUse()

			if target != "" {
				return writeSkeleton(target, used)
			}

			mc := a.cfg.Mapping
			m, err := stylemap.Load(mc.StyleMap, stylemap.Options{Policy: mc.Policy, Fallback: mc.Fallback, Ignore: mc.IgnoreStyles})
			if err != nil {
				return err
			}
			return listStyles(cmd.OutOrStdout(), m, used)
		},
	}
	cmd.Flags().String("write", "", "create or extend this style map file")
	cmd.Flags().String("style-map", "", "style map used to show destinations")
	return cmd
}

// writeSkeleton merges the styles in use into the style map at path.
func writeSkeleton(path string, used map[types.Realm][]string) error {
	var existing *stylemap.StyleMap
	if _, err := os.Stat(path); err == nil {
		existing, err = stylemap.Load(path, stylemap.Options{Policy: types.PolicyPassthrough})
		if err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := stylemap.WriteSkeleton(&buf, existing, used); err != nil {
		return err
	}
	return tagged.WriteFile(path, buf.Bytes())
}

func listStyles(w io.Writer, m *stylemap.StyleMap, used map[types.Realm][]string) error {
	for _, realm := range types.Realms {
		if _, err := fmt.Fprintf(w, "%s styles:\n", realm); err != nil {
			return err
		}
		for _, source := range used[realm] {
			label := source
			if label == "" {
				label = stylemap.UnstyledKey
			}
			d, mapped := m.Resolve(realm, source)
			dest := "(none)"
			if d != nil {
				dest = d.Path()
			}
			if !mapped {
				dest += " (unmapped)"
			}
			fmt.Fprintf(w, "  %-30s -> %s\n", label, dest)
		}
	}
	return nil
}
