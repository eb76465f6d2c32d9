// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wp2tt CLI, which converts word
// processor documents into InDesign Tagged Text.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/logging"
	"github.com/pdiddy/wp2tt/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries state shared by the subcommands of one invocation.
type app struct {
	v   *viper.Viper
	cfg types.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "wp2tt",
		Short: "Convert word processor documents to InDesign Tagged Text",
		Long: `wp2tt reads .docx, .odt/.fodt, Markdown and (through a container
image) legacy .doc/.rtf files, maps their paragraph and character styles
through a style map and contextual rules, and writes InDesign Tagged Text.

Settings come from wp2tt.yaml, WP2TT_* environment variables and flags,
in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(cmd); err != nil {
				return err
			}
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				logging.Warn("reading .env failed", "error", err)
			}
			return a.loadConfig(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &wperrors.ConfigError{Field: "flags", Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: ./wp2tt.yaml or ~/.config/wp2tt/wp2tt.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, or error")
	pf.String("log-format", "text", "log format: text or json")

	root.AddCommand(
		newConvertCmd(a),
		newBatchCmd(a),
		newStylesCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return root
}

func setupLogging(cmd *cobra.Command) error {
	levelName, _ := cmd.Flags().GetString("log-level")
	formatName, _ := cmd.Flags().GetString("log-format")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return &wperrors.ConfigError{Field: "log-level", Message: err.Error()}
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return &wperrors.ConfigError{Field: "log-format", Message: err.Error()}
	}
	logging.InitLogger(os.Stderr, level, format)
	return nil
}

// usageArgs wraps a cobra argument validator so its failures map to the
// usage exit code.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &wperrors.ConfigError{Field: "arguments", Message: err.Error()}
		}
		return nil
	}
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wp2tt: %v\n", err)
		return wperrors.ExitCode(err)
	}
	return wperrors.ExitOK
}

func main() {
	os.Exit(run(os.Args[1:]))
}
