// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/input"
	"github.com/pdiddy/wp2tt/internal/logging"
	"github.com/pdiddy/wp2tt/pkg/types"
)

// flagKeys binds command flags to configuration keys. A flag only
// overrides the key when the running command defines it.
var flagKeys = map[string]string{
	"style-map":          "mapping.style_map",
	"rules":              "mapping.rules",
	"policy":             "mapping.policy",
	"fallback-paragraph": "mapping.fallback.paragraph",
	"fallback-character": "mapping.fallback.character",
	"ignore-style":       "mapping.ignore_styles",
	"stop-at":            "mapping.stop_marker",
	"comments":           "mapping.comments",
	"encoding":           "output.encoding",
	"rtl":                "output.rtl",
	"maqaf":              "output.maqaf",
	"vav":                "output.vav",
	"debug-utf8":         "output.debug_utf8",
	"cache-dir":          "cache.dir",
	"workers":            "batch.workers",
	"image":              "container.image",
	"runtime":            "container.runtime",
}

// setDefaults registers every configuration key with its default, which
// also lets AutomaticEnv see keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("mapping.style_map", d.Mapping.StyleMap)
	v.SetDefault("mapping.rules", d.Mapping.Rules)
	v.SetDefault("mapping.policy", string(d.Mapping.Policy))
	v.SetDefault("mapping.fallback.paragraph", d.Mapping.Fallback.Paragraph)
	v.SetDefault("mapping.fallback.character", d.Mapping.Fallback.Character)
	v.SetDefault("mapping.ignore_styles", d.Mapping.IgnoreStyles)
	v.SetDefault("mapping.stop_marker", d.Mapping.StopMarker)
	v.SetDefault("mapping.comments", d.Mapping.Comments)
	v.SetDefault("output.encoding", string(d.Output.Encoding))
	v.SetDefault("output.rtl", string(d.Output.RTL))
	v.SetDefault("output.maqaf", d.Output.Maqaf)
	v.SetDefault("output.vav", d.Output.Vav)
	v.SetDefault("output.debug_utf8", d.Output.DebugUTF8)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("batch.workers", d.Batch.Workers)
	v.SetDefault("container.image", d.Container.Image)
	v.SetDefault("container.runtime", d.Container.Runtime)
}

// loadConfig merges defaults, the config file, WP2TT_* variables and the
// running command's flags into a.cfg and validates the result.
func (a *app) loadConfig(cmd *cobra.Command) error {
	v := a.v
	setDefaults(v)

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("wp2tt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wp2tt"))
		}
	}

	v.SetEnvPrefix("WP2TT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return &wperrors.ConfigError{Field: "config", Message: err.Error()}
		}
	} else {
		logging.Debug("using config file", "path", v.ConfigFileUsed())
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("binding flags: %w", bindErr)
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		v.Set("cache.enabled", false)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return &wperrors.ConfigError{Field: "config", Message: err.Error()}
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// inputOptions derives document normalization from the mapping settings.
func (a *app) inputOptions() input.Options {
	return input.Options{Ignore: a.cfg.Mapping.IgnoreStyles, Comments: a.cfg.Mapping.Comments}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateConfig checks the merged configuration, reporting the first
// offending key.
func validateConfig(cfg types.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &wperrors.ConfigError{Field: "config", Message: err.Error()}
	}
	fe := verrs[0]
	field := configKey(fe.Namespace())
	msg := fmt.Sprintf("value %v fails %q", fe.Value(), fe.Tag())
	if fe.Param() != "" {
		msg = fmt.Sprintf("value %v fails %s=%s", fe.Value(), fe.Tag(), fe.Param())
	}
	return &wperrors.ConfigError{Field: field, Message: msg}
}

// configKey turns a validator namespace such as "Config.Output.Encoding"
// into the configuration key "output.encoding".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
