// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultPolicy decides the destination of source styles the style map does
// not mention.
type DefaultPolicy string

const (
	// PolicyPassthrough uses the source style name as the destination name.
	PolicyPassthrough DefaultPolicy = "passthrough"
	// PolicyFallback uses the configured fallback style for the realm.
	PolicyFallback DefaultPolicy = "fallback"
)

// Encoding selects the tagged-text encoding declaration and the byte
// encoding of the output file.
type Encoding string

const (
	EncodingUnicodeMac Encoding = "UNICODE-MAC"
	EncodingUnicodeWin Encoding = "UNICODE-WIN"
	EncodingASCIIWin   Encoding = "ASCII-WIN"
	EncodingASCIIMac   Encoding = "ASCII-MAC"
)

// RTLMode controls the right-to-left feature set declaration.
type RTLMode string

const (
	RTLAuto RTLMode = "auto"
	RTLOn   RTLMode = "on"
	RTLOff  RTLMode = "off"
)

// FallbackConfig names the fallback destination style per realm.
type FallbackConfig struct {
	// Paragraph is required under the fallback policy.
	Paragraph string `json:"paragraph" yaml:"paragraph" mapstructure:"paragraph"`

	// Character may be empty, meaning unmapped runs carry no character style.
	Character string `json:"character" yaml:"character" mapstructure:"character"`
}

// MappingConfig holds the style-resolution settings.
type MappingConfig struct {
	// StyleMap is the path to the style map file. Empty means no explicit
	// mappings; every style resolves through the default policy.
	StyleMap string `json:"style_map" yaml:"style_map" mapstructure:"style_map"`

	// Rules is the path to the rule file (optional).
	Rules string `json:"rules" yaml:"rules" mapstructure:"rules"`

	Policy   DefaultPolicy  `json:"policy" yaml:"policy" mapstructure:"policy" validate:"oneof=passthrough fallback"`
	Fallback FallbackConfig `json:"fallback" yaml:"fallback" mapstructure:"fallback"`

	// IgnoreStyles lists source styles treated as unstyled.
	IgnoreStyles []string `json:"ignore_styles" yaml:"ignore_styles" mapstructure:"ignore_styles"`

	// StopMarker ends the document at the first paragraph starting with it.
	StopMarker string `json:"stop_marker" yaml:"stop_marker" mapstructure:"stop_marker"`

	// Comments converts document comments into footnotes instead of
	// dropping them.
	Comments bool `json:"comments" yaml:"comments" mapstructure:"comments"`
}

// OutputConfig holds the emitter settings.
type OutputConfig struct {
	Encoding Encoding `json:"encoding" yaml:"encoding" mapstructure:"encoding" validate:"oneof=UNICODE-MAC UNICODE-WIN ASCII-WIN ASCII-MAC"`
	RTL      RTLMode  `json:"rtl" yaml:"rtl" mapstructure:"rtl" validate:"oneof=auto on off"`

	// Maqaf replaces "=" in text with the Hebrew maqaf (U+05BE).
	Maqaf bool `json:"maqaf" yaml:"maqaf" mapstructure:"maqaf"`

	// Vav replaces vav with holam (U+05D5 U+05B9) by U+FB4B.
	Vav bool `json:"vav" yaml:"vav" mapstructure:"vav"`

	// DebugUTF8 also writes a UTF-8 copy of the output next to it.
	DebugUTF8 bool `json:"debug_utf8" yaml:"debug_utf8" mapstructure:"debug_utf8"`
}

// CacheConfig holds the conversion cache settings.
type CacheConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required_if=Enabled true"`
}

// BatchConfig holds settings for converting many documents.
type BatchConfig struct {
	// Workers bounds the number of concurrent conversions (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"min=1,max=64"`
}

// ContainerConfig holds settings for converting legacy formats through a
// container image.
type ContainerConfig struct {
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Runtime pins docker or podman. Empty tries docker, then podman.
	Runtime string `json:"runtime" yaml:"runtime" mapstructure:"runtime" validate:"omitempty,oneof=docker podman"`
}

// Config groups all settings for a conversion run.
type Config struct {
	Mapping   MappingConfig   `json:"mapping" yaml:"mapping" mapstructure:"mapping"`
	Output    OutputConfig    `json:"output" yaml:"output" mapstructure:"output"`
	Cache     CacheConfig     `json:"cache" yaml:"cache" mapstructure:"cache"`
	Batch     BatchConfig     `json:"batch" yaml:"batch" mapstructure:"batch"`
	Container ContainerConfig `json:"container" yaml:"container" mapstructure:"container"`
}

// DefaultConfig returns the settings used when neither config file nor flags
// say otherwise.
func DefaultConfig() Config {
	return Config{
		Mapping: MappingConfig{
			Policy:       PolicyPassthrough,
			IgnoreStyles: []string{"annotation reference"},
		},
		Output: OutputConfig{
			Encoding: EncodingUnicodeMac,
			RTL:      RTLAuto,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".wp2tt",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Container: ContainerConfig{
			Image: "wp2tt-soffice:latest",
		},
	}
}
