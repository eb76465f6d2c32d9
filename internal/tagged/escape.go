// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tagged

import (
	"fmt"
	"strings"
)

// Escape makes run text safe for tagged text. Tag delimiters and the
// backslash get a backslash; control characters other than tab become
// <0x####> character references.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\', r == '<', r == '>':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			writeCharRef(&b, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func writeCharRef(b *strings.Builder, r rune) {
	fmt.Fprintf(b, "<0x%04X>", r)
}

// Hebrew post-processing applied to run text.
const (
	maqaf        = "\u05BE"
	vavHolam     = "\u05D5\u05B9"
	vavWithHolam = "\uFB4B"
)

// transformText applies the optional text substitutions.
func transformText(s string, opts Options) string {
	if opts.Maqaf {
		s = strings.ReplaceAll(s, "=", maqaf)
	}
	if opts.Vav {
		s = strings.ReplaceAll(s, vavHolam, vavWithHolam)
	}
	return s
}
