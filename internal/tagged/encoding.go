// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tagged

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/pdiddy/wp2tt/pkg/types"
)

// Encode converts tagged text to the byte encoding its header declares.
// Single-byte encodings write unrepresentable runes as <0x####>.
func Encode(text string, enc types.Encoding) ([]byte, error) {
	switch enc {
	case types.EncodingUnicodeMac, types.EncodingUnicodeWin, "":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(text))
	case types.EncodingASCIIWin:
		return encodeSingleByte(text, charmap.Windows1252), nil
	case types.EncodingASCIIMac:
		return encodeSingleByte(text, charmap.Macintosh), nil
	}
	return nil, fmt.Errorf("unknown encoding %q", enc)
}

func encodeSingleByte(text string, cm *charmap.Charmap) []byte {
	var buf bytes.Buffer
	buf.Grow(len(text))
	for _, r := range text {
		if b, ok := cm.EncodeRune(r); ok {
			buf.WriteByte(b)
			continue
		}
		fmt.Fprintf(&buf, "<0x%04X>", r)
	}
	return buf.Bytes()
}

// ValidEncoding reports whether enc is a supported encoding.
func ValidEncoding(enc types.Encoding) bool {
	switch enc {
	case types.EncodingUnicodeMac, types.EncodingUnicodeWin, types.EncodingASCIIWin, types.EncodingASCIIMac:
		return true
	}
	return false
}
