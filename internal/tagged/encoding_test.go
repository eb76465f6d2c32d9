// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tagged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wp2tt/pkg/types"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		enc  types.Encoding
		in   string
		want []byte
	}{
		{"utf16le", types.EncodingUnicodeMac, "A\u05D0", []byte{'A', 0, 0xD0, 0x05}},
		{"utf16le win", types.EncodingUnicodeWin, "<", []byte{'<', 0}},
		{"windows-1252", types.EncodingASCIIWin, "caf\u00e9", []byte{'c', 'a', 'f', 0xE9}},
		{"windows-1252 fallback", types.EncodingASCIIWin, "\u05D0", []byte("<0x05D0>")},
		{"mac roman", types.EncodingASCIIMac, "\u00e9", []byte{0x8E}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Encode("x", "EBCDIC")
	assert.Error(t, err)
}

func TestValidEncoding(t *testing.T) {
	assert.True(t, ValidEncoding(types.EncodingASCIIMac))
	assert.False(t, ValidEncoding("UTF-8"))
}
