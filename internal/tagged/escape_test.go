// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tagged

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"angle brackets", "a<b>c", `a\<b\>c`},
		{"backslash", `C:\dir`, `C:\\dir`},
		{"tab kept", "a\tb", "a\tb"},
		{"line break", "a\nb", "a<0x000A>b"},
		{"carriage return", "a\rb", "a<0x000D>b"},
		{"delete", "a\x7fb", "a<0x007F>b"},
		{"unicode untouched", "שלום — ok", "שלום — ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestIDName(t *testing.T) {
	assert.Equal(t, `A\:B\:C`, idName(pstyle("A/B/C")))
	assert.Equal(t, `Odd\<1\>`, idName(pstyle("Odd<1>")))
}
