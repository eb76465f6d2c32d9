// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitFailure},
		{"config", &ConfigError{Field: "policy", Message: "bad"}, ExitConfig},
		{"unsupported", &UnsupportedFormatError{Path: "a.pdf"}, ExitUnsupportedFormat},
		{"malformed", &MalformedDocumentError{Path: "a.docx", Part: "word/document.xml"}, ExitMalformedDocument},
		{"mapping", &InvalidMappingError{Path: "m.ini", Line: 3, Message: "empty destination"}, ExitInvalidMapping},
		{"rule", &InvalidRuleError{Path: "r.yaml", Rule: "x", Message: "unknown field"}, ExitInvalidRule},
		{"write", &WriteError{Path: "out.txt", Err: fs.ErrPermission}, ExitWrite},
		{"wrapped mapping", fmt.Errorf("loading: %w", &InvalidMappingError{Message: "m"}), ExitInvalidMapping},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestWriteError_UnwrapsCause(t *testing.T) {
	err := &WriteError{Path: "out.txt", Op: "rename", Err: fs.ErrPermission}
	assert.True(t, errors.Is(err, ErrWrite))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Equal(t, "writing out.txt: rename: permission denied", err.Error())
}

func TestMalformedDocumentError_Message(t *testing.T) {
	err := &MalformedDocumentError{Path: "a.docx", Part: "word/document.xml", Err: errors.New("missing")}
	assert.Equal(t, "a.docx (word/document.xml): malformed document: missing", err.Error())
	assert.True(t, errors.Is(err, ErrMalformedDocument))
}

func TestInvalidMappingError_Message(t *testing.T) {
	err := &InvalidMappingError{Path: "styles.map", Line: 4, Entry: "Body", Message: "empty destination"}
	assert.Equal(t, `styles.map:4: invalid mapping "Body": empty destination`, err.Error())
}

func TestInvalidRuleError_Message(t *testing.T) {
	err := &InvalidRuleError{Path: "rules.yaml", Rule: "lead-in", Condition: "colour = red", Message: "unknown field \"colour\""}
	assert.Equal(t, `rules.yaml: invalid rule "lead-in" (condition "colour = red"): unknown field "colour"`, err.Error())
}
