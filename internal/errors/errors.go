// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errors defines the error taxonomy shared by every conversion stage
// and maps each category to a process exit code.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per category. Typed errors unwrap to these so callers
// can test with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMalformedDocument = errors.New("malformed document")
	ErrInvalidMapping    = errors.New("invalid style mapping")
	ErrInvalidRule       = errors.New("invalid rule")
	ErrWrite             = errors.New("write failed")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// Exit codes returned by the CLI.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitConfig            = 2
	ExitUnsupportedFormat = 3
	ExitMalformedDocument = 4
	ExitInvalidMapping    = 5
	ExitInvalidRule       = 6
	ExitWrite             = 7
)

// UnsupportedFormatError reports an input whose format cannot be determined
// or has no adapter.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: unsupported format", e.Path)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// MalformedDocumentError reports a structurally invalid container, such as a
// missing part or unparseable XML.
type MalformedDocumentError struct {
	Path string
	Part string // internal part, e.g. "word/document.xml"
	Err  error
}

func (e *MalformedDocumentError) Error() string {
	msg := e.Path
	if e.Part != "" {
		msg += " (" + e.Part + ")"
	}
	msg += ": malformed document"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the category and the cause.
func (e *MalformedDocumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedDocument, e.Err}
	}
	return []error{ErrMalformedDocument}
}

// InvalidMappingError reports a bad style map entry.
type InvalidMappingError struct {
	Path    string
	Line    int
	Entry   string
	Message string
}

func (e *InvalidMappingError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Entry != "" {
		return fmt.Sprintf("%s: invalid mapping %q: %s", loc, e.Entry, e.Message)
	}
	return fmt.Sprintf("%s: invalid mapping: %s", loc, e.Message)
}

func (e *InvalidMappingError) Unwrap() error { return ErrInvalidMapping }

// InvalidRuleError reports a rule that cannot be loaded. It is always raised
// before any paragraph is resolved.
type InvalidRuleError struct {
	Path      string
	Rule      string
	Condition string
	Message   string
}

func (e *InvalidRuleError) Error() string {
	msg := e.Path + ": invalid rule"
	if e.Rule != "" {
		msg += fmt.Sprintf(" %q", e.Rule)
	}
	if e.Condition != "" {
		msg += fmt.Sprintf(" (condition %q)", e.Condition)
	}
	return msg + ": " + e.Message
}

func (e *InvalidRuleError) Unwrap() error { return ErrInvalidRule }

// WriteError reports an output I/O failure.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("writing %s: %s: %v", e.Path, e.Op, e.Err)
	}
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWrite, e.Err}
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Message)
	}
	return "invalid configuration: " + e.Message
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// ExitCode maps an error to the CLI exit code for its category.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfig
	case errors.Is(err, ErrUnsupportedFormat):
		return ExitUnsupportedFormat
	case errors.Is(err, ErrMalformedDocument):
		return ExitMalformedDocument
	case errors.Is(err, ErrInvalidMapping):
		return ExitInvalidMapping
	case errors.Is(err, ErrInvalidRule):
		return ExitInvalidRule
	case errors.Is(err, ErrWrite):
		return ExitWrite
	}
	return ExitFailure
}
