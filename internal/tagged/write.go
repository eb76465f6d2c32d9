// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tagged

import (
	"os"
	"path/filepath"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
)

// Replaced in tests to simulate failures.
var (
	osRename  = os.Rename
	tempWrite = func(f *os.File, data []byte) (int, error) { return f.Write(data) }
)

// WriteFile writes data to path through a temporary file in the same
// directory and renames it into place. On failure nothing is left at path
// and the temporary file is removed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &wperrors.WriteError{Path: path, Op: "creating directory", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &wperrors.WriteError{Path: path, Op: "creating temp file", Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tempWrite(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &wperrors.WriteError{Path: path, Op: "writing", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &wperrors.WriteError{Path: path, Op: "closing", Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return &wperrors.WriteError{Path: path, Op: "setting permissions", Err: err}
	}
	if err := osRename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &wperrors.WriteError{Path: path, Op: "renaming", Err: err}
	}
	return nil
}
