// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tagged

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "book.txt")

	require.NoError(t, WriteFile(path, []byte("data")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files remain")
}

func TestWriteFile_RenameFailureLeavesNothing(t *testing.T) {
	orig := osRename
	defer func() { osRename = orig }()
	osRename = func(string, string) error { return errors.New("disk gone") }

	dir := t.TempDir()
	path := filepath.Join(dir, "book.txt")
	err := WriteFile(path, []byte("data"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, wperrors.ErrWrite))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFile_WriteFailure(t *testing.T) {
	orig := tempWrite
	defer func() { tempWrite = orig }()
	tempWrite = func(*os.File, []byte) (int, error) { return 0, errors.New("short write") }

	dir := t.TempDir()
	err := WriteFile(filepath.Join(dir, "book.txt"), []byte("data"))
	var werr *wperrors.WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "writing", werr.Op)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
