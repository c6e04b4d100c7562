package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: tempDir},
		{name: "empty directory", dir: "", wantError: true},
		{name: "non-existent directory", dir: "/non/existent/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dir, validator.GetConfiguredDirectory())
		})
	}
}

func TestPathValidator_ValidatePath(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	books := filepath.Join(root, "books")
	require.NoError(t, os.MkdirAll(books, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(books, "real.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{name: "root itself", path: root},
		{name: "existing file", path: filepath.Join(books, "real.pdf")},
		{name: "missing output folder", path: filepath.Join(root, "out", "real")},
		{name: "empty", path: "", wantError: true},
		{name: "null byte", path: filepath.Join(root, "a\x00b"), wantError: true},
		{name: "outside", path: filepath.Join(outside, "secret.pdf"), wantError: true},
		{name: "dot dot", path: filepath.Join(books, "..", "..", "etc"), wantError: true},
		{name: "symlink escape", path: filepath.Join(root, "escape", "secret.pdf"), wantError: true},
		{name: "symlink escape missing child", path: filepath.Join(root, "escape", "new"), wantError: true},
		{name: "prefix sibling", path: root + "-other", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePath(tt.path)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathValidator_NormalizePath(t *testing.T) {
	root := t.TempDir()
	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	got, err := validator.NormalizePath("book.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "book.pdf"), got)

	_, err = validator.NormalizePath("../book.pdf")
	assert.Error(t, err)

	_, err = validator.NormalizePath("")
	assert.Error(t, err)
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "book.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o644))

	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	assert.NoError(t, validator.ValidateDirectory(root))
	assert.NoError(t, validator.ValidateDirectory(filepath.Join(root, "new")))
	assert.Error(t, validator.ValidateDirectory(file))
	assert.Error(t, validator.ValidateDirectory(t.TempDir()))
}
