package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
}

func TestCollectFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.hcl"))
	touch(t, filepath.Join(root, "a.hcl"))
	touch(t, filepath.Join(root, "nested", "c.hcl"))
	touch(t, filepath.Join(root, "notes.txt"))
	single := filepath.Join(root, "notes.txt")

	// --- Act ---
	files, err := CollectFiles([]string{root, filepath.Join(root, "a.hcl"), single}, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
		filepath.Join(root, "notes.txt"),
	}, files)
}

func TestCollectFiles_MissingPath(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := CollectFiles([]string{filepath.Join(t.TempDir(), "absent")}, ".hcl")

	// --- Assert ---
	assert.ErrorContains(t, err, "error accessing path")
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}
