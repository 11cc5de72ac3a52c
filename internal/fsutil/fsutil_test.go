package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "a.7z")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	tree := filepath.Join(dir, "stale.7z", "nested")
	require.NoError(t, os.MkdirAll(tree, 0o755))

	removed, err := RemoveIfExists(file)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, file)

	removed, err = RemoveIfExists(filepath.Join(dir, "stale.7z"))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoDirExists(t, filepath.Join(dir, "stale.7z"))

	// Second pass over the same paths is a no-op.
	for _, p := range []string{file, filepath.Join(dir, "stale.7z"), filepath.Join(dir, "never", "there")} {
		removed, err = RemoveIfExists(p)
		require.NoError(t, err)
		assert.False(t, removed)
	}
}

func TestEnsureDirIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "oni-mod", "HigurashiEp01_Data", "Managed")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)
}

func TestEnsureDirOverFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "out")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureDir(filepath.Join(blocker, "Managed"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestCopyFileIntoOverwrites(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "bin", "Release", "Assembly-CSharp.dll")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("new build"), 0o600))

	dstDir := filepath.Join(base, "Managed")
	require.NoError(t, os.MkdirAll(dstDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dstDir, "Assembly-CSharp.dll"), []byte("old build"), 0o600))

	dst, err := CopyFileInto(src, dstDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dstDir, "Assembly-CSharp.dll"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new build", string(data))
}

func TestCopyFileIntoMissingSource(t *testing.T) {
	_, err := CopyFileInto(filepath.Join(t.TempDir(), "missing.dll"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
