package archive

import (
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec/toolexectest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Tools:   config.ToolsConfig{Archiver: "7z"},
		Archive: config.ArchiveConfig{Level: 9, Dictionary: "256M"},
	}
}

func TestInvocationRootsArchiveAtChapterFolder(t *testing.T) {
	z := NewSevenZip(testConfig(), nil)
	base := t.TempDir()
	src := filepath.Join(base, "output", "oni-mod", "HigurashiEp01_Data")
	dest := filepath.Join(base, "archive_output", "a.7z")

	inv, err := z.Invocation(src+string(filepath.Separator), dest)
	require.NoError(t, err)

	assert.Equal(t, "7z", inv.Tool)
	assert.Equal(t, filepath.Join(base, "output", "oni-mod"), inv.Dir)
	assert.Equal(t, []string{"a", dest, "HigurashiEp01_Data", "-mx=9", "-md=256m"}, inv.Args)
}

func TestInvocationMakesDestinationAbsolute(t *testing.T) {
	inv, err := NewSevenZip(testConfig(), nil).Invocation(filepath.Join("output", "oni-mod", "HigurashiEp01_Data"), filepath.Join("archive_output", "a.7z"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(inv.Args[1]))
}

func TestCreateRemovesStaleDestination(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "output", "oni-mod", "HigurashiEp01_Data")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "Managed"), 0o755))

	// A stale directory sitting where the archive goes.
	dest := filepath.Join(base, "archive_output", "a.7z")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "junk"), 0o755))

	var sawStale bool
	runner := toolexectest.NewFakeRunner().Handle("7z", func(inv toolexec.Invocation) (toolexec.Result, error) {
		_, err := os.Stat(inv.Args[1])
		sawStale = err == nil
		return toolexectest.Succeeded(), os.WriteFile(inv.Args[1], []byte("7z"), 0o600)
	})

	require.NoError(t, NewSevenZip(testConfig(), runner).Create(t.Context(), src, dest))
	assert.False(t, sawStale)
	assert.FileExists(t, dest)
}

func TestCreateFailure(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "HigurashiEp01_Data")
	require.NoError(t, os.MkdirAll(src, 0o755))

	runner := toolexectest.NewFakeRunner().Handle("7z", func(toolexec.Invocation) (toolexec.Result, error) {
		return toolexectest.Failed(2, "Fatal error"), nil
	})

	err := NewSevenZip(testConfig(), runner).Create(t.Context(), src, filepath.Join(base, "a.7z"))
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryArchive, classified.Category())
	code, _ := classified.Context().GetInt("exit_code")
	assert.Equal(t, 2, code)
}

func TestCreateMissingSource(t *testing.T) {
	runner := toolexectest.NewFakeRunner()
	err := NewSevenZip(testConfig(), runner).Create(t.Context(), filepath.Join(t.TempDir(), "missing"), "a.7z")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryArchive))
	assert.Empty(t, runner.Calls())
}
