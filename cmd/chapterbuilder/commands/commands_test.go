package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec/toolexectest"
)

type env struct {
	dir    string
	config string
	repo   string
	out    *bytes.Buffer
	runner *toolexectest.FakeRunner
	branch string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		dir:    dir,
		config: filepath.Join(dir, "chapterbuilder.yaml"),
		repo:   filepath.Join(dir, "repo"),
		out:    &bytes.Buffer{},
		runner: toolexectest.NewFakeRunner(),
	}
	require.NoError(t, os.MkdirAll(e.repo, 0o755))
	builder := filepath.Join(dir, "bin", "MSBuild.exe")
	require.NoError(t, os.MkdirAll(filepath.Dir(builder), 0o755))
	require.NoError(t, os.WriteFile(builder, nil, 0o755))

	yml := fmt.Sprintf(`version: 1
tools:
  builder: %s
repository:
  path: %s
output:
  root: %s
  archive_dir: %s
journal:
  path: %s
metrics:
  textfile: %s
chapters:
  - {branch: oni-mod, data_folder: HigurashiEp01_Data, archive: ep1.7z}
  - {branch: wata-mod, data_folder: HigurashiEp02_Data, archive: ep2.7z}
`, builder, e.repo,
		filepath.Join(dir, "output"),
		filepath.Join(dir, "archive_output"),
		filepath.Join(dir, "state", "journal.db"),
		filepath.Join(dir, "metrics", "chapterbuilder.prom"))
	require.NoError(t, os.WriteFile(e.config, []byte(yml), 0o644))

	artifact := filepath.Join(e.repo, "bin", "Release", "Assembly-CSharp.dll")
	e.runner.Handle("git", func(inv toolexec.Invocation) (toolexec.Result, error) {
		e.branch = inv.Args[len(inv.Args)-1]
		return toolexectest.Succeeded(), nil
	})
	e.runner.Handle("msbuild", func(toolexec.Invocation) (toolexec.Result, error) {
		if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
			return toolexec.Result{}, err
		}
		return toolexectest.Succeeded(), os.WriteFile(artifact, []byte(e.branch), 0o644)
	})
	e.runner.Handle("7z", func(inv toolexec.Invocation) (toolexec.Result, error) {
		return toolexectest.Succeeded(), os.WriteFile(inv.Args[1], []byte("7z"), 0o644)
	})
	return e
}

func (e *env) run(t *testing.T, args ...string) error {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Vars{"version": "test"},
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(append([]string{"--config", e.config}, args...))
	require.NoError(t, err)
	return kctx.Run(&Global{Logger: slog.Default(), Stdout: e.out, Runner: e.runner}, cli)
}

func TestBuildCommand(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.run(t, "build"))

	assert.FileExists(t, filepath.Join(e.dir, "archive_output", "ep1.7z"))
	assert.FileExists(t, filepath.Join(e.dir, "archive_output", "ep2.7z"))
	dll, err := os.ReadFile(filepath.Join(e.dir, "output", "wata-mod", "HigurashiEp02_Data", "Managed", "Assembly-CSharp.dll"))
	require.NoError(t, err)
	assert.Equal(t, "wata-mod", string(dll))

	assert.Contains(t, e.out.String(), ">>>> Building oni-mod")
	assert.Contains(t, e.out.String(), "Program Finished")
	assert.Contains(t, e.out.String(), "2 archives written")

	prom, err := os.ReadFile(filepath.Join(e.dir, "metrics", "chapterbuilder.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `chapterbuilder_run_outcomes_total{result="success"} 1`)

	e.out.Reset()
	require.NoError(t, e.run(t, "history"))
	assert.Contains(t, e.out.String(), "Status:   completed")
	assert.Contains(t, e.out.String(), "wata-mod")
}

func TestBuildIsDefaultCommand(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.run(t))
	assert.Len(t, e.runner.CallsFor("msbuild"), 2)
}

func TestBuildOnly(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.run(t, "build", "--only", "wata-mod"))

	calls := e.runner.CallsFor("git")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"checkout", "wata-mod"}, calls[0].Args)
	assert.NoFileExists(t, filepath.Join(e.dir, "archive_output", "ep1.7z"))
}

func TestBuildOnlyUnknownBranch(t *testing.T) {
	e := newEnv(t)
	err := e.run(t, "build", "--only", "kai-mod")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	assert.Empty(t, e.runner.Calls())
}

func TestBuildDryRun(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.run(t, "build", "--dry-run"))

	assert.Empty(t, e.runner.Calls())
	assert.Contains(t, e.out.String(), "Dry run")
	assert.Contains(t, e.out.String(), "/t:Rebuild")
	assert.NoFileExists(t, filepath.Join(e.dir, "state", "journal.db"))
}

func TestBuildFailureExitCode(t *testing.T) {
	e := newEnv(t)
	e.runner.Handle("msbuild", func(toolexec.Invocation) (toolexec.Result, error) {
		return toolexectest.Failed(1, "Build FAILED."), nil
	})

	err := e.run(t, "build")
	require.Error(t, err)
	assert.Equal(t, 11, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.NotContains(t, e.out.String(), "Program Finished")

	e.out.Reset()
	require.NoError(t, e.run(t, "history"))
	assert.Contains(t, e.out.String(), "Status:   failed")
	assert.Contains(t, e.out.String(), "not started")
}

func TestCleanCommand(t *testing.T) {
	e := newEnv(t)
	archive := filepath.Join(e.dir, "archive_output", "ep2.7z")
	require.NoError(t, os.MkdirAll(filepath.Dir(archive), 0o755))
	require.NoError(t, os.WriteFile(archive, []byte("old"), 0o644))

	require.NoError(t, e.run(t, "clean"))
	assert.NoFileExists(t, archive)
	assert.Contains(t, e.out.String(), "Removed 1 stale outputs")
	assert.Empty(t, e.runner.Calls())
}

func TestListCommand(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.run(t, "list"))
	out := e.out.String()
	assert.Contains(t, out, "oni-mod")
	assert.Contains(t, out, "HigurashiEp02_Data")
	assert.Contains(t, out, filepath.Join(e.dir, "archive_output", "ep1.7z"))
}

func TestInitCommand(t *testing.T) {
	e := newEnv(t)
	e.config = filepath.Join(e.dir, "fresh.yaml")

	require.NoError(t, e.run(t, "init"))
	assert.FileExists(t, e.config)

	err := e.run(t, "init")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	require.NoError(t, e.run(t, "init", "--force"))
}

func TestHistoryWithoutJournal(t *testing.T) {
	e := newEnv(t)
	data, err := os.ReadFile(e.config)
	require.NoError(t, err)
	data = bytes.Replace(data, []byte("journal:\n  path: "), []byte("unused_journal_path: "), 1)
	require.NoError(t, os.WriteFile(e.config, data, 0o644))

	err = e.run(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build journal is not enabled")
}

func TestHistoryEmptyJournal(t *testing.T) {
	e := newEnv(t)
	err := e.run(t, "history")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv("CHAPTERBUILDER_LOG_LEVEL", "warn")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(false))

	t.Setenv("CHAPTERBUILDER_LOG_LEVEL", "nonsense")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
}
