package errors

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, quietLogger())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("unknown branch").Build(), expected: 2},
		{name: "config", err: ConfigError("builder missing").Build(), expected: 7},
		{name: "git", err: GitError("checkout failed").Build(), expected: 8},
		{name: "build", err: BuildError("msbuild failed").Build(), expected: 11},
		{name: "archive", err: ArchiveError("7z failed").Build(), expected: 11},
		{name: "filesystem", err: FileSystemError("remove failed").Build(), expected: 11},
		{name: "runtime", err: RuntimeError("interrupted").Build(), expected: 12},
		{name: "internal", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified", err: errors.New("unknown error"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := ConfigError("builder executable not found").
		WithContext("path", `C:\MSBuild.exe`).
		WithContext(HintKey, "Set tools.builder in chapterbuilder.yaml.").
		Build()

	t.Run("non-verbose shows message and hint", func(t *testing.T) {
		msg := NewCLIErrorAdapter(false, quietLogger()).FormatError(err)
		if !strings.HasPrefix(msg, "config error: builder executable not found") {
			t.Errorf("unexpected message %q", msg)
		}
		if !strings.Contains(msg, "Set tools.builder") {
			t.Errorf("expected hint in %q", msg)
		}
		if strings.Contains(msg, "path:") {
			t.Errorf("did not expect context in non-verbose output %q", msg)
		}
	})

	t.Run("verbose includes context", func(t *testing.T) {
		msg := NewCLIErrorAdapter(true, quietLogger()).FormatError(err)
		if !strings.Contains(msg, `path: C:\MSBuild.exe`) {
			t.Errorf("expected path context in %q", msg)
		}
	})

	t.Run("unclassified", func(t *testing.T) {
		msg := NewCLIErrorAdapter(false, quietLogger()).FormatError(errors.New("boom"))
		if msg != "Error: boom" {
			t.Errorf("unexpected message %q", msg)
		}
	})
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, quietLogger()).WithOutput(&out)

	code := adapter.Report(BuildError("msbuild exited with status 1").Build())
	if code != 11 {
		t.Errorf("expected exit code 11, got %d", code)
	}
	if !strings.Contains(out.String(), "build error: msbuild exited with status 1") {
		t.Errorf("unexpected diagnostic %q", out.String())
	}

	if adapter.Report(nil) != 0 {
		t.Error("expected nil error to report exit code 0")
	}
}
