// Package toolexec runs the external programs the pipeline drives (git,
// MSBuild, 7z) and reports their outcome as a Result instead of an error.
//
// A non-zero exit is not an error at this level: Run returns a Result with
// Success=false and leaves classification to the caller. Run only returns an
// error when the process could not be started or was interrupted.
package toolexec

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/chapterbuilder/internal/logfields"
)

// ErrToolNotFound is returned when the executable does not exist.
var ErrToolNotFound = stderrors.New("tool executable not found")

// ErrInterrupted is returned when the context is canceled while the tool runs.
var ErrInterrupted = stderrors.New("tool interrupted")

// Invocation describes one external program run.
type Invocation struct {
	Tool string   // logical name used in logs and errors: git, msbuild, 7z
	Path string   // executable path or bare name resolved through PATH
	Args []string // arguments, not including the executable
	Dir  string   // working directory; empty means the current one
}

// CommandLine renders the invocation for progress output.
func (inv Invocation) CommandLine() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, quote(inv.Path))
	for _, a := range inv.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Result is the outcome of a completed process.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string // tail of standard output
	Stderr   string // tail of standard error
	Duration time.Duration
}

// Runner executes invocations. Implementations block until the process exits.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// DefaultTailSize is how much of each output stream is kept in a Result.
const DefaultTailSize = 8 * 1024

// ExecRunner runs invocations as child processes. Output is streamed to
// Stdout/Stderr as it is produced so an operator can follow long builds.
type ExecRunner struct {
	Stdout   io.Writer
	Stderr   io.Writer
	TailSize int
}

// NewExecRunner returns a runner that streams to the process's own stdout and
// stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, TailSize: DefaultTailSize}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	tail := r.TailSize
	if tail <= 0 {
		tail = DefaultTailSize
	}
	stdout := newTailBuffer(tail)
	stderr := newTailBuffer(tail)

	// #nosec G204 -- tool paths and arguments come from the operator's config
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdout = teeTo(stdout, r.Stdout)
	cmd.Stderr = teeTo(stderr, r.Stderr)

	slog.Debug("Running tool",
		logfields.Tool(inv.Tool),
		logfields.Path(inv.Path),
		logfields.Args(inv.Args),
		slog.String("dir", inv.Dir))

	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrInterrupted, inv.Tool, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			slog.Debug("Tool exited with failure",
				logfields.Tool(inv.Tool),
				logfields.ExitCode(res.ExitCode),
				logfields.Elapsed(res.Duration))
			return res, nil
		}
		if stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%w: %s (%s): %w", ErrToolNotFound, inv.Tool, inv.Path, err)
		}
		return res, fmt.Errorf("start %s: %w", inv.Tool, err)
	}

	res.Success = true
	res.ExitCode = 0
	slog.Debug("Tool finished",
		logfields.Tool(inv.Tool),
		logfields.Elapsed(res.Duration))
	return res, nil
}

func teeTo(buf *tailBuffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// LookPath resolves a tool given either as a path or as a bare name on PATH.
func LookPath(tool string) (string, error) {
	if tool == "" {
		return "", ErrToolNotFound
	}
	if strings.ContainsAny(tool, `/\`) {
		info, err := os.Stat(tool)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, tool, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrToolNotFound, tool)
		}
		return tool, nil
	}
	p, err := exec.LookPath(tool)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, tool, err)
	}
	return p, nil
}
