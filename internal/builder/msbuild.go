// Package builder invokes the external compiler that produces the chapter
// artifact.
package builder

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
)

// MSBuild runs a full rebuild of one solution in a fixed configuration.
type MSBuild struct {
	path          string
	solution      string
	configuration string
	runner        toolexec.Runner
}

// NewMSBuild returns a builder for the solution configured in cfg.
func NewMSBuild(cfg *config.Config, runner toolexec.Runner) *MSBuild {
	return &MSBuild{
		path:          cfg.Tools.Builder,
		solution:      cfg.SolutionPath(),
		configuration: cfg.Repository.Configuration,
		runner:        runner,
	}
}

// Invocation returns the command Build runs.
func (m *MSBuild) Invocation() toolexec.Invocation {
	return toolexec.Invocation{
		Tool: "msbuild",
		Path: m.path,
		Args: []string{
			m.solution,
			"/p:Configuration=" + m.configuration,
			"/t:Rebuild",
		},
	}
}

// Build rebuilds the solution. A non-zero exit is returned as a build error
// carrying the exit code and the last lines of stderr.
func (m *MSBuild) Build(ctx context.Context) error {
	inv := m.Invocation()
	res, err := m.runner.Run(ctx, inv)
	if err != nil {
		if stderrors.Is(err, toolexec.ErrInterrupted) {
			return errors.RuntimeError("build interrupted").WithCause(err).Build()
		}
		return errors.BuildError("could not start builder").
			WithCause(err).
			WithContext("path", m.path).
			Build()
	}
	if !res.Success {
		b := errors.BuildError(fmt.Sprintf("builder exited with code %d", res.ExitCode)).
			WithContext("solution", m.solution).
			WithContext("exit_code", res.ExitCode)
		if tail := tailLines(res.Stderr, 5); tail != "" {
			b = b.WithContext("stderr", tail)
		} else if tail := tailLines(res.Stdout, 5); tail != "" {
			// MSBuild reports compiler errors on stdout.
			b = b.WithContext("output", tail)
		}
		return b.Build()
	}
	return nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n "), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
